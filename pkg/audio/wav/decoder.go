package wav

import (
	"fmt"
	"io"
	"os"

	gowav "github.com/go-audio/wav"

	"github.com/RyanBlaney/word-recognizer/pkg/audio"
)

// Decode reads a PCM wav stream and returns it as a mono 16-bit signal.
// Multi-channel input is averaged and other bit depths are rescaled.
func Decode(r io.ReadSeeker) (audio.Signal, error) {
	d := gowav.NewDecoder(r)
	if !d.IsValidFile() {
		return audio.Signal{}, fmt.Errorf("not a valid wav file")
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return audio.Signal{}, fmt.Errorf("failed to decode pcm data: %w", err)
	}

	channels := int(d.NumChans)
	if channels < 1 {
		channels = 1
	}
	bitDepth := int(d.BitDepth)

	frames := len(buf.Data) / channels
	pcm := make([]float64, frames)
	for i := range frames {
		sum := 0
		for c := range channels {
			sum += buf.Data[i*channels+c]
		}
		pcm[i] = to16Bit(float64(sum)/float64(channels), bitDepth)
	}

	return audio.NewSignal(audio.Quantize(pcm), int(d.SampleRate))
}

// to16Bit rescales a sample of the given bit depth to the int16 range
func to16Bit(v float64, bitDepth int) float64 {
	switch {
	case bitDepth == 8:
		// 8-bit wav is unsigned
		return (v - 128) * 256
	case bitDepth > 16:
		return v / float64(int(1)<<(bitDepth-16))
	case bitDepth > 0 && bitDepth < 16:
		return v * float64(int(1)<<(16-bitDepth))
	default:
		return v
	}
}

// LoadFile decodes the wav file at path
func LoadFile(path string) (audio.Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Signal{}, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	sig, err := Decode(f)
	if err != nil {
		return audio.Signal{}, fmt.Errorf("%s: %w", path, err)
	}
	return sig, nil
}
