// Package source loads recordings from disk as mono 16-bit signals.
package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/latency-benchmark-common/stream/common"
	"github.com/RyanBlaney/sonido-sonar/transcode"

	"github.com/RyanBlaney/word-recognizer/pkg/audio"
	"github.com/RyanBlaney/word-recognizer/pkg/audio/wav"
)

// contentType tunes the transcoder's normalization for spoken audio
const contentType = "talk"

// LoadFile decodes the recording at path. Wav files are read directly; any
// other container is decoded through FFmpeg.
func LoadFile(path string) (audio.Signal, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return wav.LoadFile(path)
	}
	return loadTranscoded(path)
}

func loadTranscoded(path string) (audio.Signal, error) {
	decoder := transcode.NewNormalizingDecoder(contentType)
	anyData, err := decoder.DecodeFile(path)
	if err != nil {
		return audio.Signal{}, fmt.Errorf("failed to decode audio file %s: %w", path, err)
	}

	audioData := common.ConvertToAudioData(anyData)
	if audioData == nil {
		return audio.Signal{}, fmt.Errorf("decoder returned unexpected type: %T", anyData)
	}

	return FromAudioData(audioData)
}

// FromAudioData converts decoded floating point PCM in [-1, 1] to a mono
// 16-bit signal, averaging interleaved channels
func FromAudioData(data *common.AudioData) (audio.Signal, error) {
	if data == nil {
		return audio.Signal{}, fmt.Errorf("no audio data")
	}

	channels := data.Channels
	if channels < 1 {
		channels = 1
	}

	frames := len(data.PCM) / channels
	pcm := make([]float64, frames)
	for i := range frames {
		sum := 0.0
		for c := range channels {
			sum += data.PCM[i*channels+c]
		}
		pcm[i] = sum / float64(channels) * 32767
	}

	return audio.NewSignal(audio.Quantize(pcm), data.SampleRate)
}
