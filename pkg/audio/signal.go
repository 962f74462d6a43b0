package audio

import (
	"fmt"
	"math"
)

// Signal is a mono sequence of signed 16-bit samples at a fixed rate
type Signal struct {
	Samples    []int16 `json:"-" yaml:"-"`
	SampleRate int     `json:"sample_rate" yaml:"sample_rate"`
}

// NewSignal creates a signal, rejecting a non-positive sample rate
func NewSignal(samples []int16, sampleRate int) (Signal, error) {
	if sampleRate <= 0 {
		return Signal{}, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	return Signal{Samples: samples, SampleRate: sampleRate}, nil
}

// Len returns the number of samples
func (s Signal) Len() int {
	return len(s.Samples)
}

// Duration returns the signal length in seconds
func (s Signal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Float64 converts the samples to float64 without rescaling
func (s Signal) Float64() []float64 {
	out := make([]float64, len(s.Samples))
	for i, v := range s.Samples {
		out[i] = float64(v)
	}
	return out
}

// Clone returns a signal backed by a copy of the sample slice
func (s Signal) Clone() Signal {
	samples := make([]int16, len(s.Samples))
	copy(samples, s.Samples)
	return Signal{Samples: samples, SampleRate: s.SampleRate}
}

// Quantize rounds floating point samples back to int16, clipping at the
// representable range
func Quantize(pcm []float64) []int16 {
	out := make([]int16, len(pcm))
	for i, v := range pcm {
		switch {
		case math.IsNaN(v):
			out[i] = 0
		case v >= math.MaxInt16:
			out[i] = math.MaxInt16
		case v <= math.MinInt16:
			out[i] = math.MinInt16
		default:
			out[i] = int16(math.Round(v))
		}
	}
	return out
}
