package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq float64, amplitude float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func TestNewButterworthBandPassValidation(t *testing.T) {
	tests := []struct {
		name       string
		order      int
		low, high  float64
		sampleRate int
	}{
		{"zero order", 0, 200, 6500, 44100},
		{"negative rate", 5, 200, 6500, -1},
		{"low above high", 5, 6500, 200, 44100},
		{"zero low", 5, 0, 6500, 44100},
		{"high above nyquist", 5, 200, 6500, 8000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewButterworthBandPass(tt.order, tt.low, tt.high, tt.sampleRate)
			assert.Error(t, err)
		})
	}
}

func TestButterworthBandPassResponse(t *testing.T) {
	f, err := NewButterworthBandPass(5, 200, 6500, 44100)
	require.NoError(t, err)

	assert.Len(t, f.Sections(), 5)
	assert.Equal(t, 5, f.Order())

	assert.InDelta(t, 1.0, f.Response(1000), 0.01, "passband should be flat")
	assert.InDelta(t, 1.0, f.Response(3000), 0.01, "passband should be flat")
	assert.Less(t, f.Response(50), 0.01, "rumble should be attenuated")
	assert.Less(t, f.Response(15000), 0.01, "hiss should be attenuated")

	// Butterworth edges sit at -3 dB
	assert.InDelta(t, 1/math.Sqrt2, f.Response(200), 0.02)
	assert.InDelta(t, 1/math.Sqrt2, f.Response(6500), 0.02)
}

func TestFiltFiltPreservesPhase(t *testing.T) {
	const sampleRate = 44100
	f, err := NewButterworthBandPass(5, 200, 6500, sampleRate)
	require.NoError(t, err)

	x := sine(1000, 10000, sampleRate, 8820)
	y := f.FiltFilt(x)
	require.Len(t, y, len(x))

	// Ignore the edges where the filter settles
	for i := 3000; i < len(x)-3000; i++ {
		assert.InDelta(t, x[i], y[i], 200, "sample %d shifted", i)
	}
}

func TestFiltFiltRemovesDC(t *testing.T) {
	f, err := NewButterworthBandPass(5, 200, 6500, 44100)
	require.NoError(t, err)

	x := make([]float64, 4410)
	for i := range x {
		x[i] = 5000
	}

	y := f.FiltFilt(x)
	for i := 500; i < len(y)-500; i++ {
		assert.InDelta(t, 0, y[i], 1, "sample %d", i)
	}
}

func TestFiltFiltShortInputs(t *testing.T) {
	f, err := NewButterworthBandPass(5, 200, 6500, 44100)
	require.NoError(t, err)

	assert.Empty(t, f.FiltFilt(nil))
	assert.Len(t, f.FiltFilt([]float64{1}), 1)
	assert.Len(t, f.FiltFilt([]float64{1, -1, 1, -1, 1}), 5)
}
