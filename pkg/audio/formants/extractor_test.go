package formants

import (
	"errors"
	"math"
	"math/cmplx"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/word-recognizer/pkg/audio"
)

// vowel synthesizes a noisy two-resonance signal
func vowel(sampleRate, n int, seed int64) audio.Signal {
	rng := rand.New(rand.NewSource(seed))
	pcm := make([]float64, n)
	for i := range pcm {
		t := float64(i) / float64(sampleRate)
		pcm[i] = 8000*math.Sin(2*math.Pi*700*t) +
			4000*math.Sin(2*math.Pi*1200*t) +
			500*rng.NormFloat64()
	}
	return audio.Signal{Samples: audio.Quantize(pcm), SampleRate: sampleRate}
}

func TestLPCOrder(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 46, cfg.LPCOrder(44100))
	assert.Equal(t, 18, cfg.LPCOrder(16000))
	assert.Equal(t, 10, cfg.LPCOrder(8000))
}

func TestExtractFormantsOrderedAndBounded(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	for _, seed := range []int64{1, 2, 3} {
		sig := vowel(44100, 8820, seed)
		freqs, err := e.Extract(sig)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(freqs), 5)
		assert.True(t, sort.Float64sAreSorted(freqs), "formants must be ascending: %v", freqs)
		for _, f := range freqs {
			assert.GreaterOrEqual(t, f, 0.0)
			assert.LessOrEqual(t, f, 44100.0/2)
		}
	}
}

func TestExtractFormantsRespectsMax(t *testing.T) {
	e := NewExtractor(DefaultConfig())
	sig := vowel(16000, 4000, 7)

	for _, limit := range []int{1, 3, 8} {
		freqs, err := e.ExtractFormants(sig, limit)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(freqs), limit)
	}
}

func TestExtractFormantsShortSegment(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	// Three samples cap the model at order two
	freqs, err := e.Extract(audio.Signal{Samples: []int16{1000, -3000, 2000}, SampleRate: 44100})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(freqs), 2)
}

func TestExtractFormantsSilentSegment(t *testing.T) {
	e := NewExtractor(DefaultConfig())

	_, err := e.Extract(audio.Signal{Samples: make([]int16, 1000), SampleRate: 44100})
	require.Error(t, err)

	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, StageLPC, extErr.Stage)

	_, err = e.Extract(audio.Signal{SampleRate: 44100})
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, StageInput, extErr.Stage)
}

func TestExtractFormantsDeterministic(t *testing.T) {
	e := NewExtractor(DefaultConfig())
	sig := vowel(22050, 4410, 11)

	a, err := e.Extract(sig)
	require.NoError(t, err)
	b, err := e.Extract(sig)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLevinsonAR1(t *testing.T) {
	a, err := levinson([]float64{1, 0.5, 0.25}, 2)
	require.NoError(t, err)
	require.Len(t, a, 3)
	assert.InDelta(t, 1, a[0], 1e-12)
	assert.InDelta(t, -0.5, a[1], 1e-12)
	assert.InDelta(t, 0, a[2], 1e-12)

	_, err = levinson([]float64{0, 0, 0}, 2)
	assert.Error(t, err)
}

func TestPolyRoots(t *testing.T) {
	roots, err := polyRoots([]float64{1, -3, 2})
	require.NoError(t, err)
	require.Len(t, roots, 2)
	re := []float64{real(roots[0]), real(roots[1])}
	sort.Float64s(re)
	assert.InDelta(t, 1, re[0], 1e-9)
	assert.InDelta(t, 2, re[1], 1e-9)

	roots, err = polyRoots([]float64{1, 0, 1})
	require.NoError(t, err)
	require.Len(t, roots, 2)
	for _, r := range roots {
		assert.InDelta(t, 1, cmplx.Abs(r), 1e-9)
		assert.InDelta(t, 0, real(r), 1e-9)
	}

	// Trailing zero contributes a root at the origin
	roots, err = polyRoots([]float64{1, -1, 0})
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, complex(0, 0), roots[0])
	assert.InDelta(t, 1, real(roots[1]), 1e-9)
}

func TestRootFrequencies(t *testing.T) {
	roots := []complex128{
		cmplx.Rect(0.9, math.Pi/2),
		cmplx.Rect(0.9, -math.Pi/2),
		complex(0.5, 0),
		complex(-0.5, 0),
	}

	freqs := rootFrequencies(roots, 8000)
	require.Len(t, freqs, 3)
	assert.InDelta(t, 0, freqs[0], 1e-9)
	assert.InDelta(t, 2000, freqs[1], 1e-9)
	assert.InDelta(t, 4000, freqs[2], 1e-9)
}
