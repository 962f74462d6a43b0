package features

import (
	"errors"
	"fmt"
	"slices"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/word-recognizer/pkg/audio"
)

// ErrEmptyTrainingSet is returned when a model is requested from zero examples
var ErrEmptyTrainingSet = errors.New("training set has no examples")

// WordModel is the aggregate feature signature of one vocabulary word
type WordModel struct {
	Label         string    `json:"label" yaml:"label"`
	Formants      []float64 `json:"formants" yaml:"formants"`
	Duration      float64   `json:"duration" yaml:"duration"`             // seconds
	ZeroCrossings float64   `json:"zero_crossings" yaml:"zero_crossings"` // sign changes
	Examples      int       `json:"examples" yaml:"examples"`
}

// FormantsCopy returns a copy of the formant vector that callers may truncate freely
func (m WordModel) FormantsCopy() []float64 {
	return slices.Clone(m.Formants)
}

// FormantExtractor estimates an ascending formant vector from a signal
type FormantExtractor interface {
	ExtractFormants(signal audio.Signal, maxFormants int) ([]float64, error)
}

// ModelBuilder aggregates conditioned example signals into a WordModel
type ModelBuilder struct {
	extractor   FormantExtractor
	maxFormants int
	logger      logging.Logger
}

// NewModelBuilder creates a builder capping each example at maxFormants formants
func NewModelBuilder(extractor FormantExtractor, maxFormants int) *ModelBuilder {
	return &ModelBuilder{
		extractor:   extractor,
		maxFormants: maxFormants,
		logger: logging.WithFields(logging.Fields{
			"component": "feature_model_builder",
		}),
	}
}

// Build produces the median model of the given conditioned signals
func (b *ModelBuilder) Build(label string, signals []audio.Signal) (WordModel, error) {
	if len(signals) == 0 {
		return WordModel{}, fmt.Errorf("word %q: %w", label, ErrEmptyTrainingSet)
	}

	logger := b.logger.WithFields(logging.Fields{
		"function": "Build",
		"label":    label,
		"examples": len(signals),
	})

	formants, err := b.formantModel(signals)
	if err != nil {
		return WordModel{}, fmt.Errorf("word %q: %w", label, err)
	}

	model := WordModel{
		Label:         label,
		Formants:      formants,
		Duration:      durationModel(signals),
		ZeroCrossings: zeroCrossingModel(signals),
		Examples:      len(signals),
	}

	logger.Debug("Word model built", logging.Fields{
		"formants":       model.Formants,
		"duration":       model.Duration,
		"zero_crossings": model.ZeroCrossings,
	})

	return model, nil
}

// formantModel truncates every example's formants to the shortest vector and
// takes the element-wise median
func (b *ModelBuilder) formantModel(signals []audio.Signal) ([]float64, error) {
	vectors := make([][]float64, 0, len(signals))
	minLen := -1
	for i, sig := range signals {
		f, err := b.extractor.ExtractFormants(sig, b.maxFormants)
		if err != nil {
			return nil, fmt.Errorf("example %d: %w", i, err)
		}
		vectors = append(vectors, f)
		if minLen < 0 || len(f) < minLen {
			minLen = len(f)
		}
	}

	out := make([]float64, minLen)
	column := make([]float64, len(vectors))
	for j := range out {
		for i, v := range vectors {
			column[i] = v[j]
		}
		out[j] = Median(column)
	}

	return out, nil
}

func durationModel(signals []audio.Signal) float64 {
	lengths := make([]float64, len(signals))
	for i, sig := range signals {
		lengths[i] = sig.Duration()
	}
	return Median(lengths)
}

func zeroCrossingModel(signals []audio.Signal) float64 {
	counts := make([]float64, len(signals))
	for i, sig := range signals {
		counts[i] = float64(ZeroCrossings(sig.Samples))
	}
	return Median(counts)
}

// ZeroCrossings counts sign changes between consecutive non-zero samples.
// Zero samples are skipped, so a run through zero counts once.
func ZeroCrossings(samples []int16) int {
	if len(samples) < 2 {
		return 0
	}

	count := 0
	prev := samples[0]
	for _, v := range samples[1:] {
		if v == 0 {
			continue
		}
		if prev^v < 0 {
			count++
		}
		prev = v
	}

	return count
}

// Median returns the middle value of x, averaging the two central values for
// even lengths. x is not modified. The median of an empty slice is 0.
func Median(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sorted := slices.Clone(x)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
