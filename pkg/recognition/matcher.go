package recognition

import (
	"math"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/word-recognizer/pkg/audio/features"
)

// Channel names one feature compared by the matcher
type Channel string

const (
	ChannelFormants      Channel = "formants"
	ChannelDuration      Channel = "duration"
	ChannelZeroCrossings Channel = "zero_crossings"
)

// Channels lists every channel in scoring order
var Channels = []Channel{ChannelFormants, ChannelDuration, ChannelZeroCrossings}

// Weights scales each channel's similarity before summation
type Weights struct {
	Formants      float64 `mapstructure:"formants" json:"formants" yaml:"formants"`
	Duration      float64 `mapstructure:"duration" json:"duration" yaml:"duration"`
	ZeroCrossings float64 `mapstructure:"zero_crossings" json:"zero_crossings" yaml:"zero_crossings"`
}

// DefaultWeights gives every channel equal weight
func DefaultWeights() Weights {
	return Weights{Formants: 1, Duration: 1, ZeroCrossings: 1}
}

func (w Weights) of(c Channel) float64 {
	switch c {
	case ChannelFormants:
		return w.Formants
	case ChannelDuration:
		return w.Duration
	case ChannelZeroCrossings:
		return w.ZeroCrossings
	}
	return 0
}

// WordScore holds the per-channel comparison of the input against one word
type WordScore struct {
	Word         string              `json:"word" yaml:"word"`
	Differences  map[Channel]float64 `json:"differences" yaml:"differences"`
	Similarities map[Channel]float64 `json:"similarities" yaml:"similarities"`
	Total        float64             `json:"total" yaml:"total"`
}

// MatchResult is the outcome of scoring one input against a vocabulary
type MatchResult struct {
	Label  string             `json:"label" yaml:"label"`
	Score  float64            `json:"score" yaml:"score"`
	Input  features.WordModel `json:"input" yaml:"input"`
	Scores []WordScore        `json:"scores" yaml:"scores"`
}

// Matcher scores an utterance model against every vocabulary word
type Matcher struct {
	weights Weights
	logger  logging.Logger
}

// NewMatcher creates a matcher with the given channel weights
func NewMatcher(weights Weights) *Matcher {
	return &Matcher{
		weights: weights,
		logger: logging.WithFields(logging.Fields{
			"component": "matcher",
		}),
	}
}

// Match compares the input model with every word. Raw differences are mapped
// to similarities per channel with reverse min-max normalization and summed.
// The first word in vocabulary order wins ties.
func (m *Matcher) Match(input features.WordModel, vocab *Vocabulary) (*MatchResult, error) {
	if vocab.Len() == 0 {
		return nil, ErrEmptyVocabulary
	}

	words := vocab.Words()
	raw := map[Channel]map[string]float64{
		ChannelFormants:      make(map[string]float64, len(words)),
		ChannelDuration:      make(map[string]float64, len(words)),
		ChannelZeroCrossings: make(map[string]float64, len(words)),
	}
	var noFormants []string

	vocab.each(func(_ int, model features.WordModel) {
		if d, ok := FormantDifference(input.Formants, model.Formants); ok {
			raw[ChannelFormants][model.Label] = d
		} else {
			noFormants = append(noFormants, model.Label)
		}
		raw[ChannelDuration][model.Label] = math.Abs(input.Duration - model.Duration)
		raw[ChannelZeroCrossings][model.Label] = math.Abs(input.ZeroCrossings - model.ZeroCrossings)
	})

	// Words sharing no formant prefix with the input rank last on that channel
	if len(noFormants) > 0 {
		worst := 0.0
		for _, d := range raw[ChannelFormants] {
			worst = math.Max(worst, d)
		}
		for _, w := range noFormants {
			raw[ChannelFormants][w] = worst
		}
		m.logger.Warn("No common formant prefix with some words", logging.Fields{
			"words":          noFormants,
			"input_formants": len(input.Formants),
		})
	}

	similarity := make(map[Channel]map[string]float64, len(Channels))
	for _, c := range Channels {
		similarity[c] = ReverseMinMax(raw[c])
	}

	result := &MatchResult{
		Input:  input,
		Scores: make([]WordScore, 0, len(words)),
		Score:  math.Inf(-1),
	}
	for _, w := range words {
		score := WordScore{
			Word:         w,
			Differences:  make(map[Channel]float64, len(Channels)),
			Similarities: make(map[Channel]float64, len(Channels)),
		}
		for _, c := range Channels {
			score.Differences[c] = raw[c][w]
			score.Similarities[c] = similarity[c][w]
			score.Total += m.weights.of(c) * similarity[c][w]
		}
		result.Scores = append(result.Scores, score)

		if score.Total > result.Score {
			result.Score = score.Total
			result.Label = w
		}
	}

	m.logger.Debug("Input matched", logging.Fields{
		"label": result.Label,
		"score": result.Score,
		"words": len(words),
	})

	return result, nil
}

// FormantDifference is the mean absolute difference over the common leading
// prefix of a and b. Neither slice is modified. ok is false when the prefix
// is empty.
func FormantDifference(a, b []float64) (float64, bool) {
	n := min(len(a), len(b))
	if n == 0 {
		return 0, false
	}

	sum := 0.0
	for i := range n {
		sum += math.Abs(a[i] - b[i])
	}
	return sum / float64(n), true
}

// ReverseMinMax maps raw differences to similarities in [0,1] so the smallest
// difference scores 1 and the largest 0. When every value is equal all
// similarities are 1.
func ReverseMinMax(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	for k, v := range values {
		if hi == lo {
			out[k] = 1
			continue
		}
		out[k] = 1 - (v-lo)/(hi-lo)
	}

	return out
}
