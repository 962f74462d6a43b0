package recognition

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/word-recognizer/pkg/audio"
	"github.com/RyanBlaney/word-recognizer/pkg/audio/conditioning"
	"github.com/RyanBlaney/word-recognizer/pkg/audio/features"
	"github.com/RyanBlaney/word-recognizer/pkg/audio/formants"
)

// SignalConditioner prepares a raw capture for feature extraction
type SignalConditioner interface {
	Condition(raw audio.Signal) (audio.Signal, error)
}

// Config holds every stage's parameters
type Config struct {
	Conditioning   conditioning.Config `mapstructure:"conditioning" json:"conditioning" yaml:"conditioning"`
	Formants       formants.Config     `mapstructure:"formants" json:"formants" yaml:"formants"`
	Weights        Weights             `mapstructure:"weights" json:"weights" yaml:"weights"`
	MaxConcurrency int                 `mapstructure:"max_concurrency" json:"max_concurrency" yaml:"max_concurrency"`
}

// DefaultConfig returns the default pipeline configuration
func DefaultConfig() Config {
	return Config{
		Conditioning:   conditioning.DefaultConfig(),
		Formants:       formants.DefaultConfig(),
		Weights:        DefaultWeights(),
		MaxConcurrency: 4,
	}
}

// Recognizer runs the conditioning, feature and matching stages. It holds no
// per-call state and may be shared between goroutines.
type Recognizer struct {
	conditioner    SignalConditioner
	builder        *features.ModelBuilder
	matcher        *Matcher
	maxConcurrency int
	logger         logging.Logger
}

// NewRecognizer wires the default stage implementations from config
func NewRecognizer(config Config) *Recognizer {
	extractor := formants.NewExtractor(config.Formants)
	return NewRecognizerWith(
		conditioning.NewConditioner(config.Conditioning),
		features.NewModelBuilder(extractor, config.Formants.MaxFormants),
		NewMatcher(config.Weights),
		config.MaxConcurrency,
	)
}

// NewRecognizerWith assembles a recognizer from explicit stages
func NewRecognizerWith(conditioner SignalConditioner, builder *features.ModelBuilder, matcher *Matcher, maxConcurrency int) *Recognizer {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Recognizer{
		conditioner:    conditioner,
		builder:        builder,
		matcher:        matcher,
		maxConcurrency: maxConcurrency,
		logger: logging.WithFields(logging.Fields{
			"component": "recognizer",
		}),
	}
}

// TrainingSet maps each vocabulary word to its raw example recordings
type TrainingSet map[string][]audio.Signal

// BuildVocabulary conditions every example and builds one model per word.
// Words are built concurrently; the vocabulary is only assembled once every
// word has finished, and the first failure aborts the whole build.
func (r *Recognizer) BuildVocabulary(ctx context.Context, words []string, training TrainingSet) (*Vocabulary, error) {
	if len(words) == 0 {
		return nil, ErrEmptyVocabulary
	}

	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, dup := seen[w]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateWord, w)
		}
		seen[w] = struct{}{}
	}
	for w := range training {
		if _, ok := seen[w]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownWord, w)
		}
	}

	start := time.Now()
	r.logger.Debug("Building vocabulary", logging.Fields{
		"words":           len(words),
		"max_concurrency": r.maxConcurrency,
	})

	models := make([]features.WordModel, len(words))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrency)
	for i, word := range words {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			model, err := r.buildWord(word, training[word])
			if err != nil {
				return &BuildError{Word: word, Err: err}
			}
			models[i] = model
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vocab, err := NewVocabulary(models...)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Vocabulary built", logging.Fields{
		"words":       vocab.Len(),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return vocab, nil
}

func (r *Recognizer) buildWord(word string, examples []audio.Signal) (features.WordModel, error) {
	conditioned := make([]audio.Signal, 0, len(examples))
	for i, ex := range examples {
		c, err := r.conditioner.Condition(ex)
		if err != nil {
			return features.WordModel{}, fmt.Errorf("example %d: %w", i, err)
		}
		conditioned = append(conditioned, c)
	}
	return r.builder.Build(word, conditioned)
}

// Model conditions one input and returns its single-example model
func (r *Recognizer) Model(input audio.Signal) (features.WordModel, error) {
	conditioned, err := r.conditioner.Condition(input)
	if err != nil {
		return features.WordModel{}, &ClassifyError{Stage: "conditioning", Err: err}
	}

	model, err := r.builder.Build("", []audio.Signal{conditioned})
	if err != nil {
		return features.WordModel{}, &ClassifyError{Stage: "feature extraction", Err: err}
	}

	return model, nil
}

// Match scores the input against every word in vocab
func (r *Recognizer) Match(input audio.Signal, vocab *Vocabulary) (*MatchResult, error) {
	if vocab.Len() == 0 {
		return nil, ErrEmptyVocabulary
	}

	model, err := r.Model(input)
	if err != nil {
		return nil, err
	}

	return r.matcher.Match(model, vocab)
}

// Classify returns the best matching word label for input
func (r *Recognizer) Classify(input audio.Signal, vocab *Vocabulary) (string, error) {
	result, err := r.Match(input, vocab)
	if err != nil {
		return "", err
	}
	return result.Label, nil
}
