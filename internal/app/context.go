package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/word-recognizer/configs"
	"github.com/RyanBlaney/word-recognizer/pkg/audio"
	"github.com/RyanBlaney/word-recognizer/pkg/audio/source"
	"github.com/RyanBlaney/word-recognizer/pkg/recognition"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ConfigFile    string // Application configuration file (optional)
	OutputFile    string
	OutputFormat  string
	ModelFile     string
	TrainingDir   string
	Words         []string
	MaxConcurrent int
	NoSave        bool
	Verbose       bool
	Quiet         bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// RecognizerApp handles the recognizer application lifecycle
type RecognizerApp struct {
	ctx        *Context
	config     *configs.Config
	recognizer *recognition.Recognizer
	loader     *source.Loader
	metrics    *metricsSink
	logger     logging.Logger
}

// NewRecognizerApp creates a new recognizer application
func NewRecognizerApp(ctx *Context) (*RecognizerApp, error) {
	// Load configuration
	config, err := loadAndMergeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config

	// Set up logging
	logger := setupLogging(config)
	ctx.Logger = logger

	logger.Debug("Recognizer application initialized", logging.Fields{
		"config_file":   ctx.ConfigFile,
		"output_format": config.OutputFormat,
		"words":         len(config.Vocabulary.Words),
		"training_dir":  config.Vocabulary.TrainingDir,
		"model_file":    config.Vocabulary.ModelFile,
	})

	return &RecognizerApp{
		ctx:        ctx,
		config:     config,
		recognizer: recognition.NewRecognizer(config.RecognizerConfig()),
		loader:     source.NewLoader(config.Vocabulary.FilePattern),
		metrics:    newMetricsSink(config.Metrics),
		logger:     logger,
	}, nil
}

// setupLogging applies the configured level to the app and package loggers
func setupLogging(config *configs.Config) logging.Logger {
	level := config.EffectiveLogLevel()
	logging.SetLevel(level)

	logger := logging.NewDefaultLogger()
	logger.SetLevel(level)
	return logger
}

// Train builds the vocabulary from the training directory and saves it
func (app *RecognizerApp) Train(ctx context.Context) error {
	start := time.Now()

	vocab, sampleRate, err := app.train(ctx)
	if err != nil {
		return err
	}

	saved := ""
	if !app.ctx.NoSave {
		path := app.config.Vocabulary.ModelFile
		if err := recognition.SaveVocabulary(path, vocab, sampleRate, app.config.RecognizerConfig()); err != nil {
			return fmt.Errorf("failed to save vocabulary: %w", err)
		}
		saved = path

		if !app.ctx.Quiet {
			fmt.Fprintf(os.Stderr, "✅ Vocabulary saved to: %s\n", path)
		}
	}

	elapsed := time.Since(start)
	app.metrics.trainingCompleted(vocab, elapsed)

	return app.outputResults(map[string]any{
		"training":  trainingReport(vocab, sampleRate, saved, elapsed),
		"timestamp": time.Now(),
	})
}

// train loads the recordings for every configured word and builds their models
func (app *RecognizerApp) train(ctx context.Context) (*recognition.Vocabulary, int, error) {
	words := app.config.Vocabulary.Words
	dir := app.config.Vocabulary.TrainingDir

	set, err := app.loader.LoadTrainingSet(dir, words)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load training set: %w", err)
	}

	vocab, err := app.recognizer.BuildVocabulary(ctx, words, recognition.TrainingSet(set))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build vocabulary: %w", err)
	}

	return vocab, app.trainingSampleRate(set), nil
}

// trainingSampleRate returns the rate shared by the training recordings,
// warning about any that differ from the configured capture rate
func (app *RecognizerApp) trainingSampleRate(set map[string][]audio.Signal) int {
	expected := app.config.Audio.SampleRate
	for _, word := range app.config.Vocabulary.Words {
		for i, sig := range set[word] {
			if sig.SampleRate != expected {
				app.logger.Warn("Training recording sample rate differs from configured rate", logging.Fields{
					"word":        word,
					"example":     i,
					"sample_rate": sig.SampleRate,
					"configured":  expected,
				})
			}
		}
	}
	return expected
}

// loadVocabulary reads the saved vocabulary, training one in memory when no
// saved file exists
func (app *RecognizerApp) loadVocabulary(ctx context.Context) (*recognition.Vocabulary, int, error) {
	path := app.config.Vocabulary.ModelFile
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			vocab, file, err := recognition.LoadVocabulary(path)
			if err != nil {
				return nil, 0, err
			}
			if !sameFeatureSettings(file.Config, app.config.RecognizerConfig()) {
				app.logger.Warn("Saved vocabulary was trained with different settings", logging.Fields{
					"model_file": path,
				})
			}
			app.logger.Debug("Loaded saved vocabulary", logging.Fields{
				"model_file": path,
				"words":      vocab.Len(),
				"created_at": file.CreatedAt,
			})
			return vocab, file.SampleRate, nil
		}
	}

	app.logger.Debug("No saved vocabulary, training from recordings", logging.Fields{
		"model_file":   path,
		"training_dir": app.config.Vocabulary.TrainingDir,
	})
	return app.train(ctx)
}

// Recognize classifies each input recording against the vocabulary
func (app *RecognizerApp) Recognize(ctx context.Context, inputs []string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no input recordings given")
	}

	vocab, sampleRate, err := app.loadVocabulary(ctx)
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}

	results := make([]map[string]any, 0, len(inputs))
	failed := 0

	for _, path := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		result, err := app.recognizeFile(path, vocab, sampleRate)
		elapsed := time.Since(start)

		if err != nil {
			failed++
			app.logger.WithFields(logging.Fields{
				"input": path,
			}).Error(err, "Recognition failed")
			results = append(results, map[string]any{
				"input": path,
				"error": err.Error(),
			})
			app.metrics.recognitionFailed(elapsed)
			continue
		}

		results = append(results, recognitionEntry(path, result, elapsed, app.config.Verbose))
		app.metrics.recognitionCompleted(result.Label, elapsed)
	}

	if err := app.outputResults(map[string]any{
		"recognition": results,
		"vocabulary":  vocab.Words(),
		"timestamp":   time.Now(),
	}); err != nil {
		return err
	}

	if failed == len(inputs) {
		return fmt.Errorf("all %d recordings failed recognition", failed)
	}
	return nil
}

func (app *RecognizerApp) recognizeFile(path string, vocab *recognition.Vocabulary, sampleRate int) (*recognition.MatchResult, error) {
	sig, err := source.LoadFile(path)
	if err != nil {
		return nil, err
	}

	if sampleRate > 0 && sig.SampleRate != sampleRate {
		app.logger.Warn("Input sample rate differs from vocabulary", logging.Fields{
			"input":       path,
			"sample_rate": sig.SampleRate,
			"vocabulary":  sampleRate,
		})
	}

	return app.recognizer.Match(sig, vocab)
}

// Evaluate classifies every training recording and reports per-word accuracy
func (app *RecognizerApp) Evaluate(ctx context.Context) error {
	vocab, _, err := app.loadVocabulary(ctx)
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}

	set, err := app.loader.LoadTrainingSet(app.config.Vocabulary.TrainingDir, vocab.Words())
	if err != nil {
		return fmt.Errorf("failed to load training set: %w", err)
	}

	eval := newEvaluation(vocab.Words())
	for _, word := range vocab.Words() {
		for i, sig := range set[word] {
			if err := ctx.Err(); err != nil {
				return err
			}

			label, err := app.recognizer.Classify(sig, vocab)
			if err != nil {
				app.logger.WithFields(logging.Fields{
					"word":    word,
					"example": i,
				}).Error(err, "Classification failed during evaluation")
				eval.recordFailure(word)
				continue
			}
			eval.record(word, label)
		}
	}

	app.metrics.evaluationCompleted(eval)

	return app.outputResults(map[string]any{
		"evaluation": eval.report(),
		"timestamp":  time.Now(),
	})
}

// sameFeatureSettings reports whether two configs produce comparable models.
// Weights and concurrency only affect matching and training speed.
func sameFeatureSettings(a, b recognition.Config) bool {
	return a.Conditioning == b.Conditioning && a.Formants == b.Formants
}
