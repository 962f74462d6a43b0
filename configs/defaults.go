package configs

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/word-recognizer/pkg/audio/conditioning"
	"github.com/RyanBlaney/word-recognizer/pkg/audio/formants"
	"github.com/RyanBlaney/word-recognizer/pkg/audio/source"
	"github.com/RyanBlaney/word-recognizer/pkg/recognition"
)

// DefaultVocabulary is the command vocabulary the recognizer ships with
var DefaultVocabulary = []string{
	"hello",
	"do",
	"delete",
	"edit",
	"exit",
	"paste",
	"put",
	"bye",
	"backup",
	"list",
}

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	defaults := GetDefaultConfig()

	// Application defaults
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("output_format", defaults.OutputFormat)
	v.SetDefault("config_dir", defaults.ConfigDir)
	v.SetDefault("data_dir", defaults.DataDir)

	// Audio defaults
	v.SetDefault("audio.sample_rate", defaults.Audio.SampleRate)

	// Conditioning defaults
	v.SetDefault("conditioning.low_cutoff", defaults.Conditioning.LowCutoff)
	v.SetDefault("conditioning.high_cutoff", defaults.Conditioning.HighCutoff)
	v.SetDefault("conditioning.filter_order", defaults.Conditioning.FilterOrder)
	v.SetDefault("conditioning.silence_threshold", defaults.Conditioning.SilenceThreshold)

	// Formant defaults
	v.SetDefault("formants.max_formants", defaults.Formants.MaxFormants)
	v.SetDefault("formants.pre_emphasis", defaults.Formants.PreEmphasis)
	v.SetDefault("formants.lpc_order_base", defaults.Formants.LPCOrderBase)
	v.SetDefault("formants.lpc_order_per_khz", defaults.Formants.LPCOrderPerKHz)

	// Matching defaults
	v.SetDefault("matching.weights.formants", defaults.Matching.Weights.Formants)
	v.SetDefault("matching.weights.duration", defaults.Matching.Weights.Duration)
	v.SetDefault("matching.weights.zero_crossings", defaults.Matching.Weights.ZeroCrossings)

	// Vocabulary defaults
	v.SetDefault("vocabulary.words", defaults.Vocabulary.Words)
	v.SetDefault("vocabulary.training_dir", defaults.Vocabulary.TrainingDir)
	v.SetDefault("vocabulary.file_pattern", defaults.Vocabulary.FilePattern)
	v.SetDefault("vocabulary.model_file", defaults.Vocabulary.ModelFile)

	// Training defaults
	v.SetDefault("training.max_concurrency", defaults.Training.MaxConcurrency)

	// Metrics defaults
	v.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	v.SetDefault("metrics.log_file", defaults.Metrics.LogFile)
}

// GetDefaultConfig returns a complete default configuration
func GetDefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".local", "share", "word-recognizer")

	return &Config{
		Verbose:      false,
		LogLevel:     "info",
		OutputFormat: "table",
		ConfigDir:    filepath.Join(home, ".config", "word-recognizer"),
		DataDir:      dataDir,
		Audio: AudioConfig{
			SampleRate: 44100,
		},
		Conditioning: conditioning.DefaultConfig(),
		Formants:     formants.DefaultConfig(),
		Matching: MatchingConfig{
			Weights: recognition.DefaultWeights(),
		},
		Vocabulary: VocabularyConfig{
			Words:       append([]string(nil), DefaultVocabulary...),
			TrainingDir: filepath.Join(dataDir, "training"),
			FilePattern: source.DefaultPattern,
			ModelFile:   filepath.Join(dataDir, "vocabulary.yaml"),
		},
		Training: TrainingConfig{
			MaxConcurrency: 4,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			LogFile: "/tmp/word-recognizer.log",
		},
	}
}
