package configs

import (
	"fmt"
	"strings"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/word-recognizer/pkg/audio/conditioning"
	"github.com/RyanBlaney/word-recognizer/pkg/audio/formants"
	"github.com/RyanBlaney/word-recognizer/pkg/recognition"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	ConfigDir    string `mapstructure:"config_dir" yaml:"config_dir"`
	DataDir      string `mapstructure:"data_dir" yaml:"data_dir"`

	// Capture format
	Audio AudioConfig `mapstructure:"audio" yaml:"audio"`

	// Band-pass and silence trimming
	Conditioning conditioning.Config `mapstructure:"conditioning" yaml:"conditioning"`

	// Linear prediction
	Formants formants.Config `mapstructure:"formants" yaml:"formants"`

	// Scoring
	Matching MatchingConfig `mapstructure:"matching" yaml:"matching"`

	// Vocabulary and training data
	Vocabulary VocabularyConfig `mapstructure:"vocabulary" yaml:"vocabulary"`

	// Model building
	Training TrainingConfig `mapstructure:"training" yaml:"training"`

	// Metrics sink
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// AudioConfig contains capture format settings
type AudioConfig struct {
	SampleRate int `mapstructure:"sample_rate" yaml:"sample_rate"`
}

// MatchingConfig contains matcher settings
type MatchingConfig struct {
	Weights recognition.Weights `mapstructure:"weights" yaml:"weights"`
}

// VocabularyConfig names the words and where their recordings live
type VocabularyConfig struct {
	Words       []string `mapstructure:"words" yaml:"words"`
	TrainingDir string   `mapstructure:"training_dir" yaml:"training_dir"`
	FilePattern string   `mapstructure:"file_pattern" yaml:"file_pattern"`
	ModelFile   string   `mapstructure:"model_file" yaml:"model_file"`
}

// TrainingConfig contains model building settings
type TrainingConfig struct {
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`
}

// MetricsConfig contains metrics emission settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
}

// LoadConfig loads configuration from the global viper instance
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper())
}

// LoadConfigFrom loads configuration from v
func LoadConfigFrom(v *viper.Viper) (*Config, error) {
	config := &Config{}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// RecognizerConfig returns the pipeline configuration
func (c *Config) RecognizerConfig() recognition.Config {
	return recognition.Config{
		Conditioning:   c.Conditioning,
		Formants:       c.Formants,
		Weights:        c.Matching.Weights,
		MaxConcurrency: c.Training.MaxConcurrency,
	}
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if _, err := ParseLogLevel(config.LogLevel); err != nil {
		return err
	}

	if config.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio sample rate must be positive")
	}

	nyquist := float64(config.Audio.SampleRate) / 2
	if config.Conditioning.LowCutoff <= 0 {
		return fmt.Errorf("low cutoff must be positive")
	}
	if config.Conditioning.HighCutoff <= config.Conditioning.LowCutoff {
		return fmt.Errorf("high cutoff must be above low cutoff")
	}
	if config.Conditioning.HighCutoff >= nyquist {
		return fmt.Errorf("high cutoff %.0f Hz must be below nyquist %.0f Hz",
			config.Conditioning.HighCutoff, nyquist)
	}
	if config.Conditioning.FilterOrder < 1 {
		return fmt.Errorf("filter order must be at least 1")
	}
	if config.Conditioning.SilenceThreshold < 0 {
		return fmt.Errorf("silence threshold cannot be negative")
	}

	if config.Formants.MaxFormants < 1 {
		return fmt.Errorf("max formants must be at least 1")
	}
	if config.Formants.LPCOrder(config.Audio.SampleRate) < 1 {
		return fmt.Errorf("lpc order must be at least 1")
	}

	w := config.Matching.Weights
	if w.Formants < 0 || w.Duration < 0 || w.ZeroCrossings < 0 {
		return fmt.Errorf("matching weights cannot be negative")
	}

	if len(config.Vocabulary.Words) == 0 {
		return fmt.Errorf("vocabulary must contain at least one word")
	}
	seen := make(map[string]struct{}, len(config.Vocabulary.Words))
	for _, word := range config.Vocabulary.Words {
		if word == "" {
			return fmt.Errorf("vocabulary words cannot be empty")
		}
		if _, dup := seen[word]; dup {
			return fmt.Errorf("duplicate vocabulary word %q", word)
		}
		seen[word] = struct{}{}
	}

	if config.Training.MaxConcurrency < 1 {
		return fmt.Errorf("training max concurrency must be at least 1")
	}

	return nil
}

// ParseLogLevel maps a log level name to its logging level
func ParseLogLevel(name string) (logging.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return logging.DebugLevel, nil
	case "", "info":
		return logging.InfoLevel, nil
	case "warn", "warning":
		return logging.WarnLevel, nil
	case "error":
		return logging.ErrorLevel, nil
	case "fatal":
		return logging.FatalLevel, nil
	default:
		return logging.InfoLevel, fmt.Errorf("unknown log level %q", name)
	}
}

// EffectiveLogLevel is the configured level, lowered to debug when verbose
func (c *Config) EffectiveLogLevel() logging.Level {
	level, _ := ParseLogLevel(c.LogLevel)
	if c.Verbose && level > logging.DebugLevel {
		return logging.DebugLevel
	}
	return level
}
