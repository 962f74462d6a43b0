package configs

import (
	"testing"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsLoadAndValidate(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadConfigFrom(v)
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 200.0, cfg.Conditioning.LowCutoff)
	assert.Equal(t, 6500.0, cfg.Conditioning.HighCutoff)
	assert.Equal(t, 5, cfg.Conditioning.FilterOrder)
	assert.Equal(t, 5, cfg.Formants.MaxFormants)
	assert.Equal(t, 46, cfg.Formants.LPCOrder(cfg.Audio.SampleRate))
	assert.Equal(t, DefaultVocabulary, cfg.Vocabulary.Words)
	assert.Equal(t, 4, cfg.Training.MaxConcurrency)
	assert.Equal(t, 1.0, cfg.Matching.Weights.Duration)
}

func TestOverridesReachRecognizerConfig(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("conditioning.silence_threshold", 500)
	v.Set("matching.weights.formants", 2.5)
	v.Set("training.max_concurrency", 2)

	cfg, err := LoadConfigFrom(v)
	require.NoError(t, err)

	rc := cfg.RecognizerConfig()
	assert.Equal(t, 500, rc.Conditioning.SilenceThreshold)
	assert.Equal(t, 2.5, rc.Weights.Formants)
	assert.Equal(t, 2, rc.MaxConcurrency)
	assert.Equal(t, cfg.Formants, rc.Formants)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown log level", func(c *Config) { c.LogLevel = "chatty" }},
		{"zero sample rate", func(c *Config) { c.Audio.SampleRate = 0 }},
		{"low cutoff not positive", func(c *Config) { c.Conditioning.LowCutoff = 0 }},
		{"inverted band", func(c *Config) { c.Conditioning.HighCutoff = 100 }},
		{"high cutoff above nyquist", func(c *Config) { c.Audio.SampleRate = 8000 }},
		{"zero filter order", func(c *Config) { c.Conditioning.FilterOrder = 0 }},
		{"negative threshold", func(c *Config) { c.Conditioning.SilenceThreshold = -1 }},
		{"zero formants", func(c *Config) { c.Formants.MaxFormants = 0 }},
		{"negative weight", func(c *Config) { c.Matching.Weights.ZeroCrossings = -1 }},
		{"empty vocabulary", func(c *Config) { c.Vocabulary.Words = nil }},
		{"empty word", func(c *Config) { c.Vocabulary.Words = []string{"yes", ""} }},
		{"duplicate word", func(c *Config) { c.Vocabulary.Words = []string{"yes", "no", "yes"} }},
		{"zero concurrency", func(c *Config) { c.Training.MaxConcurrency = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level logging.Level
	}{
		{"debug", logging.DebugLevel},
		{"DEBUG", logging.DebugLevel},
		{"", logging.InfoLevel},
		{"info", logging.InfoLevel},
		{"warn", logging.WarnLevel},
		{"warning", logging.WarnLevel},
		{"error", logging.ErrorLevel},
		{"fatal", logging.FatalLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseLogLevel(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.level, level)
		})
	}

	_, err := ParseLogLevel("trace")
	assert.Error(t, err)
}

func TestEffectiveLogLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	assert.Equal(t, logging.InfoLevel, cfg.EffectiveLogLevel())

	cfg.LogLevel = "error"
	assert.Equal(t, logging.ErrorLevel, cfg.EffectiveLogLevel())

	cfg.Verbose = true
	assert.Equal(t, logging.DebugLevel, cfg.EffectiveLogLevel())
}
