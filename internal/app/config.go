package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/word-recognizer/configs"
)

// loadAndMergeConfig loads the viper configuration and applies CLI overrides
func loadAndMergeConfig(ctx *Context) (*configs.Config, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load base configuration: %w", err)
	}

	mergeContext(config, ctx)

	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// mergeContext overrides file and env settings with explicit CLI flags
func mergeContext(config *configs.Config, ctx *Context) {
	if ctx.OutputFormat != "" {
		config.OutputFormat = ctx.OutputFormat
	}
	if ctx.ModelFile != "" {
		config.Vocabulary.ModelFile = ctx.ModelFile
	}
	if ctx.TrainingDir != "" {
		config.Vocabulary.TrainingDir = ctx.TrainingDir
	}
	if len(ctx.Words) > 0 {
		config.Vocabulary.Words = ctx.Words
	}
	if ctx.MaxConcurrent > 0 {
		config.Training.MaxConcurrency = ctx.MaxConcurrent
	}
	if ctx.Verbose {
		config.Verbose = true
	}
}

// loadConfigFile reads a single YAML or JSON config file on top of the defaults
func loadConfigFile(configFile string) (*configs.Config, error) {
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file does not exist: %s", configFile)
	}

	v := viper.New()
	configs.SetDefaults(v)
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return configs.LoadConfigFrom(v)
}

// GenerateExampleConfig writes the default configuration as YAML
func GenerateExampleConfig(outputFile string) error {
	data, err := yaml.Marshal(configs.GetDefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("✅ Example configuration written to: %s\n", outputFile)
	return nil
}

// ValidateConfig validates a configuration file
func ValidateConfig(configFile string) error {
	config, err := loadConfigFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := configs.ValidateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Printf("✅ Configuration is valid: %s\n", configFile)
	fmt.Printf("   - Vocabulary: %d words\n", len(config.Vocabulary.Words))
	fmt.Printf("   - LPC order at %d Hz: %d\n", config.Audio.SampleRate, config.Formants.LPCOrder(config.Audio.SampleRate))

	return nil
}
