package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/word-recognizer/configs"
	"github.com/RyanBlaney/word-recognizer/internal/app"
)

var (
	configTestExample  string
	configTestValidate string
)

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Test and display all configuration values",
	Long: `Test configuration loading and display all values to verify proper parsing.

This command loads the configuration and displays all values in a structured format
to help verify that your YAML configuration is being parsed correctly.

Examples:
  # Test with default config file
  word-recognizer config-test

  # Test with specific config file
  word-recognizer --config /path/to/config.yaml config-test

  # Write the defaults as a starting config file
  word-recognizer config-test --write-example ./word-recognizer.yaml

  # Validate a config file without loading it as the active config
  word-recognizer config-test --validate ./word-recognizer.yaml`,
	RunE: runConfigTest,
}

func init() {
	rootCmd.AddCommand(configTestCmd)

	configTestCmd.Flags().StringVar(&configTestExample, "write-example", "",
		"write the default configuration to this file and exit")
	configTestCmd.Flags().StringVar(&configTestValidate, "validate", "",
		"validate this configuration file and exit")
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	if configTestExample != "" {
		return app.GenerateExampleConfig(configTestExample)
	}
	if configTestValidate != "" {
		return app.ValidateConfig(configTestValidate)
	}

	fmt.Println("WORD RECOGNIZER CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 80))

	// Load configuration
	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSection("APPLICATION SETTINGS")
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Log Level", config.LogLevel)
	printKeyValue("Output Format", config.OutputFormat)
	printKeyValue("Config Directory", config.ConfigDir)
	printKeyValue("Data Directory", config.DataDir)

	printSection("AUDIO CONFIGURATION")
	printKeyValue("Sample Rate", fmt.Sprintf("%d Hz", config.Audio.SampleRate))

	printSection("CONDITIONING CONFIGURATION")
	printKeyValue("Low Cutoff", fmt.Sprintf("%.1f Hz", config.Conditioning.LowCutoff))
	printKeyValue("High Cutoff", fmt.Sprintf("%.1f Hz", config.Conditioning.HighCutoff))
	printKeyValue("Filter Order", fmt.Sprintf("%d", config.Conditioning.FilterOrder))
	printKeyValue("Silence Threshold", fmt.Sprintf("%d", config.Conditioning.SilenceThreshold))

	printSection("FORMANT CONFIGURATION")
	printKeyValue("Max Formants", fmt.Sprintf("%d", config.Formants.MaxFormants))
	printKeyValue("Pre-emphasis", fmt.Sprintf("%.2f", config.Formants.PreEmphasis))
	printKeyValue("LPC Order Base", fmt.Sprintf("%d", config.Formants.LPCOrderBase))
	printKeyValue("LPC Order per kHz", fmt.Sprintf("%d", config.Formants.LPCOrderPerKHz))
	printKeyValue("Effective LPC Order", fmt.Sprintf("%d", config.Formants.LPCOrder(config.Audio.SampleRate)))

	printSection("MATCHING CONFIGURATION")
	printSubsection("Weights")
	printKeyValue("  Formants", fmt.Sprintf("%.2f", config.Matching.Weights.Formants))
	printKeyValue("  Duration", fmt.Sprintf("%.2f", config.Matching.Weights.Duration))
	printKeyValue("  Zero Crossings", fmt.Sprintf("%.2f", config.Matching.Weights.ZeroCrossings))

	printSection("VOCABULARY CONFIGURATION")
	printKeyValue("Words", fmt.Sprintf("(%d) %v", len(config.Vocabulary.Words), config.Vocabulary.Words))
	printKeyValue("Training Directory", config.Vocabulary.TrainingDir)
	printKeyValue("File Pattern", config.Vocabulary.FilePattern)
	printKeyValue("Model File", config.Vocabulary.ModelFile)

	printSection("TRAINING CONFIGURATION")
	printKeyValue("Max Concurrency", fmt.Sprintf("%d", config.Training.MaxConcurrency))

	printSection("METRICS CONFIGURATION")
	printKeyValue("Enabled", fmt.Sprintf("%t", config.Metrics.Enabled))
	printKeyValue("Log File", config.Metrics.LogFile)

	fmt.Println()
	if err := configs.ValidateConfig(config); err != nil {
		fmt.Println(ColorRed + strings.Repeat("-", 80))
		fmt.Printf("CONFIGURATION INVALID: %v\n", err)
		fmt.Println(strings.Repeat("=", 80) + ColorReset)
		return err
	}

	fmt.Println(ColorGreen + strings.Repeat("-", 80))
	fmt.Println("CONFIGURATION TEST COMPLETED SUCCESSFULLY")
	fmt.Printf("Config file: %s\n", getConfigFilePath())
	fmt.Println(strings.Repeat("=", 80) + ColorReset)

	return nil
}

func printSection(title string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("-", len(title)))
}

func printSubsection(title string) {
	fmt.Printf("\n  %s\n", title)
}

func printKeyValue(key, value string) {
	if value == "" {
		fmt.Printf("%-35s\n", key)
	} else {
		fmt.Printf("%-35s %s\n", key+":", value)
	}
}

func getConfigFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return "(none, defaults and environment only)"
}
