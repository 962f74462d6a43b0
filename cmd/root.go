package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/word-recognizer/configs"
)

const (
	appName   = "word-recognizer"
	envPrefix = "WORD_RECOGNIZER"
)

// Terminal colors for human readable command output
const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorGreen = "\033[32m"
)

var (
	configFile   string
	verbose      bool
	logLevel     string
	outputFormat string
	configDir    string
	dataDir      string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "word-recognizer",
	Short: "Isolated word speech recognizer",
	Long: `A small-vocabulary isolated word recognizer.

Each vocabulary word is trained from a handful of example recordings. A new
recording is band-pass filtered, trimmed to the spoken part, reduced to its
formant frequencies, duration and zero crossing count, and matched against
every trained word.

Key features:
- Butterworth band-pass conditioning and silence trimming
- LPC formant extraction
- Median word models built concurrently from wav recordings
- Saved vocabularies in YAML or JSON
- Self-consistency evaluation over the training set`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"config directory (default is $HOME/.config/word-recognizer)")

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/word-recognizer/word-recognizer.yaml)")

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data directory (default is $HOME/.local/share/word-recognizer)")

	// Output and logging flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"output format (json, table, csv, yaml)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output_format", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("config_dir", rootCmd.PersistentFlags().Lookup("config-dir"))
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

// initConfig layers defaults, the config file and WORD_RECOGNIZER_* variables
func initConfig() {
	configs.SetDefaults(viper.GetViper())

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		for _, dir := range configSearchPaths(configDir) {
			viper.AddConfigPath(dir)
		}
		viper.SetConfigName(appName)
		viper.SetConfigType("yaml")
	}

	var notFound viper.ConfigFileNotFoundError
	switch err := viper.ReadInConfig(); {
	case err == nil:
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	case errors.As(err, &notFound):
		// Defaults and environment only
	default:
		fmt.Fprintf(os.Stderr, "%sError reading config file: %v%s\n", ColorRed, err, ColorReset)
		os.Exit(1)
	}
}

// configSearchPaths lists the directories searched for word-recognizer.yaml,
// most specific first
func configSearchPaths(dir string) []string {
	var paths []string
	if dir != "" {
		paths = append(paths, dir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName), home)
	}
	return append(paths, filepath.Join("/etc", appName), "./configs")
}

// initializeConfig initializes configuration after flags are parsed
func initializeConfig(cmd *cobra.Command) error {
	return bindFlags(cmd, viper.GetViper())
}

// bindFlags fills every flag left unset on the command line from its
// WORD_RECOGNIZER_<FLAG> variable or a config key of the same name
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var errs []error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindEnv(f.Name, envKey(f.Name)); err != nil {
			errs = append(errs, err)
		}

		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := cmd.Flags().Set(f.Name, flagValue(v.Get(f.Name))); err != nil {
			errs = append(errs, fmt.Errorf("flag --%s: %w", f.Name, err))
		}
	})

	return errors.Join(errs...)
}

// envKey is the environment variable that feeds a flag
func envKey(flag string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// flagValue renders a viper value the way pflag parses it back, with list
// values comma separated
func flagValue(val any) string {
	switch list := val.(type) {
	case []string:
		return strings.Join(list, ",")
	case []any:
		items := make([]string, len(list))
		for i, item := range list {
			items[i] = fmt.Sprint(item)
		}
		return strings.Join(items, ",")
	default:
		return fmt.Sprint(val)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
