package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/word-recognizer/internal/app"
)

var (
	// Shared vocabulary flags
	trainingDir    string
	modelFile      string
	vocabWords     []string
	outputFile     string
	quiet          bool
	maxConcurrency int

	// Train command flags
	trainNoSave bool
)

// trainCmd represents the train command
var trainCmd = &cobra.Command{
	Use:   "train [flags]",
	Short: "Build the vocabulary from training recordings",
	Long: `Build one model per vocabulary word from its training recordings.

Recordings are read from <training-dir>/<word>/<word>*.wav. Every word must
have at least one recording. The trained vocabulary is saved to the model
file unless --no-save is given.

Examples:
  # Train the configured vocabulary
  word-recognizer train --training-dir ./recordings

  # Train a custom vocabulary and save it as JSON
  word-recognizer train --words yes,no,stop --model-file ./yes-no.json

  # Print the trained models without saving them
  word-recognizer train --no-save --output yaml`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	addVocabularyFlags(trainCmd)
	trainCmd.Flags().BoolVar(&trainNoSave, "no-save", false,
		"do not write the trained vocabulary to the model file")
	trainCmd.Flags().IntVar(&maxConcurrency, "max-concurrent", 0,
		"maximum words trained in parallel (default from config)")
}

// addVocabularyFlags registers the flags shared by every vocabulary command
func addVocabularyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&trainingDir, "training-dir", "",
		"directory holding one subdirectory of recordings per word")
	cmd.Flags().StringVar(&modelFile, "model-file", "",
		"saved vocabulary file (.yaml or .json)")
	cmd.Flags().StringSliceVar(&vocabWords, "words", nil,
		"vocabulary words, in tie-break order")
	cmd.Flags().StringVarP(&outputFile, "output-file", "f", "",
		"write results to file instead of stdout")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress progress messages")
}

// newAppContext builds the application context from the parsed flags
func newAppContext() *app.Context {
	return &app.Context{
		ConfigFile:    configFile,
		OutputFile:    outputFile,
		ModelFile:     modelFile,
		TrainingDir:   trainingDir,
		Words:         vocabWords,
		MaxConcurrent: maxConcurrency,
		NoSave:        trainNoSave,
		Verbose:       verbose,
		Quiet:         quiet,
	}
}

func runTrain(cmd *cobra.Command, args []string) error {
	application, err := app.NewRecognizerApp(newAppContext())
	if err != nil {
		return fmt.Errorf("failed to initialize recognizer: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	return application.Train(ctx)
}
