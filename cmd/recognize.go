package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/word-recognizer/internal/app"
)

// recognizeCmd represents the recognize command
var recognizeCmd = &cobra.Command{
	Use:   "recognize [flags] <recording.wav>...",
	Short: "Classify recordings against the vocabulary",
	Long: `Classify one or more wav recordings as vocabulary words.

The saved vocabulary from the model file is used when it exists. Otherwise
the vocabulary is trained in memory from the training directory first.

Examples:
  # Classify a single recording
  word-recognizer recognize ./capture.wav

  # Show per-word scores as JSON
  word-recognizer recognize -v -o json ./a.wav ./b.wav

  # Use a specific saved vocabulary
  word-recognizer recognize --model-file ./yes-no.json ./capture.wav`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("requires at least one recording")
		}
		return nil
	},
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)
	addVocabularyFlags(recognizeCmd)
}

func runRecognize(cmd *cobra.Command, args []string) error {
	application, err := app.NewRecognizerApp(newAppContext())
	if err != nil {
		return fmt.Errorf("failed to initialize recognizer: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	return application.Recognize(ctx, args)
}
