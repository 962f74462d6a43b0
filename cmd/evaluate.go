package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/word-recognizer/internal/app"
)

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [flags]",
	Short: "Classify every training recording and report accuracy",
	Long: `Check the vocabulary against its own training recordings.

Every recording under the training directory is classified and compared to
the word it was recorded for. The report lists per-word accuracy and which
words were confused with which.

Examples:
  # Evaluate the saved vocabulary
  word-recognizer evaluate

  # Evaluate against a different recording set
  word-recognizer evaluate --training-dir ./held-out -o yaml`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	addVocabularyFlags(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	application, err := app.NewRecognizerApp(newAppContext())
	if err != nil {
		return fmt.Errorf("failed to initialize recognizer: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	return application.Evaluate(ctx)
}
