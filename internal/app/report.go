package app

import (
	"sort"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/RyanBlaney/word-recognizer/pkg/recognition"
)

var titleCaser = cases.Title(language.English)

// displayLabel title-cases a vocabulary label for human readable output
func displayLabel(word string) string {
	return titleCaser.String(word)
}

// trainingReport summarizes each trained word model
func trainingReport(vocab *recognition.Vocabulary, sampleRate int, modelFile string, elapsed time.Duration) map[string]any {
	words := make([]map[string]any, 0, vocab.Len())
	for _, m := range vocab.Models() {
		words = append(words, map[string]any{
			"word":           m.Label,
			"display":        displayLabel(m.Label),
			"examples":       m.Examples,
			"formants":       m.Formants,
			"duration":       m.Duration,
			"zero_crossings": m.ZeroCrossings,
		})
	}

	report := map[string]any{
		"words":            words,
		"word_count":       vocab.Len(),
		"sample_rate":      sampleRate,
		"training_time_ms": elapsed.Milliseconds(),
	}
	if modelFile != "" {
		report["model_file"] = modelFile
	}
	return report
}

// recognitionEntry flattens one match result, including per-word scores when verbose
func recognitionEntry(input string, result *recognition.MatchResult, elapsed time.Duration, verbose bool) map[string]any {
	entry := map[string]any{
		"input":       input,
		"label":       result.Label,
		"display":     displayLabel(result.Label),
		"score":       result.Score,
		"duration":    result.Input.Duration,
		"formants":    result.Input.Formants,
		"process_ms":  elapsed.Milliseconds(),
		"vocab_words": len(result.Scores),
	}

	if verbose {
		scores := make([]map[string]any, 0, len(result.Scores))
		for _, s := range result.Scores {
			similarities := make(map[string]float64, len(s.Similarities))
			differences := make(map[string]float64, len(s.Differences))
			for c, v := range s.Similarities {
				similarities[string(c)] = v
			}
			for c, v := range s.Differences {
				differences[string(c)] = v
			}
			scores = append(scores, map[string]any{
				"word":         s.Word,
				"total":        s.Total,
				"similarities": similarities,
				"differences":  differences,
			})
		}
		entry["scores"] = scores
	}

	return entry
}

// evaluation tallies classifications of labelled recordings
type evaluation struct {
	words     []string
	examples  map[string]int
	correct   map[string]int
	failed    map[string]int
	confusion map[string]map[string]int
}

func newEvaluation(words []string) *evaluation {
	return &evaluation{
		words:     words,
		examples:  make(map[string]int, len(words)),
		correct:   make(map[string]int, len(words)),
		failed:    make(map[string]int, len(words)),
		confusion: make(map[string]map[string]int, len(words)),
	}
}

func (e *evaluation) record(word, predicted string) {
	e.examples[word]++
	if predicted == word {
		e.correct[word]++
		return
	}
	if e.confusion[word] == nil {
		e.confusion[word] = make(map[string]int)
	}
	e.confusion[word][predicted]++
}

func (e *evaluation) recordFailure(word string) {
	e.examples[word]++
	e.failed[word]++
}

// totals returns the overall example and correct counts
func (e *evaluation) totals() (examples, correct int) {
	for _, w := range e.words {
		examples += e.examples[w]
		correct += e.correct[w]
	}
	return examples, correct
}

func accuracy(correct, examples int) float64 {
	if examples == 0 {
		return 0
	}
	return float64(correct) / float64(examples)
}

func (e *evaluation) report() map[string]any {
	words := make([]map[string]any, 0, len(e.words))
	for _, w := range e.words {
		entry := map[string]any{
			"word":     w,
			"display":  displayLabel(w),
			"examples": e.examples[w],
			"correct":  e.correct[w],
			"failed":   e.failed[w],
			"accuracy": accuracy(e.correct[w], e.examples[w]),
		}
		if confused := e.confusion[w]; len(confused) > 0 {
			labels := make([]string, 0, len(confused))
			for l := range confused {
				labels = append(labels, l)
			}
			sort.Strings(labels)
			mistakes := make([]map[string]any, 0, len(labels))
			for _, l := range labels {
				mistakes = append(mistakes, map[string]any{"predicted": l, "count": confused[l]})
			}
			entry["confused_with"] = mistakes
		}
		words = append(words, entry)
	}

	examples, correct := e.totals()
	return map[string]any{
		"words":    words,
		"examples": examples,
		"correct":  correct,
		"accuracy": accuracy(correct, examples),
	}
}
