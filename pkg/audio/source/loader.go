package source

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/word-recognizer/pkg/audio"
)

// DefaultPattern matches "<word>/<word>*.wav" under the training directory
const DefaultPattern = "{word}*.wav"

// Loader enumerates and decodes training recordings for a vocabulary
type Loader struct {
	pattern string
	logger  logging.Logger
}

// NewLoader creates a loader. pattern may contain {word}, replaced by each
// vocabulary label, and is matched inside the label's own directory.
func NewLoader(pattern string) *Loader {
	if pattern == "" {
		pattern = DefaultPattern
	}
	return &Loader{
		pattern: pattern,
		logger: logging.WithFields(logging.Fields{
			"component": "training_loader",
		}),
	}
}

// Files lists the training files for word under dir in lexical order
func (l *Loader) Files(dir, word string) ([]string, error) {
	glob := filepath.Join(dir, word, strings.ReplaceAll(l.pattern, "{word}", word))
	files, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("invalid training file pattern %q: %w", glob, err)
	}
	sort.Strings(files)
	return files, nil
}

// LoadTrainingSet decodes every training file for every word.
// Words without files map to an empty slice.
func (l *Loader) LoadTrainingSet(dir string, words []string) (map[string][]audio.Signal, error) {
	set := make(map[string][]audio.Signal, len(words))

	for _, word := range words {
		files, err := l.Files(dir, word)
		if err != nil {
			return nil, err
		}

		examples := make([]audio.Signal, 0, len(files))
		for _, path := range files {
			sig, err := LoadFile(path)
			if err != nil {
				return nil, err
			}
			examples = append(examples, sig)
		}
		set[word] = examples

		l.logger.Debug("Loaded training examples", logging.Fields{
			"word":  word,
			"files": len(files),
		})
		if len(files) == 0 {
			l.logger.Warn("No training files found", logging.Fields{
				"word": word,
				"dir":  filepath.Join(dir, word),
			})
		}
	}

	return set, nil
}
