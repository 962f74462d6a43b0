package recognition

import (
	"fmt"
	"slices"

	"github.com/RyanBlaney/word-recognizer/pkg/audio/features"
)

// Vocabulary maps word labels to their models. It is immutable after
// construction and safe for concurrent readers.
type Vocabulary struct {
	words  []string
	models map[string]features.WordModel
}

// NewVocabulary creates a vocabulary from models. Iteration order follows the
// order of models.
func NewVocabulary(models ...features.WordModel) (*Vocabulary, error) {
	v := &Vocabulary{
		words:  make([]string, 0, len(models)),
		models: make(map[string]features.WordModel, len(models)),
	}

	for _, m := range models {
		if _, exists := v.models[m.Label]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateWord, m.Label)
		}
		m.Formants = slices.Clone(m.Formants)
		v.words = append(v.words, m.Label)
		v.models[m.Label] = m
	}

	return v, nil
}

// Len returns the number of words
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.words)
}

// Words returns the labels in iteration order
func (v *Vocabulary) Words() []string {
	if v == nil {
		return nil
	}
	return slices.Clone(v.words)
}

// Model returns a copy of the word's model
func (v *Vocabulary) Model(word string) (features.WordModel, bool) {
	if v == nil {
		return features.WordModel{}, false
	}
	m, ok := v.models[word]
	if !ok {
		return features.WordModel{}, false
	}
	m.Formants = m.FormantsCopy()
	return m, true
}

// Models returns copies of every model in iteration order
func (v *Vocabulary) Models() []features.WordModel {
	if v == nil {
		return nil
	}
	out := make([]features.WordModel, 0, len(v.words))
	for _, w := range v.words {
		m, _ := v.Model(w)
		out = append(out, m)
	}
	return out
}

// each visits every model in iteration order without copying
func (v *Vocabulary) each(fn func(i int, m features.WordModel)) {
	for i, w := range v.words {
		fn(i, v.models[w])
	}
}
