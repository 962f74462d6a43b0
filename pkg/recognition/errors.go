package recognition

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyVocabulary is returned when matching against a vocabulary with no words
	ErrEmptyVocabulary = errors.New("vocabulary has no words")

	// ErrDuplicateWord is returned when a vocabulary lists the same label twice
	ErrDuplicateWord = errors.New("duplicate vocabulary word")

	// ErrUnknownWord is returned when training data names a word outside the vocabulary
	ErrUnknownWord = errors.New("word is not in the vocabulary")
)

// BuildError reports the vocabulary word whose model could not be built
type BuildError struct {
	Word string `json:"word"`
	Err  error  `json:"-"`
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("failed to build model for %q: %v", e.Word, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// ClassifyError reports why an input could not be classified
type ClassifyError struct {
	Stage string `json:"stage"`
	Err   error  `json:"-"`
}

func (e *ClassifyError) Error() string {
	return fmt.Sprintf("classification failed during %s: %v", e.Stage, e.Err)
}

func (e *ClassifyError) Unwrap() error {
	return e.Err
}
