package recognition

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/word-recognizer/pkg/audio/features"
)

// vocabularyFileVersion is bumped whenever the saved layout changes
const vocabularyFileVersion = 1

// VocabularyFile is the on-disk form of a trained vocabulary
type VocabularyFile struct {
	Version    int                  `json:"version" yaml:"version"`
	CreatedAt  time.Time            `json:"created_at" yaml:"created_at"`
	SampleRate int                  `json:"sample_rate" yaml:"sample_rate"`
	Config     Config               `json:"config" yaml:"config"`
	Models     []features.WordModel `json:"models" yaml:"models"`
}

// SaveVocabulary writes the vocabulary to path as YAML or JSON depending on
// the file extension
func SaveVocabulary(path string, vocab *Vocabulary, sampleRate int, config Config) error {
	file := VocabularyFile{
		Version:    vocabularyFileVersion,
		CreatedAt:  time.Now().UTC(),
		SampleRate: sampleRate,
		Config:     config,
		Models:     vocab.Models(),
	}

	var data []byte
	var err error
	switch filepath.Ext(path) {
	case ".json":
		data, err = json.MarshalIndent(file, "", "  ")
	default:
		data, err = yaml.Marshal(file)
	}
	if err != nil {
		return fmt.Errorf("failed to encode vocabulary: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create vocabulary directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write vocabulary file: %w", err)
	}

	return nil
}

// LoadVocabulary reads a vocabulary saved by SaveVocabulary
func LoadVocabulary(path string) (*Vocabulary, *VocabularyFile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("vocabulary file does not exist: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var file VocabularyFile
	switch filepath.Ext(path) {
	case ".json":
		err = json.Unmarshal(data, &file)
	default:
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse vocabulary file: %w", err)
	}

	if file.Version != vocabularyFileVersion {
		return nil, nil, fmt.Errorf("unsupported vocabulary file version %d", file.Version)
	}

	vocab, err := NewVocabulary(file.Models...)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid vocabulary file: %w", err)
	}

	return vocab, &file, nil
}
