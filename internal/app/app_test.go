package app

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"io"
	"path/filepath"
	"testing"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/word-recognizer/configs"
	"github.com/RyanBlaney/word-recognizer/pkg/recognition"
)

const testSampleRate = 16000

// writeUtterance writes a two-tone burst padded with silence as a 16-bit wav
func writeUtterance(t *testing.T, path string, f1, f2, seconds float64, seed int64) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	rng := rand.New(rand.NewSource(seed))
	pad := testSampleRate / 10
	n := int(seconds * testSampleRate)

	data := make([]int, pad+n+pad)
	for i := range data {
		v := 50 * rng.NormFloat64()
		if i >= pad && i < pad+n {
			ts := float64(i-pad) / testSampleRate
			v += 9000*math.Sin(2*math.Pi*f1*ts) + 4000*math.Sin(2*math.Pi*f2*ts) + 300*rng.NormFloat64()
		}
		data[i] = int(math.Round(v))
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, testSampleRate, 16, 1, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: testSampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
}

// configureViper points the global configuration at a synthetic training set
func configureViper(t *testing.T) (trainingDir, modelFile string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := t.TempDir()
	trainingDir = filepath.Join(root, "training")
	modelFile = filepath.Join(root, "models", "vocabulary.yaml")

	for seed := int64(0); seed < 2; seed++ {
		writeUtterance(t, filepath.Join(trainingDir, "low", fmt.Sprintf("low%d.wav", seed+1)), 400, 900, 0.25, seed)
		writeUtterance(t, filepath.Join(trainingDir, "high", fmt.Sprintf("high%d.wav", seed+1)), 2500, 4000, 0.5, 10+seed)
	}

	configs.SetDefaults(viper.GetViper())
	viper.Set("audio.sample_rate", testSampleRate)
	viper.Set("vocabulary.words", []string{"low", "high"})
	viper.Set("vocabulary.training_dir", trainingDir)
	viper.Set("vocabulary.model_file", modelFile)
	viper.Set("training.max_concurrency", 2)

	return trainingDir, modelFile
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestTrainRecognizeEvaluate(t *testing.T) {
	_, modelFile := configureViper(t)
	out := t.TempDir()
	ctx := context.Background()

	trainer, err := NewRecognizerApp(&Context{
		OutputFile:   filepath.Join(out, "train.json"),
		OutputFormat: "json",
		Quiet:        true,
	})
	require.NoError(t, err)
	require.NoError(t, trainer.Train(ctx))

	vocab, file, err := recognition.LoadVocabulary(modelFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"low", "high"}, vocab.Words())
	assert.Equal(t, testSampleRate, file.SampleRate)
	assert.Contains(t, readOutput(t, filepath.Join(out, "train.json")), "High")

	unseen := filepath.Join(out, "unseen.wav")
	writeUtterance(t, unseen, 2500, 4000, 0.5, 99)

	recognizer, err := NewRecognizerApp(&Context{
		OutputFile:   filepath.Join(out, "recognize.json"),
		OutputFormat: "json",
		Verbose:      true,
	})
	require.NoError(t, err)
	require.NoError(t, recognizer.Recognize(ctx, []string{unseen, filepath.Join(out, "missing.wav")}))

	recognized := readOutput(t, filepath.Join(out, "recognize.json"))
	assert.Contains(t, recognized, "High")
	assert.Contains(t, recognized, "similarities")
	assert.Contains(t, recognized, "missing.wav")

	evaluator, err := NewRecognizerApp(&Context{
		OutputFile:   filepath.Join(out, "evaluate.yaml"),
		OutputFormat: "yaml",
	})
	require.NoError(t, err)
	require.NoError(t, evaluator.Evaluate(ctx))
	assert.Contains(t, readOutput(t, filepath.Join(out, "evaluate.yaml")), "accuracy")
}

func TestRecognizeAllInputsFail(t *testing.T) {
	configureViper(t)
	out := t.TempDir()

	app, err := NewRecognizerApp(&Context{
		OutputFile:   filepath.Join(out, "recognize.json"),
		OutputFormat: "json",
		NoSave:       true,
	})
	require.NoError(t, err)

	assert.Error(t, app.Recognize(context.Background(), []string{filepath.Join(out, "nope.wav")}))
	assert.Error(t, app.Recognize(context.Background(), nil))
}

func TestTrainWithoutSave(t *testing.T) {
	_, modelFile := configureViper(t)

	app, err := NewRecognizerApp(&Context{
		OutputFile:   filepath.Join(t.TempDir(), "train.json"),
		OutputFormat: "json",
		NoSave:       true,
	})
	require.NoError(t, err)
	require.NoError(t, app.Train(context.Background()))

	_, err = os.Stat(modelFile)
	assert.True(t, os.IsNotExist(err))
}

func TestNewRecognizerAppRejectsInvalidConfig(t *testing.T) {
	configureViper(t)
	viper.Set("conditioning.high_cutoff", 9000)

	_, err := NewRecognizerApp(&Context{})
	assert.Error(t, err)
}

// captureStdout returns what fn writes to stdout
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	require.NoError(t, w.Close())

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestLogLevelApplied(t *testing.T) {
	t.Cleanup(func() { logging.SetLevel(logging.InfoLevel) })

	tests := []struct {
		name      string
		level     string
		verbose   bool
		wantDebug bool
	}{
		{"debug level", "debug", false, true},
		{"info level", "info", false, false},
		{"verbose lowers info", "info", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configureViper(t)
			viper.Set("log_level", tt.level)

			out := captureStdout(t, func() {
				app, err := NewRecognizerApp(&Context{Verbose: tt.verbose})
				require.NoError(t, err)
				app.logger.Debug("debug line from test")
			})

			if tt.wantDebug {
				assert.Contains(t, out, "debug line from test")
			} else {
				assert.NotContains(t, out, "debug line from test")
			}
		})
	}
}

func TestNewRecognizerAppRejectsUnknownLogLevel(t *testing.T) {
	configureViper(t)
	viper.Set("log_level", "chatty")

	_, err := NewRecognizerApp(&Context{})
	assert.Error(t, err)
}

func TestMergeContext(t *testing.T) {
	cfg := configs.GetDefaultConfig()
	mergeContext(cfg, &Context{
		OutputFormat:  "csv",
		ModelFile:     "/tmp/m.json",
		TrainingDir:   "/data",
		Words:         []string{"yes", "no"},
		MaxConcurrent: 7,
		Verbose:       true,
	})

	assert.Equal(t, "csv", cfg.OutputFormat)
	assert.Equal(t, "/tmp/m.json", cfg.Vocabulary.ModelFile)
	assert.Equal(t, "/data", cfg.Vocabulary.TrainingDir)
	assert.Equal(t, []string{"yes", "no"}, cfg.Vocabulary.Words)
	assert.Equal(t, 7, cfg.Training.MaxConcurrency)
	assert.True(t, cfg.Verbose)

	untouched := configs.GetDefaultConfig()
	mergeContext(untouched, &Context{})
	assert.Equal(t, configs.GetDefaultConfig(), untouched)
}

func TestGenerateAndValidateExampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "word-recognizer.yaml")
	require.NoError(t, GenerateExampleConfig(path))
	assert.NoError(t, ValidateConfig(path))

	cfg, err := loadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, configs.DefaultVocabulary, cfg.Vocabulary.Words)

	assert.Error(t, ValidateConfig(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestEvaluationReport(t *testing.T) {
	e := newEvaluation([]string{"yes", "no"})
	e.record("yes", "yes")
	e.record("yes", "no")
	e.record("no", "no")
	e.recordFailure("no")

	report := e.report()
	assert.Equal(t, 4, report["examples"])
	assert.Equal(t, 2, report["correct"])
	assert.InDelta(t, 0.5, report["accuracy"], 1e-12)

	words := report["words"].([]map[string]any)
	require.Len(t, words, 2)
	assert.Equal(t, "Yes", words[0]["display"])
	assert.Equal(t, []map[string]any{{"predicted": "no", "count": 1}}, words[0]["confused_with"])
	assert.Equal(t, 1, words[1]["failed"])
	assert.NotContains(t, words[1], "confused_with")
}

func TestSanitizeForJSON(t *testing.T) {
	data := map[string]any{
		"score":  math.Inf(1),
		"values": []float64{1, math.NaN()},
		"nested": []map[string]any{{"d": math.Inf(-1)}},
		"label":  "yes",
		"diffs":  map[string]float64{"formants": math.NaN()},
	}

	clean := sanitizeForJSON(data).(map[string]any)
	assert.Equal(t, 0.0, clean["score"])
	assert.Equal(t, []float64{1, 0}, clean["values"])
	assert.Equal(t, []any{map[string]any{"d": 0.0}}, clean["nested"])
	assert.Equal(t, "yes", clean["label"])
	assert.Equal(t, map[string]float64{"formants": 0}, clean["diffs"])
}

func TestSameFeatureSettings(t *testing.T) {
	a := recognition.DefaultConfig()
	b := recognition.DefaultConfig()
	b.Weights.Formants = 3
	b.MaxConcurrency = 1
	assert.True(t, sameFeatureSettings(a, b))

	b.Conditioning.SilenceThreshold = 10
	assert.False(t, sameFeatureSettings(a, b))
}

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "Backup", displayLabel("backup"))
	assert.Equal(t, "", displayLabel(""))
}
