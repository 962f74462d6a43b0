package app

import (
	"syscall"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/tunein/go-logging/v7/pkg/logger"
	"github.com/tunein/go-logging/v7/pkg/logger/logtypes"
	"github.com/tunein/go-logging/v7/pkg/rootcollector"
	"github.com/tunein/go-logging/v7/pkg/rootlogger"

	"github.com/RyanBlaney/word-recognizer/configs"
	"github.com/RyanBlaney/word-recognizer/pkg/recognition"
)

// metricsSink forwards run metrics to rootcollector when enabled
type metricsSink struct {
	enabled bool
}

func newMetricsSink(config configs.MetricsConfig) *metricsSink {
	if !config.Enabled {
		return &metricsSink{}
	}

	err := rootlogger.Configure(logger.LogOptions{
		Out:          config.LogFile,
		ReopenSignal: syscall.SIGHUP,
		Level:        logtypes.InfoLevel,
	})
	if err != nil {
		logging.Error(err, "Failed configuring log writer")
	}

	return &metricsSink{enabled: true}
}

func (m *metricsSink) metric(name string, value int64, tags []string) {
	if m == nil || !m.enabled {
		return
	}
	rootcollector.Metric(name, value, tags)
}

func (m *metricsSink) trainingCompleted(vocab *recognition.Vocabulary, elapsed time.Duration) {
	m.metric("word_recognizer.training.duration.milliseconds", elapsed.Milliseconds(), nil)
	for _, model := range vocab.Models() {
		m.metric("word_recognizer.training.examples", int64(model.Examples), []string{"word:" + model.Label})
	}
}

func (m *metricsSink) recognitionCompleted(label string, elapsed time.Duration) {
	tags := []string{"word:" + label, "status:ok"}
	m.metric("word_recognizer.recognition.duration.milliseconds", elapsed.Milliseconds(), tags)
}

func (m *metricsSink) recognitionFailed(elapsed time.Duration) {
	m.metric("word_recognizer.recognition.duration.milliseconds", elapsed.Milliseconds(), []string{"status:error"})
}

func (m *metricsSink) evaluationCompleted(e *evaluation) {
	for _, w := range e.words {
		// Percent, rootcollector only takes integers
		pct := int64(accuracy(e.correct[w], e.examples[w]) * 100)
		m.metric("word_recognizer.evaluation.accuracy.percent", pct, []string{"word:" + w})
	}
	examples, correct := e.totals()
	m.metric("word_recognizer.evaluation.accuracy.percent", int64(accuracy(correct, examples)*100), []string{"word:all"})
}
