package formants

import (
	"fmt"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/mjibson/go-dsp/window"

	"github.com/RyanBlaney/word-recognizer/pkg/audio"
)

// Extraction stages reported by ExtractionError
const (
	StageInput = "input"
	StageLPC   = "lpc"
	StageRoots = "roots"
)

// ExtractionError reports a numeric failure while estimating formants
type ExtractionError struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *ExtractionError) Error() string {
	msg := "formant extraction failed at " + e.Stage + ": " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Config holds the linear prediction parameters
type Config struct {
	MaxFormants    int     `mapstructure:"max_formants" json:"max_formants" yaml:"max_formants"`
	PreEmphasis    float64 `mapstructure:"pre_emphasis" json:"pre_emphasis" yaml:"pre_emphasis"`
	LPCOrderBase   int     `mapstructure:"lpc_order_base" json:"lpc_order_base" yaml:"lpc_order_base"`
	LPCOrderPerKHz int     `mapstructure:"lpc_order_per_khz" json:"lpc_order_per_khz" yaml:"lpc_order_per_khz"`
}

// DefaultConfig returns the default formant analysis settings
func DefaultConfig() Config {
	return Config{
		MaxFormants:    5,
		PreEmphasis:    0.63,
		LPCOrderBase:   2,
		LPCOrderPerKHz: 1,
	}
}

// LPCOrder returns the prediction order used at sampleRate
func (c Config) LPCOrder(sampleRate int) int {
	return c.LPCOrderBase + c.LPCOrderPerKHz*sampleRate/1000
}

// Extractor estimates formant frequencies from the roots of an LPC polynomial
type Extractor struct {
	config Config
	logger logging.Logger
}

// NewExtractor creates a formant extractor
func NewExtractor(config Config) *Extractor {
	return &Extractor{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "formant_extractor",
		}),
	}
}

// Config returns the extractor configuration
func (e *Extractor) Config() Config {
	return e.config
}

// Extract returns up to the configured maximum number of formants
func (e *Extractor) Extract(signal audio.Signal) ([]float64, error) {
	return e.ExtractFormants(signal, e.config.MaxFormants)
}

// ExtractFormants windows and pre-emphasizes the whole segment, fits an LPC
// model and returns at most maxFormants root frequencies in ascending order.
// Fewer values are returned when the segment is too short for the model order.
func (e *Extractor) ExtractFormants(signal audio.Signal, maxFormants int) ([]float64, error) {
	if signal.SampleRate <= 0 {
		return nil, &ExtractionError{Stage: StageInput, Message: fmt.Sprintf("invalid sample rate %d", signal.SampleRate)}
	}
	if signal.Len() == 0 {
		return nil, &ExtractionError{Stage: StageInput, Message: "empty signal"}
	}

	logger := e.logger.WithFields(logging.Fields{
		"function":    "ExtractFormants",
		"samples":     signal.Len(),
		"sample_rate": signal.SampleRate,
	})

	x := signal.Float64()
	window.Apply(x, window.Hamming)
	x = e.preEmphasize(x)

	order := e.config.LPCOrder(signal.SampleRate)
	if order > len(x)-1 {
		logger.Debug("Segment shorter than LPC order, reducing order", logging.Fields{
			"requested_order": order,
			"order":           len(x) - 1,
		})
		order = len(x) - 1
	}

	r := autocorrelation(x, order)
	coeffs, err := levinson(r, order)
	if err != nil {
		return nil, err
	}

	roots, err := polyRoots(coeffs)
	if err != nil {
		return nil, err
	}

	freqs := rootFrequencies(roots, signal.SampleRate)
	if maxFormants >= 0 && len(freqs) > maxFormants {
		freqs = freqs[:maxFormants]
	}

	if len(freqs) < maxFormants {
		logger.Warn("Fewer formants than requested", logging.Fields{
			"requested": maxFormants,
			"found":     len(freqs),
		})
	}

	return freqs, nil
}

// preEmphasize applies y[n] = x[n] - k*y[n-1]
func (e *Extractor) preEmphasize(x []float64) []float64 {
	y := make([]float64, len(x))
	prev := 0.0
	for i, v := range x {
		prev = v - e.config.PreEmphasis*prev
		y[i] = prev
	}
	return y
}
