package conditioning

import (
	"fmt"
	"sync"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/word-recognizer/pkg/audio"
	"github.com/RyanBlaney/word-recognizer/pkg/audio/filters"
)

// nyquistMargin is the fraction of nyquist a clamped high cutoff is placed at
const nyquistMargin = 0.9

// Config holds band-pass and silence trimming parameters
type Config struct {
	LowCutoff        float64 `mapstructure:"low_cutoff" json:"low_cutoff" yaml:"low_cutoff"`
	HighCutoff       float64 `mapstructure:"high_cutoff" json:"high_cutoff" yaml:"high_cutoff"`
	FilterOrder      int     `mapstructure:"filter_order" json:"filter_order" yaml:"filter_order"`
	SilenceThreshold int     `mapstructure:"silence_threshold" json:"silence_threshold" yaml:"silence_threshold"`
}

// DefaultConfig returns the speech band defaults
func DefaultConfig() Config {
	return Config{
		LowCutoff:        200,
		HighCutoff:       6500,
		FilterOrder:      5,
		SilenceThreshold: 2000,
	}
}

// Conditioner band-pass filters a raw capture and trims leading and trailing silence
type Conditioner struct {
	config Config
	logger logging.Logger

	mu      sync.Mutex
	filters map[int]*filters.BandPass
}

// NewConditioner creates a conditioner. Filters are designed lazily per sample rate.
func NewConditioner(config Config) *Conditioner {
	return &Conditioner{
		config:  config,
		filters: make(map[int]*filters.BandPass),
		logger: logging.WithFields(logging.Fields{
			"component": "signal_conditioner",
		}),
	}
}

// Config returns the conditioner's configuration
func (c *Conditioner) Config() Config {
	return c.config
}

// bandPass returns the cached filter for a sample rate
func (c *Conditioner) bandPass(sampleRate int) (*filters.BandPass, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.filters[sampleRate]; ok {
		return f, nil
	}

	high := c.config.HighCutoff
	if nyquist := float64(sampleRate) / 2; sampleRate > 0 && high >= nyquist {
		high = nyquistMargin * nyquist
		c.logger.Warn("High cutoff at or above nyquist, clamping for this sample rate", logging.Fields{
			"sample_rate":    sampleRate,
			"high_cutoff":    c.config.HighCutoff,
			"clamped_cutoff": high,
		})
	}

	f, err := filters.NewButterworthBandPass(c.config.FilterOrder, c.config.LowCutoff, high, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to design band-pass filter: %w", err)
	}
	c.filters[sampleRate] = f

	return f, nil
}

// Condition filters the signal and trims it to the span between the first and
// last samples louder than the silence threshold. A signal with no sample over
// the threshold is returned unchanged, unfiltered, so downstream features such
// as zero crossings see the raw capture in that case. A high cutoff at or above
// the signal's nyquist is clamped below it. The only error is a band that
// cannot be designed at all, such as a non-positive sample rate or a low
// cutoff above the clamped high cutoff.
func (c *Conditioner) Condition(raw audio.Signal) (audio.Signal, error) {
	f, err := c.bandPass(raw.SampleRate)
	if err != nil {
		return audio.Signal{}, err
	}

	if raw.Len() == 0 {
		c.logger.Warn("Empty signal, nothing to condition")
		return raw, nil
	}

	filtered := audio.Quantize(f.FiltFilt(raw.Float64()))

	start, end, ok := speechBounds(filtered, c.config.SilenceThreshold)
	if !ok {
		c.logger.Warn("No sample above silence threshold, treating whole buffer as speech", logging.Fields{
			"samples":   raw.Len(),
			"threshold": c.config.SilenceThreshold,
		})
		return raw, nil
	}

	c.logger.Debug("Signal conditioned", logging.Fields{
		"input_samples":  raw.Len(),
		"output_samples": end - start + 1,
		"start":          start,
		"end":            end,
	})

	return audio.Signal{
		Samples:    filtered[start : end+1],
		SampleRate: raw.SampleRate,
	}, nil
}

// speechBounds finds the first and last sample whose magnitude exceeds threshold
func speechBounds(samples []int16, threshold int) (int, int, bool) {
	start := -1
	for i, v := range samples {
		if abs(int(v)) > threshold {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, 0, false
	}

	end := start
	for i := len(samples) - 1; i > start; i-- {
		if abs(int(samples[i])) > threshold {
			end = i
			break
		}
	}

	return start, end, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
