package app

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/latency-benchmark-common/output"
)

// newFormatter returns the formatter for the configured output format
func newFormatter(format string) output.Formatter {
	switch format {
	case "json":
		return &output.JSONFormatter{}
	case "yaml":
		return &output.YAMLFormatter{}
	case "csv":
		return &output.CSVFormatter{}
	case "table":
		return &output.TableFormatter{}
	default:
		return &output.JSONFormatter{}
	}
}

// outputResults formats data and writes it to the output file or stdout
func (app *RecognizerApp) outputResults(data map[string]any) error {
	formatter := newFormatter(app.config.OutputFormat)

	formattedData, err := formatter.Format(data, true)
	if err != nil {
		// Degenerate distances can leave NaN or Inf behind
		if strings.Contains(err.Error(), "unsupported value") {
			formattedData, err = formatter.Format(sanitizeForJSON(data), true)
		}
		if err != nil {
			return fmt.Errorf("failed to format output data: %w", err)
		}
	}

	if app.ctx.OutputFile != "" {
		return app.writeToFile(formattedData)
	}

	_, err = os.Stdout.Write(formattedData)
	return err
}

// writeToFile writes data to the specified output file
func (app *RecognizerApp) writeToFile(data []byte) error {
	dir := filepath.Dir(app.ctx.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(app.ctx.OutputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	app.logger.Debug("Results written to file", logging.Fields{
		"output_file": app.ctx.OutputFile,
		"size_bytes":  len(data),
	})

	return nil
}

// sanitizeForJSON replaces infinite and NaN values in report data with zero
func sanitizeForJSON(data any) any {
	switch v := data.(type) {
	case float64:
		return finite(v)
	case []float64:
		out := make([]float64, len(v))
		for i, f := range v {
			out[i] = finite(f)
		}
		return out
	case map[string]float64:
		out := make(map[string]float64, len(v))
		for k, f := range v {
			out[k] = finite(f)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = sanitizeForJSON(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = sanitizeForJSON(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = sanitizeForJSON(val)
		}
		return out
	default:
		return data
	}
}

func finite(f float64) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}
