// File: internal/reporting/json_reporter.go
package reporting

import (
	"errors"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONReporter writes the assessment report as a single indented JSON
// document.
type JSONReporter struct {
	writer  io.WriteCloser
	written bool
}

// NewJSONReporter creates a JSONReporter that takes ownership of the writer.
func NewJSONReporter(w io.WriteCloser) *JSONReporter {
	return &JSONReporter{writer: w}
}

// Write encodes the report. A reporter writes exactly one document.
func (r *JSONReporter) Write(report *AssessmentReport) error {
	if report == nil {
		return errors.New("report cannot be nil")
	}
	if r.written {
		return errors.New("report already written")
	}

	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	r.written = true
	return nil
}

// Close releases the underlying writer.
func (r *JSONReporter) Close() error {
	return r.writer.Close()
}
