// File: internal/reporting/reporter.go
package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/vexred/aegis-cli/api/schemas"
	"github.com/vexred/aegis-cli/internal/monitor"
	"github.com/vexred/aegis-cli/internal/results"
)

// AssessmentReport is the complete user-facing output of one run: the
// prioritized findings, the per-framework compliance view, the resource
// session, and any notices about degraded coverage.
type AssessmentReport struct {
	AssessmentID string                                                `json:"assessment_id"`
	Project      string                                                `json:"project"`
	Target       string                                                `json:"target"`
	GeneratedAt  string                                                `json:"generated_at"`
	ToolVersion  string                                                `json:"tool_version"`
	Summary      results.Summary                                       `json:"summary"`
	Findings     []schemas.Finding                                     `json:"findings"`
	Compliance   map[schemas.Framework][]schemas.ComplianceMapping     `json:"compliance"`
	Counters     schemas.Counters                                      `json:"counters"`
	Errors       []schemas.ScanError                                   `json:"scanner_errors,omitempty"`
	Resources    *monitor.Report                                       `json:"resources,omitempty"`
	Notices      []string                                              `json:"notices,omitempty"`
}

// Notice strings attach caveats to an otherwise best-effort report.
func (r *AssessmentReport) AddErrorNotice() {
	if n := len(r.Errors); n > 0 {
		r.Notices = append(r.Notices, fmt.Sprintf("%d scanner errors encountered; results may be incomplete", n))
	}
}

// Reporter writes a finished assessment report to an output.
type Reporter interface {
	// Write emits the report.
	Write(report *AssessmentReport) error
	// Close finalizes the report and releases any underlying resources.
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error { return nil }

// New creates a reporter for the given format, writing to outputPath or to
// stdout when the path is empty.
func New(format, outputPath string) (Reporter, error) {
	var writer io.WriteCloser
	isStdOut := outputPath == "" || outputPath == "stdout"

	if isStdOut {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	switch format {
	case "json", "":
		// The JSON reporter takes ownership of the writer.
		return NewJSONReporter(writer), nil
	default:
		if !isStdOut {
			writer.Close()
		}
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
