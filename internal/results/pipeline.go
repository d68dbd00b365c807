// File: internal/results/pipeline.go
package results

import (
	"sort"

	"go.uber.org/zap"

	"github.com/vexred/aegis-cli/api/schemas"
	"github.com/vexred/aegis-cli/internal/results/providers"
)

// Summary holds per-dimension finding counts for the final report.
type Summary struct {
	Total      int                              `json:"total"`
	BySeverity map[schemas.Severity]int         `json:"by_severity"`
	ByCategory map[schemas.WeaknessCategory]int `json:"by_category"`
	ByScanner  map[string]int                   `json:"by_scanner"`
}

// Pipeline turns the scheduler's raw merged findings into report-ready form:
// enriched, prioritized worst-first, and summarized.
type Pipeline struct {
	enricher *Enricher
	logger   *zap.Logger
}

// NewPipeline creates a results pipeline backed by the built-in weakness
// catalog.
func NewPipeline(logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		enricher: NewEnricher(providers.NewBuiltinCatalog(), logger),
		logger:   logger.Named("results_pipeline"),
	}
}

// Process enriches and prioritizes the findings in place and returns the
// summary. Prioritization is stable: worst severity first, ties broken by
// title so output is deterministic.
func (p *Pipeline) Process(findings []schemas.Finding) Summary {
	p.logger.Info("Processing findings", zap.Int("count", len(findings)))

	for i := range findings {
		p.enricher.EnrichFinding(&findings[i])
	}

	Prioritize(findings)
	return Summarize(findings)
}

// Prioritize sorts findings worst severity first.
func Prioritize(findings []schemas.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity != findings[j].Severity {
			return findings[i].Severity.WorseThan(findings[j].Severity)
		}
		return findings[i].Title < findings[j].Title
	})
}

// Summarize counts findings per severity, category and scanner.
func Summarize(findings []schemas.Finding) Summary {
	s := Summary{
		Total:      len(findings),
		BySeverity: make(map[schemas.Severity]int),
		ByCategory: make(map[schemas.WeaknessCategory]int),
		ByScanner:  make(map[string]int),
	}
	for _, f := range findings {
		s.BySeverity[f.Severity]++
		s.ByCategory[f.Category]++
		s.ByScanner[f.Scanner]++
	}
	return s
}
