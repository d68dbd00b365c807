// File: internal/results/enrich.go
package results

import (
	"go.uber.org/zap"

	"github.com/vexred/aegis-cli/api/schemas"
	"github.com/vexred/aegis-cli/internal/results/providers"
)

// Enricher fills in reference context a scanner left out.
type Enricher struct {
	catalog providers.WeaknessProvider
	logger  *zap.Logger
}

// NewEnricher creates an Enricher. A nil provider disables enrichment.
func NewEnricher(catalog providers.WeaknessProvider, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		catalog: catalog,
		logger:  logger.Named("enricher"),
	}
}

// EnrichFinding enhances a single finding in place.
func (e *Enricher) EnrichFinding(finding *schemas.Finding) {
	if finding.ReferenceID == "" || e.catalog == nil {
		return
	}

	entry, err := e.catalog.GetWeakness(finding.ReferenceID)
	if err != nil {
		e.logger.Debug("Could not retrieve weakness details",
			zap.String("reference_id", finding.ReferenceID), zap.Error(err))
		return
	}

	// A scanner-specific title wins over the generic class name; only fill
	// in what is missing or clearly placeholder.
	if finding.Title == "" && entry.Name != "" {
		finding.Title = entry.Name
	}
	if len(finding.Description) < 20 && entry.Description != "" {
		finding.Description = entry.Description
	}
}
