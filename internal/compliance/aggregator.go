// File: internal/compliance/aggregator.go
package compliance

import (
	"go.uber.org/zap"

	"github.com/vexred/aegis-cli/api/schemas"
	"github.com/vexred/aegis-cli/internal/compliance/frameworks"
)

// Aggregator fans the collected findings through every framework mapper and
// groups the resulting mappings by framework for the report.
type Aggregator struct {
	mappers []schemas.FrameworkMapper
	logger  *zap.Logger
}

// NewAggregator builds an aggregator over the given mappers.
func NewAggregator(mappers []schemas.FrameworkMapper, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		mappers: mappers,
		logger:  logger.Named("aggregator"),
	}
}

// NewDefaultAggregator constructs mappers for all six supported frameworks.
// Construction fails only on a broken static table, which is a build defect
// rather than a runtime condition.
func NewDefaultAggregator(logger *zap.Logger) (*Aggregator, error) {
	defs := frameworks.All()
	mappers := make([]schemas.FrameworkMapper, 0, len(defs))
	for _, def := range defs {
		m, err := NewMapper(def, logger)
		if err != nil {
			return nil, err
		}
		mappers = append(mappers, m)
	}
	return NewAggregator(mappers, logger), nil
}

// Aggregate classifies all findings against every framework. Aggregation is
// order-independent: mappers merge by control identity, so the result does
// not depend on finding arrival order.
func (a *Aggregator) Aggregate(findings []schemas.Finding) map[schemas.Framework][]schemas.ComplianceMapping {
	out := make(map[schemas.Framework][]schemas.ComplianceMapping, len(a.mappers))
	for _, mapper := range a.mappers {
		mappings := mapper.Aggregate(findings)
		out[mapper.Framework()] = mappings
		a.logger.Debug("Framework aggregation complete",
			zap.String("framework", string(mapper.Framework())),
			zap.Int("controls_mapped", len(mappings)),
		)
	}
	return out
}
