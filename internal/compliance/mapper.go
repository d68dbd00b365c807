// File: internal/compliance/mapper.go
// Package compliance implements the classification engine: one shared
// algorithm, parameterized by the static per-framework tables in the
// frameworks subpackage, turns findings into per-control verdicts and
// aggregated mappings.
package compliance

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/vexred/aegis-cli/api/schemas"
	"github.com/vexred/aegis-cli/internal/compliance/frameworks"
)

// GapPredicate decides whether a control requirement is unmet by the system
// given one finding. The default is a recall-oriented keyword heuristic, not
// exact satisfiability; callers may swap in a stricter predicate.
type GapPredicate func(requirement string, finding schemas.Finding) bool

// Mapper is the stateless classifier for one framework. All six frameworks
// share this implementation; only the injected definition differs, so the
// catalogs determine which controls are examined, never the compliance
// threshold.
type Mapper struct {
	def    frameworks.Definition
	byID   map[string]schemas.ComplianceControl
	gap    GapPredicate
	logger *zap.Logger
}

var _ schemas.FrameworkMapper = (*Mapper)(nil)

// Option configures a Mapper.
type Option func(*Mapper)

// WithGapPredicate replaces the default keyword-containment gap heuristic.
func WithGapPredicate(p GapPredicate) Option {
	return func(m *Mapper) {
		m.gap = p
	}
}

// NewMapper builds a mapper from a framework definition. It checks the
// definition for referential integrity: every control id referenced by the
// category or reference tables must exist in the catalog.
func NewMapper(def frameworks.Definition, logger *zap.Logger, opts ...Option) (*Mapper, error) {
	byID := make(map[string]schemas.ComplianceControl, len(def.Controls))
	for _, c := range def.Controls {
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("framework %s: duplicate control id %q", def.Framework, c.ID)
		}
		byID[c.ID] = c
	}

	for category, ids := range def.CategoryControls {
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				return nil, fmt.Errorf("framework %s: category %q references unknown control %q", def.Framework, category, id)
			}
		}
	}
	for ref, id := range def.ReferenceControls {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("framework %s: reference %q resolves to unknown control %q", def.Framework, ref, id)
		}
	}

	m := &Mapper{
		def:    def,
		byID:   byID,
		gap:    DefaultGapPredicate,
		logger: logger.Named("mapper").With(zap.String("framework", string(def.Framework))),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Framework returns the framework this mapper classifies against.
func (m *Mapper) Framework() schemas.Framework {
	return m.def.Framework
}

// Map classifies one finding into a verdict per mapped control. A category
// with no registered controls yields an empty slice; that is a valid "zero
// mappings" outcome, not an error.
func (m *Mapper) Map(finding schemas.Finding) []schemas.ComplianceVerdict {
	ids := m.controlsFor(finding)
	if len(ids) == 0 {
		m.logger.Debug("Finding maps to no controls",
			zap.String("finding_id", finding.ID),
			zap.String("category", string(finding.Category)),
		)
		return nil
	}

	status := statusForSeverity(finding.Severity)
	verdicts := make([]schemas.ComplianceVerdict, 0, len(ids))
	for _, id := range ids {
		control := m.byID[id]
		verdicts = append(verdicts, schemas.ComplianceVerdict{
			FindingID:       finding.ID,
			ControlID:       id,
			Status:          status,
			Gaps:            m.identifyGaps(control, finding),
			Recommendations: m.recommend(control, finding),
		})
	}
	return verdicts
}

// Aggregate merges verdicts for every control touched by the given findings
// into one ComplianceMapping per control. The rollup is worst-case: the
// overall status is never more favorable than any constituent verdict.
// Output order is sorted by control id for determinism.
func (m *Mapper) Aggregate(findings []schemas.Finding) []schemas.ComplianceMapping {
	type bucket struct {
		mapping       schemas.ComplianceMapping
		worstSeverity schemas.Severity
	}
	buckets := make(map[string]*bucket)

	for _, finding := range findings {
		for _, verdict := range m.Map(finding) {
			b, ok := buckets[verdict.ControlID]
			if !ok {
				b = &bucket{
					mapping: schemas.ComplianceMapping{
						ControlID:     verdict.ControlID,
						Framework:     m.def.Framework,
						OverallStatus: verdict.Status,
					},
					worstSeverity: finding.Severity,
				}
				buckets[verdict.ControlID] = b
			}

			if verdict.Status.WorseThan(b.mapping.OverallStatus) {
				b.mapping.OverallStatus = verdict.Status
			}
			if finding.Severity.WorseThan(b.worstSeverity) {
				b.worstSeverity = finding.Severity
			}

			evidence := fmt.Sprintf("%s (%s)", finding.Title, finding.Severity)
			b.mapping.Evidence = appendUnique(b.mapping.Evidence, evidence)
			for _, gap := range verdict.Gaps {
				b.mapping.Gaps = appendUnique(b.mapping.Gaps, gap)
			}
			for _, rec := range verdict.Recommendations {
				b.mapping.RemediationActions = appendUnique(b.mapping.RemediationActions, rec)
			}
		}
	}

	mappings := make([]schemas.ComplianceMapping, 0, len(buckets))
	for _, b := range buckets {
		b.mapping.Timeline = schemas.RemediationTimeline(b.worstSeverity)
		mappings = append(mappings, b.mapping)
	}
	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].ControlID < mappings[j].ControlID
	})
	return mappings
}

// controlsFor resolves the control ids a finding maps onto: the category
// table first, then (where the framework defines one) the secondary lookup
// by external reference id, de-duplicated against the primary result.
func (m *Mapper) controlsFor(finding schemas.Finding) []string {
	primary := m.def.CategoryControls[finding.Category]
	ids := make([]string, 0, len(primary)+1)
	seen := make(map[string]struct{}, len(primary)+1)
	for _, id := range primary {
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	if m.def.ReferenceControls != nil && finding.ReferenceID != "" {
		if extra, ok := m.def.ReferenceControls[finding.ReferenceID]; ok {
			if _, dup := seen[extra]; !dup {
				ids = append(ids, extra)
			}
		}
	}
	return ids
}

// identifyGaps tests each requirement of the control against the finding
// through the gap predicate.
func (m *Mapper) identifyGaps(control schemas.ComplianceControl, finding schemas.Finding) []string {
	var gaps []string
	for _, req := range control.Requirements {
		if m.gap(req, finding) {
			gaps = append(gaps, fmt.Sprintf("Requirement not met: %s", req))
		}
	}
	return gaps
}

// recommend produces the baseline recommendation from the control title plus
// the category-specific supplements.
func (m *Mapper) recommend(control schemas.ComplianceControl, finding schemas.Finding) []string {
	recs := []string{fmt.Sprintf("Review and remediate against control %s (%s)", control.ID, control.Title)}
	recs = append(recs, categorySupplements[finding.Category]...)
	return recs
}

// statusForSeverity is the uniform verdict derivation shared by every
// framework: severity alone decides the status.
func statusForSeverity(s schemas.Severity) schemas.ComplianceStatus {
	switch s {
	case schemas.SeverityCritical, schemas.SeverityHigh:
		return schemas.StatusNonCompliant
	case schemas.SeverityMedium:
		return schemas.StatusPartiallyCompliant
	default:
		return schemas.StatusRequiresReview
	}
}

// appendUnique appends s to list unless already present, preserving order.
func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
