// File: internal/compliance/frameworks/frameworks.go
// Package frameworks holds the static per-framework control catalogs and the
// category association tables that parameterize the shared mapping
// algorithm. The data is compiled in, loaded once, and never mutated.
package frameworks

import "github.com/vexred/aegis-cli/api/schemas"

// Definition bundles everything framework-specific the mapper needs: the
// control catalog, the many-to-many category table, and (OWASP only) the
// secondary lookup from external reference ids to controls.
type Definition struct {
	Framework schemas.Framework

	// Controls is the full catalog for the framework.
	Controls []schemas.ComplianceControl

	// CategoryControls associates each weakness category with the controls
	// it maps onto. A category absent from the table yields zero mappings,
	// which is valid.
	CategoryControls map[schemas.WeaknessCategory][]string

	// ReferenceControls resolves an external reference id (e.g. "CWE-89") to
	// one additional control not reached via the category table. Nil for
	// every framework except OWASP.
	ReferenceControls map[string]string
}

// All returns the definitions for every supported framework, in the order of
// schemas.AllFrameworks.
func All() []Definition {
	return []Definition{
		AWSWellArchitected(),
		NISTCSF(),
		OWASPTop10(),
		ISO27001(),
		SOC2TypeII(),
		Regulatory(),
	}
}
