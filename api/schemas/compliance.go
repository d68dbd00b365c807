package schemas

// -- Compliance Schemas --

// Framework identifies one of the supported compliance frameworks.
type Framework string

// Constants for the supported compliance frameworks.
const (
	FrameworkAWSWA      Framework = "aws-well-architected"
	FrameworkNISTCSF    Framework = "nist-csf"
	FrameworkOWASP      Framework = "owasp-top-10"
	FrameworkISO27001   Framework = "iso-27001"
	FrameworkSOC2       Framework = "soc2-type-ii"
	FrameworkRegulatory Framework = "regulatory" // GDPR, CCPA, and HIPAA obligations.
)

// AllFrameworks lists every supported framework in a stable order.
var AllFrameworks = []Framework{
	FrameworkAWSWA,
	FrameworkNISTCSF,
	FrameworkOWASP,
	FrameworkISO27001,
	FrameworkSOC2,
	FrameworkRegulatory,
}

// ComplianceStatus is the compliance state of a control with respect to one
// or more findings.
type ComplianceStatus string

// Constants for compliance statuses, ordered from best to worst.
const (
	StatusCompliant          ComplianceStatus = "compliant"
	StatusRequiresReview     ComplianceStatus = "requires_review"
	StatusPartiallyCompliant ComplianceStatus = "partially_compliant"
	StatusNonCompliant       ComplianceStatus = "non_compliant"
)

// statusRank orders statuses by unfavorability. Higher rank is worse.
var statusRank = map[ComplianceStatus]int{
	StatusCompliant:          1,
	StatusRequiresReview:     2,
	StatusPartiallyCompliant: 3,
	StatusNonCompliant:       4,
}

// WorseThan reports whether s is a less favorable status than other.
// An aggregated mapping is never allowed to be more favorable than its worst
// constituent verdict, so rollups use this ordering.
func (s ComplianceStatus) WorseThan(other ComplianceStatus) bool {
	return statusRank[s] > statusRank[other]
}

// ComplianceControl is one control from a framework's static catalog.
// Controls are loaded once at registry construction and never mutated.
type ComplianceControl struct {
	ID             string    `json:"id"`             // Globally unique control identifier, e.g. "OWASP-A03:2021".
	Framework      Framework `json:"framework"`      // The framework the control belongs to.
	ControlNumber  string    `json:"control_number"` // The framework-local control number, e.g. "A03:2021".
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"` // The framework's own grouping, e.g. "Security" or "Protect".
	Requirements   []string  `json:"requirements"`    // Ordered requirement statements.
	TestProcedures []string  `json:"test_procedures"` // Ordered test-procedure statements.
}

// ComplianceVerdict is the classification of a single (finding, control)
// pair. Verdicts are recomputed on every run and never persisted directly.
type ComplianceVerdict struct {
	FindingID       string           `json:"finding_id"`
	ControlID       string           `json:"control_id"`
	Status          ComplianceStatus `json:"status"`
	Gaps            []string         `json:"gaps,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
}

// ComplianceMapping aggregates every verdict against one control into a
// single reportable row: the worst-case status, evidence strings for each
// contributing finding, and the unioned gap and remediation lists.
type ComplianceMapping struct {
	ControlID          string           `json:"control_id"`
	Framework          Framework        `json:"framework"`
	OverallStatus      ComplianceStatus `json:"overall_status"`
	Evidence           []string         `json:"evidence"`
	Gaps               []string         `json:"gaps"`
	RemediationActions []string         `json:"remediation_actions"`

	// Timeline is the suggested remediation window derived from the worst
	// severity present among the mapped findings.
	Timeline string `json:"timeline"`
}

// RemediationTimeline returns the suggested remediation window for a given
// worst-case severity.
func RemediationTimeline(worst Severity) string {
	switch worst {
	case SeverityCritical:
		return "24-48 hours"
	case SeverityHigh:
		return "1-2 weeks"
	case SeverityMedium:
		return "1-3 months"
	case SeverityLow:
		return "3-6 months"
	default:
		return "next review cycle"
	}
}
