package schemas

import "time"

// -- Finding Schemas --

// Severity represents the severity level of a security finding, ranging from
// critical to informational. The values are lowercase to align with database ENUMs.
type Severity string

// Constants defining the standard severity levels for findings.
const (
	SeverityCritical Severity = "critical" // Represents a critical vulnerability.
	SeverityHigh     Severity = "high"     // Represents a high-severity vulnerability.
	SeverityMedium   Severity = "medium"   // Represents a medium-severity vulnerability.
	SeverityLow      Severity = "low"      // Represents a low-severity vulnerability.
	SeverityInfo     Severity = "info"     // Represents an informational finding.
)

// severityRank orders severities so they can be compared numerically.
// Higher rank means more severe.
var severityRank = map[Severity]int{
	SeverityCritical: 5,
	SeverityHigh:     4,
	SeverityMedium:   3,
	SeverityLow:      2,
	SeverityInfo:     1,
}

// Rank returns the numeric ordering of a severity. Unknown severities rank
// below info so malformed input never outranks a real finding.
func (s Severity) Rank() int {
	return severityRank[s]
}

// WorseThan reports whether s is strictly more severe than other.
func (s Severity) WorseThan(other Severity) bool {
	return s.Rank() > other.Rank()
}

// WeaknessCategory is the closed enumeration of weakness classes a scanner
// can report. The compliance tables key off this enumeration; a category
// with no registered controls yields zero mappings, which is valid behavior
// rather than an error.
type WeaknessCategory string

// Constants for the supported weakness categories.
const (
	CategorySQLInjection             WeaknessCategory = "sql_injection"
	CategoryCommandInjection         WeaknessCategory = "command_injection"
	CategoryCrossSiteScripting       WeaknessCategory = "cross_site_scripting"
	CategoryPathTraversal            WeaknessCategory = "path_traversal"
	CategoryInsecureDeserialization  WeaknessCategory = "insecure_deserialization"
	CategoryHardcodedSecret          WeaknessCategory = "hardcoded_secret"
	CategoryWeakCryptography         WeaknessCategory = "weak_cryptography"
	CategoryCleartextTransmission    WeaknessCategory = "cleartext_transmission"
	CategoryCleartextStorage         WeaknessCategory = "cleartext_storage"
	CategorySSRF                     WeaknessCategory = "ssrf"
	CategoryXXE                      WeaknessCategory = "xxe"
	CategoryBrokenAccessControl      WeaknessCategory = "broken_access_control"
	CategoryBrokenAuthentication     WeaknessCategory = "broken_authentication"
	CategorySecurityMisconfiguration WeaknessCategory = "security_misconfiguration"
	CategoryVulnerableDependency     WeaknessCategory = "vulnerable_dependency"
	CategorySensitiveDataExposure    WeaknessCategory = "sensitive_data_exposure"
	CategoryInsufficientLogging      WeaknessCategory = "insufficient_logging"
	CategoryCSRF                     WeaknessCategory = "csrf"
	CategoryRaceCondition            WeaknessCategory = "race_condition"
)

// AllWeaknessCategories lists every member of the category enumeration in a
// stable order. The compliance registry integrity check iterates over it.
var AllWeaknessCategories = []WeaknessCategory{
	CategorySQLInjection,
	CategoryCommandInjection,
	CategoryCrossSiteScripting,
	CategoryPathTraversal,
	CategoryInsecureDeserialization,
	CategoryHardcodedSecret,
	CategoryWeakCryptography,
	CategoryCleartextTransmission,
	CategoryCleartextStorage,
	CategorySSRF,
	CategoryXXE,
	CategoryBrokenAccessControl,
	CategoryBrokenAuthentication,
	CategorySecurityMisconfiguration,
	CategoryVulnerableDependency,
	CategorySensitiveDataExposure,
	CategoryInsufficientLogging,
	CategoryCSRF,
	CategoryRaceCondition,
}

// Finding encapsulates all the details of a single weakness identified by a
// scanner. A Finding is immutable once produced; downstream stages copy
// rather than mutate.
type Finding struct {
	ID           string           `json:"id"`            // Unique identifier for the finding.
	AssessmentID string           `json:"assessment_id"` // The ID of the assessment run that produced this finding.
	Scanner      string           `json:"scanner"`       // The name of the scanner that reported the finding.
	ObservedAt   time.Time        `json:"observed_at"`   // When the finding was discovered.
	Category     WeaknessCategory `json:"category"`      // The weakness class of the finding.
	Severity     Severity         `json:"severity"`      // The severity level of the finding.
	Title        string           `json:"title"`         // Short descriptive name, e.g. "SQL Injection in login handler".
	Description  string           `json:"description"`   // A detailed description of the weakness.
	FilePath     string           `json:"file_path"`     // The file in which the weakness was found.
	Line         int              `json:"line"`          // 1-based line number, 0 when not applicable.

	// ReferenceID is an optional external identifier such as "CWE-89" or
	// "A03:2021". The OWASP mapper uses it for its secondary control lookup.
	ReferenceID string `json:"reference_id,omitempty"`

	// Likelihood is the normalized probability of exploitation on a 1-5 scale.
	Likelihood int `json:"likelihood"`

	// Impact is a free-text narrative of the business impact.
	Impact string `json:"impact,omitempty"`
}
