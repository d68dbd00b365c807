package schemas

import "context"

// -- Component Interfaces --
// The orchestration layer is wired against these interfaces rather than
// concrete types, keeping it decoupled and testable.

// Scanner is the single capability a vulnerability scanner plugin must
// provide. The scheduler depends only on this interface, never on concrete
// plugin types. Errors cross the boundary as values; a failing scanner
// returns a *ScanError rather than panicking.
//
// Cancellation is cooperative: the plugin is expected to observe ctx at its
// next checkpoint, typically between files. A plugin that ignores ctx may
// overrun its deadline; the scheduler logs that as a soft violation.
type Scanner interface {
	// Name returns the unique registered name of the scanner.
	Name() string
	// Scan analyzes the target path, reading files only through the gateway.
	Scan(ctx context.Context, targetPath string, fs FileGateway) ([]Finding, error)
}

// AccessDecision is the outcome of evaluating a path against the sandbox
// rule list.
type AccessDecision struct {
	Allowed     bool   `json:"allowed"`
	Reason      string `json:"reason"`
	MatchedRule string `json:"matched_rule"`
}

// FileGateway is the sandboxed read-only file collaborator handed to every
// scanner. It evaluates an ordered allow/deny rule list over glob-style
// patterns, first match wins, default deny. Callers must never read or
// enumerate a path ruled not-allowed.
type FileGateway interface {
	IsAllowed(path string) AccessDecision
	ReadFile(path string) ([]byte, error)
}

// FrameworkMapper classifies findings against one framework's control
// catalog. Implementations are stateless; Map and Aggregate may be called
// concurrently.
type FrameworkMapper interface {
	Framework() Framework
	Map(finding Finding) []ComplianceVerdict
	Aggregate(findings []Finding) []ComplianceMapping
}

// Store persists assessment runs and their compliance output. Persistence is
// optional; a nil Store means the run is report-only.
type Store interface {
	PersistAssessment(ctx context.Context, result *AssessmentResult, mappings map[Framework][]ComplianceMapping) error
}
