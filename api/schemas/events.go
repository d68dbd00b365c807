package schemas

// -- Scheduler Event Schemas --

// Phase names the stage of the assessment a progress event refers to.
type Phase string

// Constants for assessment phases.
const (
	PhaseScanning    Phase = "scanning"
	PhaseClassifying Phase = "classifying"
	PhaseReporting   Phase = "reporting"
)

// ProgressEvent is emitted on every task-state transition. Completion is
// measured as completed tasks over total tasks, equally weighted.
type ProgressEvent struct {
	Phase           Phase   `json:"phase"`
	OverallPercent  float64 `json:"overall_percent"`
	CurrentActivity string  `json:"current_activity"`
}

// ErrorEvent is emitted when a scanner invocation fails. It is decoupled
// from progress so callers can log or alert independently of control flow.
type ErrorEvent struct {
	Scanner string      `json:"scanner"`
	Message string      `json:"message"`
	Kind    FailureKind `json:"kind"`
}

// ProgressFunc receives progress events. Implementations must stay
// side-effect-light (logging, UI updates) and must not schedule work.
type ProgressFunc func(ProgressEvent)

// ErrorFunc receives error events under the same constraints as ProgressFunc.
type ErrorFunc func(ErrorEvent)
