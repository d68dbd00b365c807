package schemas

import (
	"fmt"
	"time"
)

// -- Scheduling Schemas --

// TaskState is the lifecycle state of a scan task. Transitions are monotonic:
// Queued -> Running -> one of {Completed, Failed, TimedOut}. The scheduler is
// the sole owner of task state.
type TaskState string

// Constants for task lifecycle states.
const (
	TaskQueued    TaskState = "queued"
	TaskRunning   TaskState = "running"
	TaskCompleted TaskState = "completed"
	TaskFailed    TaskState = "failed"
	TaskTimedOut  TaskState = "timed_out"
)

// Terminal reports whether the state admits no further transition.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskTimedOut
}

// ScanTask pairs a scanner with the target it runs against and the deadline
// it runs under.
type ScanTask struct {
	Scanner    string        `json:"scanner"`
	TargetPath string        `json:"target_path"`
	Timeout    time.Duration `json:"timeout"`
	State      TaskState     `json:"state"`
	Attempts   int           `json:"attempts"`
}

// FailureKind discriminates the ways a scanner invocation can fail.
// Timeouts are recorded distinctly from failures so that "broken" is
// distinguishable from "slow".
type FailureKind string

// Constants for the scanner failure taxonomy.
const (
	FailureKindConfig  FailureKind = "configuration"
	FailureKindError   FailureKind = "failure"
	FailureKindTimeout FailureKind = "timeout"
)

// ScanError is the value that crosses the scanner plugin boundary when an
// invocation fails. Plugin failures are collected, never thrown, so one bad
// scanner cannot block a usable partial report.
type ScanError struct {
	Scanner string      `json:"scanner"`
	Message string      `json:"message"`
	Kind    FailureKind `json:"kind"`
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	return fmt.Sprintf("scanner %q: %s (%s)", e.Scanner, e.Message, e.Kind)
}

// Counters summarizes the bookkeeping of a completed assessment run.
type Counters struct {
	ScannersExecuted   int `json:"scanners_executed"`
	ScannersSuccessful int `json:"scanners_successful"`
	ScannersFailed     int `json:"scanners_failed"`
	ScannersTimedOut   int `json:"scanners_timed_out"`
	FilesProcessed     int `json:"files_processed"`
}

// AssessmentResult is the merged outcome of one scheduler run: every finding
// produced by the scanners that completed, every failure encountered, and the
// run counters. Findings are merged by scanner identity in registration
// order, so the result is deterministic regardless of completion interleaving.
type AssessmentResult struct {
	AssessmentID string      `json:"assessment_id"`
	StartedAt    time.Time   `json:"started_at"`
	FinishedAt   time.Time   `json:"finished_at"`
	Findings     []Finding   `json:"findings"`
	Errors       []ScanError `json:"errors"`
	Counters     Counters    `json:"counters"`
}
