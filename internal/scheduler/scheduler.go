// File: internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/vexred/aegis-cli/api/schemas"
	"github.com/vexred/aegis-cli/internal/config"
)

// Scheduler runs every registered scanner against a target under a bounded
// worker pool. Tasks are independent and share no mutable state: each task's
// findings stay task-local until the collector merges them, and all shared
// bookkeeping lives inside a single collector goroutine fed by a channel, so
// no counter is ever touched from two goroutines.
type Scheduler struct {
	cfg    config.SchedulerConfig
	logger *zap.Logger

	mu       sync.Mutex
	scanners []schemas.Scanner
	names    map[string]struct{}

	onProgress schemas.ProgressFunc
	onError    schemas.ErrorFunc
}

// Option configures optional scheduler behavior.
type Option func(*Scheduler)

// WithProgressFunc installs a callback fired on every task state transition.
// It runs on the collector goroutine and must not block.
func WithProgressFunc(f schemas.ProgressFunc) Option {
	return func(s *Scheduler) { s.onProgress = f }
}

// WithErrorFunc installs a callback fired for every scanner failure, under
// the same constraints as WithProgressFunc.
func WithErrorFunc(f schemas.ErrorFunc) Option {
	return func(s *Scheduler) { s.onError = f }
}

// New creates a Scheduler from validated settings.
func New(cfg config.SchedulerConfig, logger *zap.Logger, opts ...Option) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ParallelExecution && cfg.MaxConcurrentScanners < 1 {
		return nil, fmt.Errorf("max_concurrent_scanners must be at least 1, got %d", cfg.MaxConcurrentScanners)
	}
	if cfg.TimeoutPerScanner <= 0 {
		return nil, errors.New("timeout_per_scanner must be positive")
	}
	if cfg.GlobalTimeout <= 0 {
		return nil, errors.New("global_timeout must be positive")
	}
	if cfg.RetryAttempts < 0 {
		return nil, fmt.Errorf("retry_attempts cannot be negative, got %d", cfg.RetryAttempts)
	}

	s := &Scheduler{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "scheduler")),
		names:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register adds a scanner to the run set. Registration order determines both
// start order and the order findings are merged in.
func (s *Scheduler) Register(scanner schemas.Scanner) error {
	if scanner == nil {
		return errors.New("scanner cannot be nil")
	}
	name := scanner.Name()
	if name == "" {
		return errors.New("scanner name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.names[name]; dup {
		return fmt.Errorf("scanner %q is already registered", name)
	}
	s.names[name] = struct{}{}
	s.scanners = append(s.scanners, scanner)
	return nil
}

// Scanners returns the registered scanners in registration order.
func (s *Scheduler) Scanners() []schemas.Scanner {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]schemas.Scanner, len(s.scanners))
	copy(out, s.scanners)
	return out
}

// taskEvent is the message task goroutines send to the collector. At most two
// events are emitted per task (started, finished), which bounds the channel
// buffer and keeps sends non-blocking.
type taskEvent struct {
	index    int
	scanner  string
	state    schemas.TaskState
	findings []schemas.Finding
	err      *schemas.ScanError
}

// Run executes one assessment: every registered scanner becomes a ScanTask,
// run in parallel under the concurrency cap or strictly sequentially. A
// failing or timed-out scanner is recorded and the run continues, unless
// continue_on_error is off, in which case not-yet-started tasks stay queued
// while running ones drain. The global timeout is a hard ceiling: on expiry
// the run completes with whatever results exist.
func (s *Scheduler) Run(ctx context.Context, assessmentID, targetPath string, fs schemas.FileGateway) (*schemas.AssessmentResult, error) {
	if fs == nil {
		return nil, errors.New("file gateway cannot be nil")
	}

	scanners := s.Scanners()
	result := &schemas.AssessmentResult{
		AssessmentID: assessmentID,
		StartedAt:    time.Now().UTC(),
	}
	if len(scanners) == 0 {
		s.logger.Warn("No scanners registered, assessment is empty", zap.String("assessment_id", assessmentID))
		result.FinishedAt = time.Now().UTC()
		return result, nil
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.GlobalTimeout)
	defer cancel()

	s.logger.Info("Starting assessment run",
		zap.String("assessment_id", assessmentID),
		zap.String("target", targetPath),
		zap.Int("scanners", len(scanners)),
		zap.Bool("parallel", s.cfg.ParallelExecution),
	)

	total := len(scanners)
	events := make(chan taskEvent, total*2)

	// halted flips once when continue_on_error is off and a task fails. The
	// dispatcher reads it before launching each task; tasks already running
	// are unaffected.
	var halted atomic.Bool

	// findings and errors are indexed by registration order so the merged
	// result is deterministic regardless of completion interleaving.
	findingsByTask := make([][]schemas.Finding, total)
	errByTask := make([]*schemas.ScanError, total)

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		terminal := 0
		for ev := range events {
			switch ev.state {
			case schemas.TaskRunning:
				result.Counters.ScannersExecuted++
			case schemas.TaskCompleted:
				terminal++
				result.Counters.ScannersSuccessful++
				findingsByTask[ev.index] = ev.findings
			case schemas.TaskTimedOut:
				terminal++
				result.Counters.ScannersTimedOut++
				errByTask[ev.index] = ev.err
			case schemas.TaskFailed:
				terminal++
				result.Counters.ScannersFailed++
				errByTask[ev.index] = ev.err
			}

			if ev.err != nil && s.onError != nil {
				s.onError(schemas.ErrorEvent{
					Scanner: ev.err.Scanner,
					Message: ev.err.Message,
					Kind:    ev.err.Kind,
				})
			}
			if s.onProgress != nil {
				s.onProgress(schemas.ProgressEvent{
					Phase:           schemas.PhaseScanning,
					OverallPercent:  float64(terminal) / float64(total) * 100,
					CurrentActivity: fmt.Sprintf("%s: %s", ev.scanner, ev.state),
				})
			}
		}
	}()

	if s.cfg.ParallelExecution {
		s.dispatchParallel(runCtx, scanners, targetPath, fs, events, &halted)
	} else {
		s.dispatchSequential(runCtx, scanners, targetPath, fs, events, &halted)
	}

	close(events)
	<-collectorDone

	for _, taskFindings := range findingsByTask {
		result.Findings = append(result.Findings, taskFindings...)
	}
	for _, e := range errByTask {
		if e != nil {
			result.Errors = append(result.Errors, *e)
		}
	}
	result.FinishedAt = time.Now().UTC()

	s.logger.Info("Assessment run finished",
		zap.String("assessment_id", assessmentID),
		zap.Int("findings", len(result.Findings)),
		zap.Int("executed", result.Counters.ScannersExecuted),
		zap.Int("successful", result.Counters.ScannersSuccessful),
		zap.Int("failed", result.Counters.ScannersFailed),
		zap.Int("timed_out", result.Counters.ScannersTimedOut),
	)
	return result, nil
}

func (s *Scheduler) dispatchParallel(ctx context.Context, scanners []schemas.Scanner, targetPath string, fs schemas.FileGateway, events chan<- taskEvent, halted *atomic.Bool) {
	sem := semaphore.NewWeighted(int64(s.cfg.MaxConcurrentScanners))
	var wg sync.WaitGroup

	for i, scanner := range scanners {
		if halted.Load() {
			s.logger.Warn("Halting dispatch of remaining scanners after failure", zap.String("scanner", scanner.Name()))
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			// Global deadline hit while queued; remaining tasks never start.
			s.logger.Warn("Global timeout reached before scanner could start", zap.String("scanner", scanner.Name()))
			break
		}
		wg.Add(1)
		go func(index int, sc schemas.Scanner) {
			defer wg.Done()
			defer sem.Release(1)
			s.runTask(ctx, index, sc, targetPath, fs, events, halted)
		}(i, scanner)
	}
	wg.Wait()
}

func (s *Scheduler) dispatchSequential(ctx context.Context, scanners []schemas.Scanner, targetPath string, fs schemas.FileGateway, events chan<- taskEvent, halted *atomic.Bool) {
	for i, scanner := range scanners {
		if halted.Load() {
			s.logger.Warn("Halting dispatch of remaining scanners after failure", zap.String("scanner", scanner.Name()))
			return
		}
		if ctx.Err() != nil {
			s.logger.Warn("Global timeout reached before scanner could start", zap.String("scanner", scanner.Name()))
			return
		}
		s.runTask(ctx, i, scanner, targetPath, fs, events, halted)
	}
}

// runTask drives one scanner to a terminal state, retrying non-timeout
// failures up to the configured attempt cap. Timeouts are never retried: a
// slow scanner would only burn the remaining global budget.
func (s *Scheduler) runTask(ctx context.Context, index int, scanner schemas.Scanner, targetPath string, fs schemas.FileGateway, events chan<- taskEvent, halted *atomic.Bool) {
	name := scanner.Name()
	logger := s.logger.With(zap.String("scanner", name))

	events <- taskEvent{index: index, scanner: name, state: schemas.TaskRunning}

	var lastErr *schemas.ScanError
	for attempt := 0; attempt <= s.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			logger.Info("Retrying scanner after failure", zap.Int("attempt", attempt+1))
		}

		taskCtx, cancel := context.WithTimeout(ctx, s.cfg.TimeoutPerScanner)
		findings, err := s.invoke(taskCtx, scanner, targetPath, fs)
		deadlineHit := taskCtx.Err() != nil
		cancel()

		if deadlineHit {
			// Cancellation is cooperative; a scanner that returned anyway
			// overran its deadline, which is a soft violation, not a crash.
			// The deadline wins even over a successful return: late findings
			// are discarded and the task is recorded as timed out, so the
			// timeout classification never depends on how the scanner raced
			// its own cancellation.
			if err == nil {
				logger.Warn("Scanner overran its deadline before observing cancellation",
					zap.Duration("timeout", s.cfg.TimeoutPerScanner))
			}
			events <- taskEvent{
				index:   index,
				scanner: name,
				state:   schemas.TaskTimedOut,
				err: &schemas.ScanError{
					Scanner: name,
					Message: fmt.Sprintf("exceeded timeout of %s", s.cfg.TimeoutPerScanner),
					Kind:    schemas.FailureKindTimeout,
				},
			}
			return
		}

		if err == nil {
			logger.Info("Scanner completed", zap.Int("findings", len(findings)))
			events <- taskEvent{index: index, scanner: name, state: schemas.TaskCompleted, findings: findings}
			return
		}

		var scanErr *schemas.ScanError
		if !errors.As(err, &scanErr) {
			scanErr = &schemas.ScanError{Scanner: name, Message: err.Error(), Kind: schemas.FailureKindError}
		}
		scanErr.Scanner = name
		lastErr = scanErr
		logger.Warn("Scanner attempt failed", zap.Int("attempt", attempt+1), zap.Error(scanErr))
	}

	// The halt flag is set here, before the event reaches the collector, so
	// the dispatcher observes it before considering the next task.
	if !s.cfg.ContinueOnError {
		halted.Store(true)
	}
	events <- taskEvent{index: index, scanner: name, state: schemas.TaskFailed, err: lastErr}
}

// invoke calls the scanner, converting a panic into an ordinary failure so
// one broken plugin cannot take the run down with it.
func (s *Scheduler) invoke(ctx context.Context, scanner schemas.Scanner, targetPath string, fs schemas.FileGateway) (findings []schemas.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scanner panicked", zap.String("scanner", scanner.Name()), zap.Any("panic", r))
			findings = nil
			err = &schemas.ScanError{
				Scanner: scanner.Name(),
				Message: fmt.Sprintf("panic: %v", r),
				Kind:    schemas.FailureKindError,
			}
		}
	}()
	return scanner.Scan(ctx, targetPath, fs)
}
