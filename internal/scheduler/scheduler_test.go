// File: internal/scheduler/scheduler_test.go
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/vexred/aegis-cli/api/schemas"
	"github.com/vexred/aegis-cli/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeScanner is a scriptable scanner for scheduler tests.
type fakeScanner struct {
	name string
	scan func(ctx context.Context, targetPath string, fs schemas.FileGateway) ([]schemas.Finding, error)
}

func (f *fakeScanner) Name() string { return f.name }

func (f *fakeScanner) Scan(ctx context.Context, targetPath string, fs schemas.FileGateway) ([]schemas.Finding, error) {
	return f.scan(ctx, targetPath, fs)
}

// allowAllGateway satisfies the gateway interface without touching disk.
type allowAllGateway struct{}

func (allowAllGateway) IsAllowed(string) schemas.AccessDecision {
	return schemas.AccessDecision{Allowed: true}
}

func (allowAllGateway) ReadFile(string) ([]byte, error) { return nil, nil }

func testPlan() config.SchedulerConfig {
	return config.SchedulerConfig{
		ParallelExecution:     true,
		MaxConcurrentScanners: 2,
		GlobalTimeout:         5 * time.Second,
		TimeoutPerScanner:     200 * time.Millisecond,
		RetryAttempts:         0,
		ContinueOnError:       true,
	}
}

func succeedWith(findings ...schemas.Finding) func(context.Context, string, schemas.FileGateway) ([]schemas.Finding, error) {
	return func(context.Context, string, schemas.FileGateway) ([]schemas.Finding, error) {
		return findings, nil
	}
}

func blockUntilCancelled(ctx context.Context, _ string, _ schemas.FileGateway) ([]schemas.Finding, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestNew_RejectsInvalidPlan(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.SchedulerConfig)
	}{
		{"zero concurrency under parallel", func(c *config.SchedulerConfig) { c.MaxConcurrentScanners = 0 }},
		{"zero per-scanner timeout", func(c *config.SchedulerConfig) { c.TimeoutPerScanner = 0 }},
		{"zero global timeout", func(c *config.SchedulerConfig) { c.GlobalTimeout = 0 }},
		{"negative retries", func(c *config.SchedulerConfig) { c.RetryAttempts = -1 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testPlan()
			tc.mutate(&cfg)
			_, err := New(cfg, zap.NewNop())
			assert.Error(t, err)
		})
	}
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	s, err := New(testPlan(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Register(&fakeScanner{name: "dup", scan: succeedWith()}))
	err = s.Register(&fakeScanner{name: "dup", scan: succeedWith()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRun_NoScannersYieldsEmptyResult(t *testing.T) {
	s, err := New(testPlan(), zap.NewNop())
	require.NoError(t, err)

	result, err := s.Run(context.Background(), "assess-empty", "/tmp", allowAllGateway{})
	require.NoError(t, err)
	assert.Empty(t, result.Findings)
	assert.Empty(t, result.Errors)
	assert.Zero(t, result.Counters.ScannersExecuted)
}

// Three scanners: A succeeds with two findings, B blocks past its deadline,
// C returns an error. The run must still produce A's findings plus two
// distinct failure records.
func TestRun_PartialFailureScenario(t *testing.T) {
	s, err := New(testPlan(), zap.NewNop())
	require.NoError(t, err)

	findings := []schemas.Finding{
		{ID: "f1", Scanner: "scanner-a", Severity: schemas.SeverityHigh, Title: "High issue"},
		{ID: "f2", Scanner: "scanner-a", Severity: schemas.SeverityLow, Title: "Low issue"},
	}
	require.NoError(t, s.Register(&fakeScanner{name: "scanner-a", scan: succeedWith(findings...)}))
	require.NoError(t, s.Register(&fakeScanner{name: "scanner-b", scan: blockUntilCancelled}))
	require.NoError(t, s.Register(&fakeScanner{name: "scanner-c", scan: func(context.Context, string, schemas.FileGateway) ([]schemas.Finding, error) {
		return nil, errors.New("detector backend unavailable")
	}}))

	result, err := s.Run(context.Background(), "assess-1", "/tmp/project", allowAllGateway{})
	require.NoError(t, err)

	assert.Len(t, result.Findings, 2)
	require.Len(t, result.Errors, 2)

	kinds := map[string]schemas.FailureKind{}
	for _, e := range result.Errors {
		kinds[e.Scanner] = e.Kind
	}
	assert.Equal(t, schemas.FailureKindTimeout, kinds["scanner-b"])
	assert.Equal(t, schemas.FailureKindError, kinds["scanner-c"])

	assert.Equal(t, 3, result.Counters.ScannersExecuted)
	assert.Equal(t, 1, result.Counters.ScannersSuccessful)
	assert.Equal(t, 1, result.Counters.ScannersFailed)
	assert.Equal(t, 1, result.Counters.ScannersTimedOut)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))
}

func TestRun_FindingsMergeInRegistrationOrder(t *testing.T) {
	cfg := testPlan()
	cfg.MaxConcurrentScanners = 3
	s, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	// The first-registered scanner finishes last; its findings must still
	// come first in the merged result.
	require.NoError(t, s.Register(&fakeScanner{name: "slow-first", scan: func(ctx context.Context, _ string, _ schemas.FileGateway) ([]schemas.Finding, error) {
		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return []schemas.Finding{{ID: "first", Scanner: "slow-first"}}, nil
	}}))
	require.NoError(t, s.Register(&fakeScanner{name: "fast-second", scan: succeedWith(schemas.Finding{ID: "second", Scanner: "fast-second"})}))

	result, err := s.Run(context.Background(), "assess-order", "/tmp", allowAllGateway{})
	require.NoError(t, err)
	require.Len(t, result.Findings, 2)
	assert.Equal(t, "first", result.Findings[0].ID)
	assert.Equal(t, "second", result.Findings[1].ID)
}

func TestRun_ConcurrencyCapRespected(t *testing.T) {
	cfg := testPlan()
	cfg.MaxConcurrentScanners = 2
	s, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	var current, peak atomic.Int32
	for _, name := range []string{"s1", "s2", "s3", "s4", "s5"} {
		require.NoError(t, s.Register(&fakeScanner{name: name, scan: func(ctx context.Context, _ string, _ schemas.FileGateway) ([]schemas.Finding, error) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			current.Add(-1)
			return nil, nil
		}}))
	}

	_, err = s.Run(context.Background(), "assess-cap", "/tmp", allowAllGateway{})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_SequentialExecutesInOrder(t *testing.T) {
	cfg := testPlan()
	cfg.ParallelExecution = false
	s, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"one", "two", "three"} {
		scannerName := name
		require.NoError(t, s.Register(&fakeScanner{name: scannerName, scan: func(context.Context, string, schemas.FileGateway) ([]schemas.Finding, error) {
			mu.Lock()
			order = append(order, scannerName)
			mu.Unlock()
			return nil, nil
		}}))
	}

	_, err = s.Run(context.Background(), "assess-seq", "/tmp", allowAllGateway{})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, order)
}

func TestRun_RetriesNonTimeoutFailures(t *testing.T) {
	cfg := testPlan()
	cfg.RetryAttempts = 2
	s, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	var calls atomic.Int32
	require.NoError(t, s.Register(&fakeScanner{name: "flaky", scan: func(context.Context, string, schemas.FileGateway) ([]schemas.Finding, error) {
		if calls.Add(1) < 3 {
			return nil, errors.New("transient backend error")
		}
		return []schemas.Finding{{ID: "ok", Scanner: "flaky"}}, nil
	}}))

	result, err := s.Run(context.Background(), "assess-retry", "/tmp", allowAllGateway{})
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, result.Findings, 1)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Counters.ScannersExecuted, "retries do not inflate the executed count")
	assert.Equal(t, 1, result.Counters.ScannersSuccessful)
}

func TestRun_ExhaustedRetriesRecordSingleFailure(t *testing.T) {
	cfg := testPlan()
	cfg.RetryAttempts = 1
	s, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	var calls atomic.Int32
	require.NoError(t, s.Register(&fakeScanner{name: "broken", scan: func(context.Context, string, schemas.FileGateway) ([]schemas.Finding, error) {
		calls.Add(1)
		return nil, errors.New("always fails")
	}}))

	result, err := s.Run(context.Background(), "assess-exhaust", "/tmp", allowAllGateway{})
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, result.Errors, 1)
	assert.Equal(t, schemas.FailureKindError, result.Errors[0].Kind)
	assert.Equal(t, 1, result.Counters.ScannersFailed)
}

func TestRun_TimeoutsAreNotRetried(t *testing.T) {
	cfg := testPlan()
	cfg.RetryAttempts = 3
	cfg.TimeoutPerScanner = 50 * time.Millisecond
	s, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	var calls atomic.Int32
	require.NoError(t, s.Register(&fakeScanner{name: "stuck", scan: func(ctx context.Context, _ string, _ schemas.FileGateway) ([]schemas.Finding, error) {
		calls.Add(1)
		<-ctx.Done()
		return nil, ctx.Err()
	}}))

	result, err := s.Run(context.Background(), "assess-timeout", "/tmp", allowAllGateway{})
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load(), "a timed-out scanner must not be retried")
	require.Len(t, result.Errors, 1)
	assert.Equal(t, schemas.FailureKindTimeout, result.Errors[0].Kind)
	assert.Equal(t, 1, result.Counters.ScannersTimedOut)
}

func TestRun_LateSuccessAfterDeadlineIsTimedOut(t *testing.T) {
	cfg := testPlan()
	cfg.TimeoutPerScanner = 20 * time.Millisecond
	s, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	// Ignores cancellation, sleeps past the deadline and then reports
	// success anyway. The deadline wins: the findings are discarded.
	require.NoError(t, s.Register(&fakeScanner{name: "overrunner", scan: func(ctx context.Context, _ string, _ schemas.FileGateway) ([]schemas.Finding, error) {
		time.Sleep(80 * time.Millisecond)
		return []schemas.Finding{{ID: "late", Scanner: "overrunner"}}, nil
	}}))

	result, err := s.Run(context.Background(), "assess-overrun", "/tmp", allowAllGateway{})
	require.NoError(t, err)

	assert.Empty(t, result.Findings, "findings returned after the deadline must not be merged")
	require.Len(t, result.Errors, 1)
	assert.Equal(t, schemas.FailureKindTimeout, result.Errors[0].Kind)
	assert.Equal(t, 1, result.Counters.ScannersTimedOut)
	assert.Equal(t, 0, result.Counters.ScannersSuccessful)
}

func TestRun_HaltOnFirstFailure(t *testing.T) {
	cfg := testPlan()
	cfg.ParallelExecution = false
	cfg.ContinueOnError = false
	s, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	var thirdRan atomic.Bool
	require.NoError(t, s.Register(&fakeScanner{name: "ok", scan: succeedWith()}))
	require.NoError(t, s.Register(&fakeScanner{name: "fails", scan: func(context.Context, string, schemas.FileGateway) ([]schemas.Finding, error) {
		return nil, errors.New("boom")
	}}))
	require.NoError(t, s.Register(&fakeScanner{name: "never", scan: func(context.Context, string, schemas.FileGateway) ([]schemas.Finding, error) {
		thirdRan.Store(true)
		return nil, nil
	}}))

	result, err := s.Run(context.Background(), "assess-halt", "/tmp", allowAllGateway{})
	require.NoError(t, err)

	assert.False(t, thirdRan.Load(), "not-yet-started tasks must stay queued after the first failure")
	assert.Equal(t, 2, result.Counters.ScannersExecuted)
	assert.Len(t, result.Errors, 1)
}

func TestRun_GlobalTimeoutIsHardCeiling(t *testing.T) {
	cfg := testPlan()
	cfg.ParallelExecution = false
	cfg.GlobalTimeout = 100 * time.Millisecond
	cfg.TimeoutPerScanner = time.Second
	s, err := New(cfg, zap.NewNop())
	require.NoError(t, err)

	var secondRan atomic.Bool
	require.NoError(t, s.Register(&fakeScanner{name: "hog", scan: blockUntilCancelled}))
	require.NoError(t, s.Register(&fakeScanner{name: "queued", scan: func(context.Context, string, schemas.FileGateway) ([]schemas.Finding, error) {
		secondRan.Store(true)
		return nil, nil
	}}))

	start := time.Now()
	result, err := s.Run(context.Background(), "assess-global", "/tmp", allowAllGateway{})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 500*time.Millisecond, "the run must end near the global deadline")
	assert.False(t, secondRan.Load())
	assert.Equal(t, 1, result.Counters.ScannersTimedOut)
}

func TestRun_PanickingScannerIsCollected(t *testing.T) {
	s, err := New(testPlan(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Register(&fakeScanner{name: "panicky", scan: func(context.Context, string, schemas.FileGateway) ([]schemas.Finding, error) {
		panic("index out of range")
	}}))
	require.NoError(t, s.Register(&fakeScanner{name: "fine", scan: succeedWith(schemas.Finding{ID: "ok", Scanner: "fine"})}))

	result, err := s.Run(context.Background(), "assess-panic", "/tmp", allowAllGateway{})
	require.NoError(t, err)

	assert.Len(t, result.Findings, 1)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "panicky", result.Errors[0].Scanner)
	assert.Equal(t, schemas.FailureKindError, result.Errors[0].Kind)
	assert.Contains(t, result.Errors[0].Message, "panic")
}

func TestRun_EmitsProgressAndErrorEvents(t *testing.T) {
	var mu sync.Mutex
	var progress []schemas.ProgressEvent
	var errorEvents []schemas.ErrorEvent

	s, err := New(testPlan(), zap.NewNop(),
		WithProgressFunc(func(ev schemas.ProgressEvent) {
			mu.Lock()
			progress = append(progress, ev)
			mu.Unlock()
		}),
		WithErrorFunc(func(ev schemas.ErrorEvent) {
			mu.Lock()
			errorEvents = append(errorEvents, ev)
			mu.Unlock()
		}),
	)
	require.NoError(t, err)

	require.NoError(t, s.Register(&fakeScanner{name: "good", scan: succeedWith()}))
	require.NoError(t, s.Register(&fakeScanner{name: "bad", scan: func(context.Context, string, schemas.FileGateway) ([]schemas.Finding, error) {
		return nil, errors.New("bad day")
	}}))

	_, err = s.Run(context.Background(), "assess-events", "/tmp", allowAllGateway{})
	require.NoError(t, err)

	// Callbacks fire from the collector, so no further synchronization is
	// needed once Run returns.
	require.NotEmpty(t, progress)
	last := progress[len(progress)-1]
	assert.Equal(t, schemas.PhaseScanning, last.Phase)
	assert.InDelta(t, 100.0, last.OverallPercent, 0.01)

	require.Len(t, errorEvents, 1)
	assert.Equal(t, "bad", errorEvents[0].Scanner)
	assert.Equal(t, schemas.FailureKindError, errorEvents[0].Kind)
}

func TestRun_RejectsNilGateway(t *testing.T) {
	s, err := New(testPlan(), zap.NewNop())
	require.NoError(t, err)

	_, err = s.Run(context.Background(), "assess-nil", "/tmp", nil)
	assert.Error(t, err)
}
