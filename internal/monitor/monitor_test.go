// File: internal/monitor/monitor_test.go
package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vexred/aegis-cli/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testCfg() config.MonitorConfig {
	return config.MonitorConfig{
		Enabled:          true,
		SampleInterval:   10 * time.Millisecond,
		MemoryLimitMB:    1024,
		CPUThresholdPct:  85,
		ThroughputTarget: 50,
	}
}

func TestMonitor_StartStopCollectsSamples(t *testing.T) {
	m := New(testCfg(), zap.NewNop())
	m.Start()

	time.Sleep(60 * time.Millisecond)
	m.AddProcessed(10)

	report := m.Stop()
	assert.Greater(t, report.SampleCount, 0)
	assert.Equal(t, int64(10), report.FilesProcessed)
	assert.Greater(t, report.AvgHeapMB, 0.0)
	assert.GreaterOrEqual(t, report.PeakHeapMB, report.AvgHeapMB)
	assert.Greater(t, report.Duration, time.Duration(0))
}

func TestMonitor_StartIsIdempotent(t *testing.T) {
	m := New(testCfg(), zap.NewNop())
	m.Start()
	m.Start() // must not spawn a second loop
	time.Sleep(30 * time.Millisecond)
	report := m.Stop()
	assert.Greater(t, report.SampleCount, 0)
}

func TestMonitor_StopWithoutStart(t *testing.T) {
	m := New(testCfg(), zap.NewNop())
	report := m.Stop()
	assert.Zero(t, report.SampleCount)
	assert.Equal(t, 100.0, report.EfficiencyScore)
}

func TestMonitor_AddProcessedIsConcurrencySafe(t *testing.T) {
	m := New(testCfg(), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.AddProcessed(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(2000), m.Processed())
}

func TestMonitor_HistoryRingEvictsOldest(t *testing.T) {
	m := New(testCfg(), zap.NewNop())
	m.startedAt = time.Now()

	// Each sample carries a distinct FilesProcessed value so eviction of
	// the oldest entries is observable, not just the ring length.
	for i := 0; i < historyCap+5; i++ {
		m.AddProcessed(1)
		m.tick()
	}

	history := m.History()
	require.Len(t, history, historyCap)
	assert.Equal(t, int64(6), history[0].FilesProcessed, "the five oldest samples must have been evicted")
	assert.Equal(t, int64(historyCap+5), history[len(history)-1].FilesProcessed)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.Before(history[i-1].Timestamp))
	}
}

func TestMonitor_MemoryAlertFiresOnBreach(t *testing.T) {
	cfg := testCfg()
	cfg.MemoryLimitMB = 1 // any Go test binary heap exceeds 1 MB
	m := New(cfg, zap.NewNop())
	m.startedAt = time.Now()

	m.tick()

	report := m.Stop()
	require.NotEmpty(t, report.Alerts)
	assert.Equal(t, AlertMemory, report.Alerts[0].Type)
	assert.Greater(t, report.Alerts[0].Value, report.Alerts[0].Threshold)
}

func TestMonitor_AlertsDeduplicatedWithinWindow(t *testing.T) {
	cfg := testCfg()
	cfg.MemoryLimitMB = 1
	m := New(cfg, zap.NewNop())
	m.startedAt = time.Now()
	// Shrink the suppression window so the test does not wait 30 seconds.
	m.suppress[AlertMemory] = &rate.Sometimes{Interval: 50 * time.Millisecond}

	m.tick()
	m.tick()
	m.tick()

	assert.Len(t, m.History(), 3, "samples are always recorded")
	report := m.Stop()
	assert.Len(t, report.Alerts, 1, "repeat breaches within the window are suppressed")

	time.Sleep(60 * time.Millisecond)
	m.tick()
	report = m.Stop()
	assert.Len(t, report.Alerts, 2, "a breach after the window fires again")
}

func TestMonitor_ThroughputAlertRequiresWork(t *testing.T) {
	cfg := testCfg()
	cfg.MemoryLimitMB = 1 << 20 // effectively unlimited
	cfg.CPUThresholdPct = 0
	cfg.ThroughputTarget = 1000
	m := New(cfg, zap.NewNop())
	m.startedAt = time.Now().Add(-time.Minute)

	// No work recorded yet: silent.
	m.tick()
	assert.Empty(t, m.Stop().Alerts)

	// A trickle of work against a high target breaches the floor.
	m.AddProcessed(5)
	m.tick()
	report := m.Stop()
	require.NotEmpty(t, report.Alerts)
	assert.Equal(t, AlertThroughput, report.Alerts[0].Type)
}

func TestMonitor_EfficiencyScoreBounds(t *testing.T) {
	m := New(testCfg(), zap.NewNop())
	m.Start()
	m.AddProcessed(500)
	time.Sleep(40 * time.Millisecond)

	report := m.Stop()
	assert.GreaterOrEqual(t, report.EfficiencyScore, 0.0)
	assert.LessOrEqual(t, report.EfficiencyScore, 100.0)
}

func TestMonitor_RecommendationsKeyedToBreaches(t *testing.T) {
	cfg := testCfg()
	cfg.MemoryLimitMB = 1
	m := New(cfg, zap.NewNop())
	m.startedAt = time.Now()
	m.suppress[AlertMemory] = &rate.Sometimes{Interval: time.Nanosecond}

	m.tick()
	time.Sleep(time.Millisecond)
	m.tick()

	report := m.Stop()
	require.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[0], "memory_limit_mb")
}
