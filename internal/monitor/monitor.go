// File: internal/monitor/monitor.go
package monitor

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vexred/aegis-cli/internal/config"
)

// historyCap bounds the sample ring; the oldest sample is evicted first.
const historyCap = 1000

// alertWindow is the per-type suppression window. An alert of a given type is
// dropped if one of the same type fired within this window, bounding alert
// volume under sustained breach without losing the first signal.
const alertWindow = 30 * time.Second

// AlertType names the threshold an alert refers to.
type AlertType string

// Constants for the alert taxonomy.
const (
	AlertMemory     AlertType = "memory"
	AlertCPU        AlertType = "cpu"
	AlertThroughput AlertType = "throughput"
)

// Alert records a single threshold breach.
type Alert struct {
	Type      AlertType `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
}

// ResourceSample is one point-in-time measurement of the process.
type ResourceSample struct {
	Timestamp      time.Time     `json:"timestamp"`
	HeapBytes      uint64        `json:"heap_bytes"`
	CPUPercent     float64       `json:"cpu_percent"`
	Elapsed        time.Duration `json:"elapsed"`
	FilesProcessed int64         `json:"files_processed"`
	// Throughput is files per second over the whole session so far.
	Throughput float64 `json:"throughput"`
	// Utilization ratios are measured against the configured limits, 1.0
	// meaning exactly at the limit.
	MemoryUtilization float64 `json:"memory_utilization"`
	CPUUtilization    float64 `json:"cpu_utilization"`
}

// Report summarizes a completed monitoring session.
type Report struct {
	Duration        time.Duration `json:"duration"`
	SampleCount     int           `json:"sample_count"`
	FilesProcessed  int64         `json:"files_processed"`
	AvgHeapMB       float64       `json:"avg_heap_mb"`
	PeakHeapMB      float64       `json:"peak_heap_mb"`
	AvgCPUPercent   float64       `json:"avg_cpu_percent"`
	PeakCPUPercent  float64       `json:"peak_cpu_percent"`
	AvgThroughput   float64       `json:"avg_throughput"`
	EfficiencyScore float64       `json:"efficiency_score"`
	Alerts          []Alert       `json:"alerts"`
	Recommendations []string      `json:"recommendations"`
}

// Monitor samples process resource usage on its own timer, independent of the
// scheduler: a stalled scanner can never block a tick. The work counter is
// the only value written from outside, and it is atomic; everything else is
// owned by the sampling loop and read under the mutex.
type Monitor struct {
	cfg    config.MonitorConfig
	logger *zap.Logger

	processed atomic.Int64

	mu      sync.Mutex
	samples []ResourceSample
	alerts  []Alert

	// suppress holds one limiter per alert type.
	suppress map[AlertType]*rate.Sometimes

	startedAt time.Time
	stop      chan struct{}
	done      chan struct{}
	running   bool
}

// New creates a Monitor from validated settings.
func New(cfg config.MonitorConfig, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "monitor")),
		suppress: map[AlertType]*rate.Sometimes{
			AlertMemory:     {Interval: alertWindow},
			AlertCPU:        {Interval: alertWindow},
			AlertThroughput: {Interval: alertWindow},
		},
	}
}

// AddProcessed records completed work units. Safe for concurrent use; the
// scheduler and gateway call this as work completes.
func (m *Monitor) AddProcessed(delta int64) {
	m.processed.Add(delta)
}

// Processed returns the accumulated work counter.
func (m *Monitor) Processed() int64 {
	return m.processed.Load()
}

// Start launches the sampling loop. Calling Start on a running monitor is a
// no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		m.logger.Warn("Monitor.Start called, but monitor is already running")
		return
	}
	interval := m.cfg.SampleInterval
	if interval <= 0 {
		interval = time.Second
	}
	m.running = true
	m.startedAt = time.Now()
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	m.logger.Info("Starting resource monitor", zap.Duration("interval", interval))
	go m.loop(interval)
}

// Stop halts sampling and returns the session report. Stopping an already
// stopped monitor returns a report over whatever was collected.
func (m *Monitor) Stop() Report {
	m.mu.Lock()
	if m.running {
		m.running = false
		close(m.stop)
		done := m.done
		m.mu.Unlock()
		<-done
		m.mu.Lock()
	}
	defer m.mu.Unlock()
	return m.buildReport()
}

// History returns a copy of the sample ring, oldest first.
func (m *Monitor) History() []ResourceSample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ResourceSample, len(m.samples))
	copy(out, m.samples)
	return out
}

func (m *Monitor) loop(interval time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.tick()
		}
	}
}

func (m *Monitor) tick() {
	sample := m.measure()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.samples) == historyCap {
		copy(m.samples, m.samples[1:])
		m.samples = m.samples[:historyCap-1]
	}
	m.samples = append(m.samples, sample)

	m.evaluateAlerts(sample)
}

func (m *Monitor) measure() ResourceSample {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	elapsed := time.Since(m.startedAt)
	processed := m.processed.Load()

	var throughput float64
	if secs := elapsed.Seconds(); secs > 0 {
		throughput = float64(processed) / secs
	}

	// CPU load approximation from goroutine pressure: runnable goroutines
	// relative to available cores, capped at 100.
	cpuPct := float64(runtime.NumGoroutine()) / float64(runtime.GOMAXPROCS(0)) * 25
	if cpuPct > 100 {
		cpuPct = 100
	}

	sample := ResourceSample{
		Timestamp:      time.Now(),
		HeapBytes:      ms.HeapAlloc,
		CPUPercent:     cpuPct,
		Elapsed:        elapsed,
		FilesProcessed: processed,
		Throughput:     throughput,
	}
	if m.cfg.MemoryLimitMB > 0 {
		sample.MemoryUtilization = float64(ms.HeapAlloc) / float64(m.cfg.MemoryLimitMB*1024*1024)
	}
	if m.cfg.CPUThresholdPct > 0 {
		sample.CPUUtilization = cpuPct / m.cfg.CPUThresholdPct
	}
	return sample
}

// evaluateAlerts records at most one alert per type per suppression window.
// Caller holds the mutex.
func (m *Monitor) evaluateAlerts(s ResourceSample) {
	if m.cfg.MemoryLimitMB > 0 && s.MemoryUtilization >= 1.0 {
		m.raise(AlertMemory, Alert{
			Type:      AlertMemory,
			Message:   fmt.Sprintf("heap usage %.1f MB exceeds limit %d MB", float64(s.HeapBytes)/(1024*1024), m.cfg.MemoryLimitMB),
			Timestamp: s.Timestamp,
			Value:     float64(s.HeapBytes) / (1024 * 1024),
			Threshold: float64(m.cfg.MemoryLimitMB),
		})
	}
	if m.cfg.CPUThresholdPct > 0 && s.CPUPercent >= m.cfg.CPUThresholdPct {
		m.raise(AlertCPU, Alert{
			Type:      AlertCPU,
			Message:   fmt.Sprintf("cpu load %.1f%% exceeds threshold %.1f%%", s.CPUPercent, m.cfg.CPUThresholdPct),
			Timestamp: s.Timestamp,
			Value:     s.CPUPercent,
			Threshold: m.cfg.CPUThresholdPct,
		})
	}
	// Throughput alerts only make sense once some work has been recorded.
	if m.cfg.ThroughputTarget > 0 && s.FilesProcessed > 0 && s.Throughput < m.cfg.ThroughputTarget/2 {
		m.raise(AlertThroughput, Alert{
			Type:      AlertThroughput,
			Message:   fmt.Sprintf("throughput %.1f/s is below half the target %.1f/s", s.Throughput, m.cfg.ThroughputTarget),
			Timestamp: s.Timestamp,
			Value:     s.Throughput,
			Threshold: m.cfg.ThroughputTarget,
		})
	}
}

func (m *Monitor) raise(t AlertType, a Alert) {
	m.suppress[t].Do(func() {
		m.alerts = append(m.alerts, a)
		m.logger.Warn("Resource alert",
			zap.String("type", string(t)),
			zap.String("message", a.Message),
		)
	})
}

// buildReport computes session averages, peaks and the efficiency score.
// Caller holds the mutex.
func (m *Monitor) buildReport() Report {
	report := Report{
		SampleCount:    len(m.samples),
		FilesProcessed: m.processed.Load(),
		Alerts:         append([]Alert(nil), m.alerts...),
	}
	if !m.startedAt.IsZero() {
		report.Duration = time.Since(m.startedAt)
	}
	if len(m.samples) == 0 {
		report.EfficiencyScore = 100
		return report
	}

	var sumHeap, sumCPU, sumUtil float64
	for _, s := range m.samples {
		heapMB := float64(s.HeapBytes) / (1024 * 1024)
		sumHeap += heapMB
		sumCPU += s.CPUPercent
		if heapMB > report.PeakHeapMB {
			report.PeakHeapMB = heapMB
		}
		if s.CPUPercent > report.PeakCPUPercent {
			report.PeakCPUPercent = s.CPUPercent
		}
		util := s.MemoryUtilization
		if s.CPUUtilization > util {
			util = s.CPUUtilization
		}
		if util > 1 {
			util = 1
		}
		sumUtil += util
	}
	n := float64(len(m.samples))
	report.AvgHeapMB = sumHeap / n
	report.AvgCPUPercent = sumCPU / n

	last := m.samples[len(m.samples)-1]
	report.AvgThroughput = last.Throughput

	// Efficiency blends headroom (100 - average utilization) with how close
	// throughput came to the configured target.
	headroom := 100 * (1 - sumUtil/n)
	throughputScore := 100.0
	if m.cfg.ThroughputTarget > 0 {
		ratio := report.AvgThroughput / m.cfg.ThroughputTarget
		if ratio > 1 {
			ratio = 1
		}
		throughputScore = ratio * 100
	}
	report.EfficiencyScore = 0.6*headroom + 0.4*throughputScore

	report.Recommendations = m.recommend(report)
	return report
}

// recommend keys free-text advice to the most-breached thresholds.
func (m *Monitor) recommend(r Report) []string {
	counts := map[AlertType]int{}
	for _, a := range r.Alerts {
		counts[a.Type]++
	}

	var recs []string
	if counts[AlertMemory] > 0 {
		recs = append(recs, fmt.Sprintf(
			"Memory limit was breached %d time(s); lower max_concurrent_scanners or raise memory_limit_mb above the observed peak of %.0f MB.",
			counts[AlertMemory], r.PeakHeapMB))
	}
	if counts[AlertCPU] > 0 {
		recs = append(recs, fmt.Sprintf(
			"CPU threshold was breached %d time(s); reduce max_concurrent_scanners to leave headroom for the host.",
			counts[AlertCPU]))
	}
	if counts[AlertThroughput] > 0 {
		recs = append(recs, fmt.Sprintf(
			"Throughput stayed below target (%.1f/s of %.1f/s); check for scanners dominated by I/O or raise parallelism if resources allow.",
			r.AvgThroughput, m.cfg.ThroughputTarget))
	}
	if len(recs) == 0 && m.cfg.ThroughputTarget > 0 && r.AvgThroughput >= m.cfg.ThroughputTarget {
		recs = append(recs, "Resource usage stayed within limits; current settings are a good baseline.")
	}
	return recs
}
