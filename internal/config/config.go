// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Floor values for timeouts. Validation fails fast on anything below these;
// a sub-second scanner budget is always a misconfiguration.
const (
	MinScannerTimeout = 1 * time.Second
	MinGlobalTimeout  = 5 * time.Second
)

// Config holds the entire application configuration. It is populated once
// per run from compiled defaults, then file overrides, then environment
// variables, with each layer merged field-by-field by viper.
type Config struct {
	Project   ProjectConfig   `mapstructure:"project" yaml:"project"`
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" yaml:"scheduler"`
	Monitor   MonitorConfig   `mapstructure:"monitor" yaml:"monitor"`
	Scanners  ScannersConfig  `mapstructure:"scanners" yaml:"scanners"`
	Sandbox   SandboxConfig   `mapstructure:"sandbox" yaml:"sandbox"`

	// Report gets its marching orders from CLI flags, not the config file.
	Report ReportConfig `mapstructure:"-" yaml:"-"`
}

// ProjectConfig identifies the codebase under assessment.
type ProjectConfig struct {
	Name       string `mapstructure:"name" yaml:"name"`
	TargetPath string `mapstructure:"target_path" yaml:"target_path"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// DatabaseConfig holds the optional results-store connection details.
// An empty URL disables persistence entirely.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// SchedulerConfig tunes the scan scheduler.
type SchedulerConfig struct {
	ParallelExecution     bool          `mapstructure:"parallel_execution" yaml:"parallel_execution"`
	MaxConcurrentScanners int           `mapstructure:"max_concurrent_scanners" yaml:"max_concurrent_scanners"`
	GlobalTimeout         time.Duration `mapstructure:"global_timeout" yaml:"global_timeout"`
	TimeoutPerScanner     time.Duration `mapstructure:"timeout_per_scanner" yaml:"timeout_per_scanner"`
	RetryAttempts         int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	ContinueOnError       bool          `mapstructure:"continue_on_error" yaml:"continue_on_error"`
}

// MonitorConfig tunes the resource monitor.
type MonitorConfig struct {
	Enabled          bool          `mapstructure:"enabled" yaml:"enabled"`
	SampleInterval   time.Duration `mapstructure:"sample_interval" yaml:"sample_interval"`
	MemoryLimitMB    uint64        `mapstructure:"memory_limit_mb" yaml:"memory_limit_mb"`
	CPUThresholdPct  float64       `mapstructure:"cpu_threshold_pct" yaml:"cpu_threshold_pct"`
	ThroughputTarget float64       `mapstructure:"throughput_target" yaml:"throughput_target"`
}

// ScannersConfig selects which scanners run and how confident a detector
// must be before its findings are accepted.
type ScannersConfig struct {
	Enabled []string `mapstructure:"enabled" yaml:"enabled"`

	// MinConfidence is a percentage in [0, 100].
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
}

// SandboxConfig holds the ordered allow/deny rule list for the file gateway.
// Rules are evaluated first match wins; anything unmatched is denied.
type SandboxConfig struct {
	Allow []string `mapstructure:"allow" yaml:"allow"`
	Deny  []string `mapstructure:"deny" yaml:"deny"`
}

// ReportConfig holds settings populated from CLI flags for a specific run.
type ReportConfig struct {
	Output string
	Format string
}

// SetDefaults initializes default values for every configuration parameter.
// The defaults are self-consistent: Validate never fails on them.
func SetDefaults(v *viper.Viper) {
	// -- Project --
	v.SetDefault("project.name", "unnamed-project")
	v.SetDefault("project.target_path", ".")

	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "aegis-cli")
	v.SetDefault("logger.log_file", "aegis.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Scheduler --
	v.SetDefault("scheduler.parallel_execution", true)
	v.SetDefault("scheduler.max_concurrent_scanners", 4)
	v.SetDefault("scheduler.global_timeout", "30m")
	v.SetDefault("scheduler.timeout_per_scanner", "5m")
	v.SetDefault("scheduler.retry_attempts", 1)
	v.SetDefault("scheduler.continue_on_error", true)

	// -- Monitor --
	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.sample_interval", "1s")
	v.SetDefault("monitor.memory_limit_mb", 1024)
	v.SetDefault("monitor.cpu_threshold_pct", 85.0)
	v.SetDefault("monitor.throughput_target", 50.0)

	// -- Scanners --
	v.SetDefault("scanners.enabled", []string{})
	v.SetDefault("scanners.min_confidence", 70.0)

	// -- Sandbox --
	v.SetDefault("sandbox.allow", []string{"**/*"})
	v.SetDefault("sandbox.deny", []string{"**/.git/**", "**/node_modules/**", "**/*.pem", "**/*.key"})
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults are compiled in; failure to unmarshal them is a bug.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper builds and validates a configuration from a viper
// instance that already has defaults, file contents, and env bindings layered.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ResolvePath expands a leading ~ and makes the path absolute, so config
// files and targets behave the same whether given relative or from $HOME.
func ResolvePath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	return abs, nil
}

// Validate checks the configuration for required fields and sane values.
// It fails fast: an invalid plan must surface before any scanning starts.
func (c *Config) Validate() error {
	if c.Project.Name == "" {
		return fmt.Errorf("project.name must not be empty")
	}
	if c.Project.TargetPath == "" {
		return fmt.Errorf("project.target_path must not be empty")
	}
	if c.Scheduler.MaxConcurrentScanners < 1 {
		return fmt.Errorf("scheduler.max_concurrent_scanners must be a positive integer")
	}
	if c.Scheduler.TimeoutPerScanner < MinScannerTimeout {
		return fmt.Errorf("scheduler.timeout_per_scanner must be at least %s", MinScannerTimeout)
	}
	if c.Scheduler.GlobalTimeout < MinGlobalTimeout {
		return fmt.Errorf("scheduler.global_timeout must be at least %s", MinGlobalTimeout)
	}
	if c.Scheduler.RetryAttempts < 0 {
		return fmt.Errorf("scheduler.retry_attempts must not be negative")
	}
	if c.Scanners.MinConfidence < 0 || c.Scanners.MinConfidence > 100 {
		return fmt.Errorf("scanners.min_confidence must be between 0 and 100")
	}
	if c.Monitor.SampleInterval <= 0 {
		return fmt.Errorf("monitor.sample_interval must be a positive duration")
	}
	return nil
}

// Optimize applies the resource tuning pass against the detected host.
func (c *Config) Optimize() {
	c.OptimizeFor(runtime.NumCPU(), detectSystemMemoryMB())
}

// OptimizeFor is the host-parameterized tuning pass, split out so tests can
// pin the core count and memory size.
//
// Concurrency is capped at cores-1 (floor 1) so the host keeps a core for
// itself. A memory ceiling configured above 80% of system memory is pulled
// down to 60%.
func (c *Config) OptimizeFor(cores int, systemMemMB uint64) {
	maxAllowed := cores - 1
	if maxAllowed < 1 {
		maxAllowed = 1
	}
	if c.Scheduler.MaxConcurrentScanners > maxAllowed {
		c.Scheduler.MaxConcurrentScanners = maxAllowed
	}

	if systemMemMB > 0 && c.Monitor.MemoryLimitMB > systemMemMB*80/100 {
		c.Monitor.MemoryLimitMB = systemMemMB * 60 / 100
	}
}

// detectSystemMemoryMB reads total physical memory from /proc/meminfo.
// On hosts where that is unavailable it returns 0, which disables the
// memory-ceiling adjustment rather than guessing.
func detectSystemMemoryMB() uint64 {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0
	}
	return parseMemTotalMB(data)
}

// parseMemTotalMB extracts the MemTotal line (reported in kB) from
// /proc/meminfo contents.
func parseMemTotalMB(data []byte) uint64 {
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return kb / 1024
	}
	return 0
}
