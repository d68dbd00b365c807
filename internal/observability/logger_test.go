// File: internal/observability/logger_test.go
package observability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/vexred/aegis-cli/internal/config"
)

// memSink collects log output in memory so tests can assert on it.
type memSink struct {
	strings.Builder
}

func (s *memSink) Sync() error { return nil }

var _ zapcore.WriteSyncer = (*memSink)(nil)

func TestInitialize_JSONFormat(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSink{}
	Initialize(config.LoggerConfig{
		Level:       "debug",
		Format:      "json",
		ServiceName: "aegis-test",
	}, sink)

	GetLogger().Info("assessment started")

	line := strings.TrimSpace(sink.String())
	require.NotEmpty(t, line)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "assessment started", entry["msg"])
	assert.Equal(t, "aegis-test", entry["logger"])
}

func TestInitialize_LevelFiltering(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSink{}
	Initialize(config.LoggerConfig{
		Level:       "warn",
		Format:      "json",
		ServiceName: "aegis-test",
	}, sink)

	GetLogger().Info("should be filtered")
	GetLogger().Warn("should appear")

	out := sink.String()
	assert.NotContains(t, out, "should be filtered")
	assert.Contains(t, out, "should appear")
}

func TestInitialize_InvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	sink := &memSink{}
	Initialize(config.LoggerConfig{
		Level:       "definitely-not-a-level",
		Format:      "json",
		ServiceName: "aegis-test",
	}, sink)

	GetLogger().Debug("below fallback level")
	GetLogger().Info("at fallback level")

	out := sink.String()
	assert.NotContains(t, out, "below fallback level")
	assert.Contains(t, out, "at fallback level")
}

func TestInitialize_FileCoreRotatesViaLumberjack(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logFile := filepath.Join(t.TempDir(), "aegis.log")
	Initialize(config.LoggerConfig{
		Level:       "info",
		Format:      "console",
		ServiceName: "aegis-test",
		LogFile:     logFile,
		MaxSize:     1,
	}, &memSink{})

	GetLogger().Info("written to file core")
	Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	// The file core always encodes JSON regardless of the console format.
	assert.Contains(t, string(data), `"msg":"written to file core"`)
}

func TestGetLogger_BeforeInitialization(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	// Must hand back a usable fallback rather than nil.
	logger := GetLogger()
	require.NotNil(t, logger)
	logger.Debug("fallback logger works")
}

func TestInitialize_RunsOnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := &memSink{}
	second := &memSink{}
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "first"}, first)
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "second"}, second)

	GetLogger().Info("one sink only")

	assert.Contains(t, first.String(), "one sink only")
	assert.Empty(t, second.String())
}
