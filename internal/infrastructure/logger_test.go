package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impulseradar/internal/config"
	"impulseradar/internal/errors"
)

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")
	cfg := config.LoggingConfig{
		Level:    "info",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = os.Stat(logFile)
	require.NoError(t, err, "log file should be created")

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitializeLogger_OnlyOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, first, GetLogger())
}

func TestInitializeLogger_BadPath(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Output:   "both",
		FilePath: filepath.Join(blocker, "app.log"),
	})
	assert.Error(t, err)
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug")

	ctx := WithTraceID(context.Background(), "test-trace-123")
	logger.InfoContext(ctx, "test with trace")
	logger.With("component", "loader").InfoContext(ctx, "derived logger")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "test-trace-123", entry["trace_id"])
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)), "existing trace ID is kept")
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestWithComponentAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info")

	WithError(WithComponent(logger, "writer"), os.ErrPermission).Info("failed")
	assert.Same(t, logger, WithError(logger, nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "writer", entry["component"])
	assert.Equal(t, os.ErrPermission.Error(), entry["error"])
}

func TestWithError_AppErrorAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info")

	appErr := errors.NewParsingError("invalid numeric feature value", nil).WithContext("row", 4)
	errors.InStage(appErr, "features")
	WithError(logger, appErr).Error("Pipeline failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "PARSING", entry["error_type"])
	assert.Equal(t, "features", entry["stage"])
	assert.Equal(t, float64(4), entry["row"])
}

func TestSpanIDInjection(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "traces.json")
	tp, err := InitializeTracing(config.TelemetryConfig{TraceExporter: "file", TraceFile: traceFile}, nil)
	require.NoError(t, err)
	defer tp.Shutdown(context.Background())

	var buf bytes.Buffer
	logger := NewLogger(&buf, "info")

	ctx, span := tp.StartStage(context.Background(), "load")
	logger.InfoContext(ctx, "inside span")
	span.End()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
	assert.NotContains(t, entry, "trace_id")
}
