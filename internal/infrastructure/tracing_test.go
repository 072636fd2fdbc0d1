package infrastructure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impulseradar/internal/config"
)

func TestInitializeTracing_None(t *testing.T) {
	tp, err := InitializeTracing(config.TelemetryConfig{TraceExporter: "none"}, nil)
	require.NoError(t, err)
	assert.Nil(t, tp.TracerProvider)

	ctx, span := tp.StartStage(context.Background(), "load")
	assert.False(t, span.IsRecording())
	RecordError(ctx, errors.New("ignored"))
	SetSpanAttributes(ctx, map[string]interface{}{"rows": 1})
	span.End()

	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestInitializeTracing_File(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "traces", "run.json")
	tp, err := InitializeTracing(config.TelemetryConfig{TraceExporter: "file", TraceFile: traceFile}, nil)
	require.NoError(t, err)
	require.NotNil(t, tp.TracerProvider)

	ctx, span := tp.StartStage(context.Background(), "fit")
	assert.True(t, span.IsRecording())
	SetSpanAttributes(ctx, map[string]interface{}{
		"rows":     10,
		"rows64":   int64(10),
		"ratio":    0.5,
		"ok":       true,
		"name":     "fit",
		"features": []string{"Age"},
	})
	RecordError(ctx, errors.New("boom"))
	span.End()

	require.NoError(t, tp.Shutdown(context.Background()))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"Name": "fit"`)
	assert.Contains(t, string(content), "pipeline.stage")
	assert.Contains(t, string(content), "boom")
}

func TestInitializeTracing_Unsupported(t *testing.T) {
	_, err := InitializeTracing(config.TelemetryConfig{TraceExporter: "otlp"}, nil)
	assert.Error(t, err)
}
