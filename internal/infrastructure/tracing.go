package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"impulseradar/internal/config"
	"impulseradar/pkg/contracts"
)

const (
	ServiceName = "impulseradar"
	TracerName  = "impulseradar/pipeline"
)

// TracingProvider owns the tracer used for pipeline stage spans
type TracingProvider struct {
	TracerProvider *sdktrace.TracerProvider
	Tracer         trace.Tracer
	Logger         *slog.Logger
	file           *os.File
}

// InitializeTracing sets up OpenTelemetry tracing. The "none" exporter
// yields a no-op tracer so callers can always start spans.
func InitializeTracing(cfg config.TelemetryConfig, logger *slog.Logger) (*TracingProvider, error) {
	if logger == nil {
		logger = GetLogger()
	}
	providers := &TracingProvider{Logger: logger}

	var out io.Writer
	switch cfg.TraceExporter {
	case "", "none":
		providers.Tracer = noop.NewTracerProvider().Tracer(TracerName)
		return providers, nil
	case "stdout":
		out = os.Stdout
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create trace directory: %w", err)
		}
		file, err := os.Create(cfg.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace file: %w", err)
		}
		providers.file = file
		out = file
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(out),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		providers.closeFile()
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(contracts.Version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(TracerName, trace.WithInstrumentationVersion(contracts.Version))
	otel.SetTracerProvider(tp)

	logger.Info("Tracing initialized", slog.String("exporter", cfg.TraceExporter))
	return providers, nil
}

// StartStage starts a span for one pipeline stage
func (p *TracingProvider) StartStage(ctx context.Context, stage string) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, stage, trace.WithAttributes(attribute.String("pipeline.stage", stage)))
}

// Shutdown flushes pending spans and closes the trace file
func (p *TracingProvider) Shutdown(ctx context.Context) error {
	var shutdownErr error
	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("tracer provider shutdown: %w", err)
		}
	}
	if err := p.closeFile(); err != nil && shutdownErr == nil {
		shutdownErr = fmt.Errorf("trace file close: %w", err)
	}
	return shutdownErr
}

func (p *TracingProvider) closeFile() error {
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}
