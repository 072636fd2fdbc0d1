package infrastructure

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"impulseradar/internal/config"
	"impulseradar/internal/errors"
)

// loggerState is the process-wide logger and the log file it may own
type loggerState struct {
	mu     sync.Mutex
	logger *slog.Logger
	file   *os.File
}

var global loggerState

// InitializeLogger builds the process logger from cfg and installs it as the
// slog default. Later calls return the logger built by the first one.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	global.mu.Lock()
	defer global.mu.Unlock()

	if global.logger != nil {
		return global.logger, nil
	}

	out, file, err := logOutput(cfg)
	if err != nil {
		return nil, err
	}
	global.logger = NewLogger(out, cfg.Level)
	global.file = file
	slog.SetDefault(global.logger)
	return global.logger, nil
}

// GetLogger returns the process logger, or the slog default before
// InitializeLogger has run
func GetLogger() *slog.Logger {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.logger == nil {
		return slog.Default()
	}
	return global.logger
}

// CloseLogFile closes the log file opened by InitializeLogger, if any
func CloseLogFile() error {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.file == nil {
		return nil
	}
	err := global.file.Close()
	global.file = nil
	return err
}

// ResetLoggerForTesting forgets the process logger so tests can initialize
// it again.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	global.mu.Lock()
	global.logger = nil
	global.mu.Unlock()
}

// logOutput resolves the configured destination. The returned file is nil
// for console output.
func logOutput(cfg config.LoggingConfig) (io.Writer, *os.File, error) {
	mode := strings.ToLower(cfg.Output)
	if mode != "file" && mode != "both" {
		return os.Stdout, nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
	}
	if mode == "both" {
		return io.MultiWriter(os.Stdout, file), file, nil
	}
	return file, file, nil
}

// NewLogger builds a JSON logger writing to w. Records logged with a context
// carry the run trace ID and, inside a recording span, its span ID.
func NewLogger(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLogLevel(level),
	})
	return slog.New(&contextHandler{Handler: handler})
}

// contextHandler copies run and span identifiers from the context into
// each record
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetTraceID(ctx); id != "" {
		r.AddAttrs(slog.String("trace_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(slog.String("span_id", sc.SpanID().String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}

func parseLogLevel(level string) slog.Level {
	var l slog.Level
	switch s := strings.ToLower(strings.TrimSpace(level)); s {
	case "warning":
		return slog.LevelWarn
	default:
		if err := l.UnmarshalText([]byte(s)); err != nil {
			return slog.LevelInfo
		}
		return l
	}
}

// WithComponent tags logger with the emitting component. A nil logger
// falls back to the process logger.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}

// WithError attaches err to logger; a nil error returns logger unchanged
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	args := []any{slog.String("error", err.Error())}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		for _, attr := range appErr.LogAttrs() {
			args = append(args, attr)
		}
	}
	return logger.With(args...)
}
