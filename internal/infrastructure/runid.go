package infrastructure

import (
	"context"

	"github.com/google/uuid"
)

type runIDKey struct{}

// WithTraceID returns a context carrying the run trace ID id
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// GetTraceID returns the run trace ID carried by ctx, or "" when none is set
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// EnsureTraceID returns ctx unchanged when it already carries a run trace
// ID. Otherwise it attaches a new random UUID.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) != "" {
		return ctx
	}
	return WithTraceID(ctx, uuid.NewString())
}
