// Package ctxutil carries request-scoped values: the trace id used by the
// logger and the authenticated caller extracted by the auth middleware.
package ctxutil

import (
	"context"

	"github.com/google/uuid"

	"github.com/jobhive/jobhive/internal/domain"
)

// TraceIDKey is the log field name for trace ids.
const TraceIDKey = "trace_id"

type contextKey string

const (
	traceIDKey contextKey = "trace_id"
	callerKey  contextKey = "caller"
)

// WithTraceID returns a context carrying the given trace id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// GetTraceID gets the trace id from the context, or "" when absent.
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// EnsureTraceID ensures that a trace id exists in the context.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if id := GetTraceID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.New().String()
	return WithTraceID(ctx, id), id
}

// WithCaller returns a context carrying the authenticated caller. Services
// still take the caller as an explicit parameter; the context copy exists
// only for middleware and logging.
func WithCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// GetCaller gets the authenticated caller from the context.
func GetCaller(ctx context.Context) (domain.Caller, bool) {
	c, ok := ctx.Value(callerKey).(domain.Caller)
	return c, ok
}
