package shared

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the type of context keys owned by this package.
type ContextKey string

// TraceIDKey is the key for the trace ID in the request context.
const TraceIDKey ContextKey = "traceID"

// SetTraceID adds a freshly generated trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, NewTraceID())
}

// WithTraceID adds the given trace ID to the context. An empty id is replaced
// by a generated one so every request can be correlated.
func WithTraceID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = NewTraceID()
	}
	return context.WithValue(ctx, TraceIDKey, id)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// NewTraceID returns a random UUIDv4 string.
func NewTraceID() string {
	return uuid.NewString()
}
