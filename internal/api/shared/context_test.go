package shared

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx), "Expected empty trace ID in original context")

	ctxWithTrace := SetTraceID(ctx)

	traceID := GetTraceID(ctxWithTrace)
	require.NotEmpty(t, traceID)
	_, err := uuid.Parse(traceID)
	assert.NoError(t, err, "Expected trace ID to be a UUID")
	assert.Empty(t, GetTraceID(ctx), "Expected original context to remain unchanged")
}

func TestWithTraceID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		wantSame bool
	}{
		{name: "upstream id is kept", id: "req-42", wantSame: true},
		{name: "empty id is generated", id: "", wantSame: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := GetTraceID(WithTraceID(context.Background(), tc.id))

			require.NotEmpty(t, got)
			if tc.wantSame {
				assert.Equal(t, tc.id, got)
			}
		})
	}
}

func TestGetTraceIDWithInvalidContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIDKey, 123) // Not a string
	assert.Empty(t, GetTraceID(ctx), "Expected empty trace ID when context has invalid type")

	//nolint:staticcheck // nil context is handled explicitly
	assert.Empty(t, GetTraceID(nil))
}

func TestNewTraceIDUniqueness(t *testing.T) {
	const iterations = 1000
	seen := make(map[string]bool, iterations)

	for i := 0; i < iterations; i++ {
		id := NewTraceID()
		require.False(t, seen[id], "duplicate trace ID generated: %s", id)
		seen[id] = true
	}
}
