package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// do sends a request through router and returns the recorder.
func do(t *testing.T, router chi.Router, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the recorder body into a generic map.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

// errorDetails returns the field names listed in a validation error body.
func errorDetails(t *testing.T, body map[string]any) []string {
	t.Helper()

	raw, ok := body["details"].([]any)
	require.True(t, ok, "details missing from %v", body)
	fields := make([]string, 0, len(raw))
	for _, d := range raw {
		entry, ok := d.(map[string]any)
		require.True(t, ok)
		fields = append(fields, entry["field"].(string))
	}
	return fields
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "unexpected status %d (%s): %s", rec.Code, http.StatusText(rec.Code), rec.Body.String())
}
