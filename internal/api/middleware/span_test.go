package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRouteSpanUsesRoutePattern(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r := chi.NewRouter()
	r.Use(RouteSpan)
	r.Get("/api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, path := range []string{"/api/orders/1", "/api/orders/2", "/nope"} {
		ctx, span := tp.Tracer("test").Start(context.Background(), "GET")
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil).WithContext(ctx))
		span.End()
	}

	ended := recorder.Ended()
	require.Len(t, ended, 3)
	assert.Equal(t, "GET /api/orders/{id}", ended[0].Name())
	assert.Equal(t, "GET /api/orders/{id}", ended[1].Name())
	assert.NotContains(t, ended[2].Name(), "/nope")
	assert.Contains(t, ended[0].Attributes(), attribute.String("http.route", "/api/orders/{id}"))
}

func TestRouteSpanWithoutSpan(t *testing.T) {
	r := chi.NewRouter()
	r.Use(RouteSpan)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
