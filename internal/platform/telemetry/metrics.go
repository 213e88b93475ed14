package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gateway"

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	backendCallsTotal   *prometheus.CounterVec
	backendCallDuration *prometheus.HistogramVec

	authCallsTotal   *prometheus.CounterVec
	authCallDuration *prometheus.HistogramVec

	authRejections *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates the collectors on a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status_code"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests currently being served",
			},
		),

		backendCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_calls_total",
				Help:      "Total number of gRPC backend calls by backend, method and status code",
			},
			[]string{"backend", "method", "code"},
		),

		backendCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_call_duration_seconds",
				Help:      "gRPC backend call latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"backend", "method"},
		),

		authCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_service_calls_total",
				Help:      "Total number of auth service calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),

		authCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "auth_service_call_duration_seconds",
				Help:      "Auth service call latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		authRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_gate_rejections_total",
				Help:      "Total number of requests rejected by the auth gate by reason",
			},
			[]string{"reason"},
		),

		registry: registry,
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpInFlight,
		m.backendCallsTotal,
		m.backendCallDuration,
		m.authCallsTotal,
		m.authCallDuration,
		m.authRejections,
	)

	return m
}

// ObserveHTTPRequest records a served HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route string, statusCode int, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// TrackInFlight increments the in-flight gauge and returns the matching decrement.
func (m *Metrics) TrackInFlight() func() {
	m.httpInFlight.Inc()
	return m.httpInFlight.Dec
}

// ObserveBackendCall records a gRPC backend call.
func (m *Metrics) ObserveBackendCall(backend, method, code string, elapsed time.Duration) {
	m.backendCallsTotal.WithLabelValues(backend, method, code).Inc()
	m.backendCallDuration.WithLabelValues(backend, method).Observe(elapsed.Seconds())
}

// ObserveAuthCall records an auth service call.
func (m *Metrics) ObserveAuthCall(operation, outcome string, elapsed time.Duration) {
	m.authCallsTotal.WithLabelValues(operation, outcome).Inc()
	m.authCallDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveAuthRejection records a request turned away by the auth gate.
func (m *Metrics) ObserveAuthRejection(reason string) {
	m.authRejections.WithLabelValues(reason).Inc()
}

// Handler returns the Prometheus exposition handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
