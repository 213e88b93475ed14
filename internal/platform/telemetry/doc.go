// Package telemetry sets up tracing and Prometheus metrics for the gateway.
//
// SetupProvider installs the global OpenTelemetry tracer provider when an
// OTLP endpoint is configured. Metrics owns a private Prometheus registry and
// implements the observer interfaces of the backend pools, the auth client
// and the HTTP metrics middleware.
package telemetry
