// Package logger provides structured logging functionality for the gateway.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels, and carries a request-scoped logger through context.
package logger
