package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/censudex-gateway/internal/domain"
	"github.com/phrazzld/censudex-gateway/internal/platform/logger"
	"github.com/phrazzld/censudex-gateway/internal/redact"
)

// ErrorResponse defines the standard error response structure.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Reason  string              `json:"reason,omitempty"`
	Details []domain.FieldError `json:"details,omitempty"`
	Code    int                 `json:"-"` // Not serialized to JSON, used for logging
	TraceID string              `json:"trace_id,omitempty"`
}

// ResponseOption defines a function to customize response behavior.
type ResponseOption func(*responseOptions)

// responseOptions holds configurable options for error responses.
type responseOptions struct {
	elevateLogLevel bool
	reason          string
	details         []domain.FieldError
}

// WithElevatedLogLevel returns a ResponseOption that raises 4xx errors to WARN level
// instead of the default DEBUG level. Use for important operational issues like
// an unreachable auth service.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// WithReason sets the machine-readable reason of the error body.
func WithReason(reason string) ResponseOption {
	return func(opts *responseOptions) {
		opts.reason = reason
	}
}

// WithDetails attaches per-field validation details to the error body.
func WithDetails(details []domain.FieldError) ResponseOption {
	return func(opts *responseOptions) {
		opts.details = details
	}
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		requestLogger(r).Error("failed to encode JSON response", "error", err)
	}
}

// RespondWithRawJSON writes an already encoded JSON body. A nil body is sent as {},
// except for statuses that carry no body.
func RespondWithRawJSON(w http.ResponseWriter, r *http.Request, status int, body json.RawMessage) {
	if status == http.StatusNoContent || status == http.StatusNotModified {
		w.WriteHeader(status)
		return
	}
	if len(body) == 0 {
		body = json.RawMessage("{}")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		requestLogger(r).Debug("failed to write JSON response", "error", err)
	}
}

// RespondWithError writes a JSON error response with the given status code and message.
// It also sets the TraceID from the request context if available.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, message string, opts ...ResponseOption) {
	responseOpts := applyOptions(opts)
	traceID := GetTraceID(r.Context())

	errorResponse := ErrorResponse{
		Error:   message,
		Reason:  responseOpts.reason,
		Details: responseOpts.details,
		Code:    status,
		TraceID: traceID,
	}

	requestLogger(r).Debug("sending error response",
		"status_code", status,
		"message", message,
		"trace_id", traceID,
		"path", r.URL.Path,
		"method", r.Method)

	RespondWithJSON(w, r, status, errorResponse)
}

// RespondWithErrorAndLog writes a JSON error response and also logs the detailed error.
// The raw error never reaches the client; it is redacted before being logged.
//
// Log level strategy:
// - 5xx errors: Always logged at ERROR level
// - 4xx errors: By default logged at DEBUG level
// - 429 Too Many Requests: Logged at WARN level (operational concern)
// - Other status codes: Logged at DEBUG level
//
// WithElevatedLogLevel raises a 4xx error to WARN.
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userMessage string,
	err error,
	opts ...ResponseOption,
) {
	responseOpts := applyOptions(opts)
	traceID := GetTraceID(r.Context())

	errorResponse := ErrorResponse{
		Error:   userMessage,
		Reason:  responseOpts.reason,
		Details: responseOpts.details,
		Code:    status,
		TraceID: traceID,
	}

	logAttrs := []slog.Attr{
		slog.String("trace_id", traceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("user_message", userMessage),
	}
	if responseOpts.reason != "" {
		logAttrs = append(logAttrs, slog.String("reason", responseOpts.reason))
	}

	if err != nil {
		logAttrs = append(logAttrs,
			slog.String("error", redact.Error(err)),
			slog.String("error_type", fmt.Sprintf("%T", err)))
	}

	logLevel := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		logLevel = slog.LevelError
	} else if status == http.StatusTooManyRequests {
		logLevel = slog.LevelWarn
	} else if responseOpts.elevateLogLevel && status >= http.StatusBadRequest {
		logLevel = slog.LevelWarn
	}

	requestLogger(r).LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithJSON(w, r, status, errorResponse)
}

func applyOptions(opts []ResponseOption) responseOptions {
	responseOpts := responseOptions{}
	for _, opt := range opts {
		opt(&responseOpts)
	}
	return responseOpts
}

func requestLogger(r *http.Request) *slog.Logger {
	if r == nil {
		return slog.Default()
	}
	return logger.FromContextOrDefault(r.Context(), slog.Default())
}
