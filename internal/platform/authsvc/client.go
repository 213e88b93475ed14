// Package authsvc is the HTTP client for the auth service.
//
// The gateway never interprets credentials itself. It forwards them to the
// auth service and relays or inspects what comes back.
package authsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/phrazzld/censudex-gateway/internal/domain"
)

const (
	// RequestIDHeader is forwarded to the auth service on every call.
	RequestIDHeader = "X-Request-ID"

	maxBodyBytes = 1 << 20
)

// Outcomes reported to the Observer.
const (
	OutcomeOK          = "ok"
	OutcomeRejected    = "rejected"
	OutcomeUnavailable = "unavailable"
)

// Observer receives one observation per auth service call.
type Observer interface {
	ObserveAuthCall(operation, outcome string, elapsed time.Duration)
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport defaults to an otelhttp-instrumented http.DefaultTransport.
	Transport http.RoundTripper
	RequestID func(ctx context.Context) string
	Observer  Observer
	Logger    *slog.Logger
}

// LoginRequest holds login credentials.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Reply is a successful auth service response, kept verbatim so it can be
// relayed to the caller.
type Reply struct {
	StatusCode int
	Body       json.RawMessage
}

// StatusError is returned when the auth service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       json.RawMessage
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("auth service responded with status %d", e.StatusCode)
}

// Client talks to the auth service.
type Client struct {
	baseURL   string
	http      *http.Client
	requestID func(ctx context.Context) string
	observer  Observer
	logger    *slog.Logger
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("auth service URL cannot be empty")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("auth service timeout must be positive, got %s", cfg.Timeout)
	}

	transport := cfg.Transport
	if transport == nil {
		transport = otelhttp.NewTransport(http.DefaultTransport)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      &http.Client{Timeout: cfg.Timeout, Transport: transport},
		requestID: cfg.RequestID,
		observer:  cfg.Observer,
		logger:    logger.With(slog.String("component", "auth_client")),
	}, nil
}

// Login forwards credentials to POST {base}/login.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Reply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}
	return c.do(ctx, "login", http.MethodPost, "/login", "", body)
}

// Validate forwards token to GET {base}/validate-token and returns the raw reply.
func (c *Client) Validate(ctx context.Context, token string) (*Reply, error) {
	return c.do(ctx, "validate_token", http.MethodGet, "/validate-token", token, nil)
}

// ValidateToken checks token and returns the identity it belongs to.
func (c *Client) ValidateToken(ctx context.Context, token string) (*domain.Identity, error) {
	reply, err := c.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	claims := map[string]any{}
	if len(reply.Body) > 0 {
		if err := json.Unmarshal(reply.Body, &claims); err != nil {
			// a non-object body from a 2xx reply still means the token is valid
			c.logger.DebugContext(ctx, "validate-token reply is not a JSON object", slog.Any("error", err))
			claims = map[string]any{}
		}
	}
	return domain.IdentityFromClaims(claims), nil
}

// Logout forwards token to POST {base}/logout.
func (c *Client) Logout(ctx context.Context, token string) (*Reply, error) {
	return c.do(ctx, "logout", http.MethodPost, "/logout", token, nil)
}

func (c *Client) do(ctx context.Context, operation, method, path, token string, body []byte) (*Reply, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.requestID != nil {
		if id := c.requestID(ctx); id != "" {
			req.Header.Set(RequestIDHeader, id)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(operation, OutcomeUnavailable, start)
		c.logger.WarnContext(ctx, "auth service unreachable",
			slog.String("operation", operation),
			slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w: %w", operation, domain.ErrAuthServiceUnavailable, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.DebugContext(ctx, "failed to close auth service response body", slog.Any("error", cerr))
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.observe(operation, OutcomeUnavailable, start)
		return nil, fmt.Errorf("%s: %w: reading body: %w", operation, domain.ErrAuthServiceUnavailable, err)
	}
	payload := asJSON(raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(operation, OutcomeRejected, start)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: payload}
	}

	c.observe(operation, OutcomeOK, start)
	return &Reply{StatusCode: resp.StatusCode, Body: payload}, nil
}

func (c *Client) observe(operation, outcome string, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveAuthCall(operation, outcome, time.Since(start))
	}
}

// asJSON returns raw when it is valid JSON, and otherwise wraps the text as
// {"detail": "<text>"}. An empty body stays empty.
func asJSON(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	wrapped, err := json.Marshal(map[string]string{"detail": string(trimmed)})
	if err != nil {
		return nil
	}
	return wrapped
}
