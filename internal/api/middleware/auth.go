package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/censudex-gateway/internal/api/shared"
	"github.com/phrazzld/censudex-gateway/internal/domain"
	"github.com/phrazzld/censudex-gateway/internal/platform/logger"
)

// BearerPrefix is the case-sensitive scheme prefix of the Authorization header.
const BearerPrefix = "Bearer "

// User-facing messages of the auth gate.
const (
	MsgMissingToken       = "Token no proporcionado"
	MsgMalformedHeader    = "Formato de token invalido"
	MsgInvalidToken       = "Token invalido o expirado"
	MsgAuthServiceFailure = "Error conectando con Auth Service"
)

// TokenValidator checks a bearer token against the auth service.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.Identity, error)
}

// RejectionObserver is told about every request the gate turns away.
type RejectionObserver interface {
	ObserveAuthRejection(reason string)
}

type identityKey struct{}

// AuthMiddleware is the bearer auth gate in front of protected routes.
type AuthMiddleware struct {
	validator              TokenValidator
	distinguishUnavailable bool
	observer               RejectionObserver
}

// AuthOption configures an AuthMiddleware.
type AuthOption func(*AuthMiddleware)

// WithDistinguishUnavailable answers 503 instead of 401 when the auth
// service cannot be reached.
func WithDistinguishUnavailable(enabled bool) AuthOption {
	return func(m *AuthMiddleware) {
		m.distinguishUnavailable = enabled
	}
}

// WithRejectionObserver reports rejections to o.
func WithRejectionObserver(o RejectionObserver) AuthOption {
	return func(m *AuthMiddleware) {
		m.observer = o
	}
}

// NewAuthMiddleware creates an AuthMiddleware with the given dependencies.
func NewAuthMiddleware(validator TokenValidator, opts ...AuthOption) *AuthMiddleware {
	m := &AuthMiddleware{validator: validator}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ParseBearer extracts the token from an Authorization header value. On
// failure it returns the reason the header was refused.
func ParseBearer(header string) (string, domain.AuthReason, bool) {
	if header == "" {
		return "", domain.ReasonMissingToken, false
	}
	token, ok := strings.CutPrefix(header, BearerPrefix)
	if !ok || strings.TrimSpace(token) == "" {
		return "", domain.ReasonMalformedHeader, false
	}
	return token, "", true
}

// Authenticate validates the bearer token once per request and stores the
// resulting identity in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, reason, ok := ParseBearer(r.Header.Get("Authorization"))
		if !ok {
			m.reject(w, r, reason, domain.NewAuthError(reason, nil))
			return
		}

		identity, err := m.validator.ValidateToken(r.Context(), token)
		if err != nil {
			reason := domain.ReasonInvalidOrExpiredToken
			if m.distinguishUnavailable && errors.Is(err, domain.ErrAuthServiceUnavailable) {
				reason = domain.ReasonAuthServiceUnavailable
			}
			m.reject(w, r, reason, domain.NewAuthError(reason, err))
			return
		}
		if identity == nil {
			identity = &domain.Identity{}
		}

		logger.FromContext(r.Context()).Debug("request authenticated",
			slog.String("subject", identity.Subject),
			slog.String("role", identity.Role))

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, reason domain.AuthReason, err error) {
	if m.observer != nil {
		m.observer.ObserveAuthRejection(string(reason))
	}

	status, message := http.StatusUnauthorized, MsgInvalidToken
	opts := []shared.ResponseOption{shared.WithReason(string(reason))}
	switch reason {
	case domain.ReasonMissingToken:
		message = MsgMissingToken
	case domain.ReasonMalformedHeader:
		message = MsgMalformedHeader
	case domain.ReasonAuthServiceUnavailable:
		status, message = http.StatusServiceUnavailable, MsgAuthServiceFailure
	}
	if errors.Is(err, domain.ErrAuthServiceUnavailable) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the identity stored by the auth gate.
func IdentityFrom(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*domain.Identity)
	return identity, ok && identity != nil
}
