package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/censudex-gateway/internal/api/middleware"
	"github.com/phrazzld/censudex-gateway/internal/api/shared"
	"github.com/phrazzld/censudex-gateway/internal/domain"
	"github.com/phrazzld/censudex-gateway/internal/platform/authsvc"
	"github.com/phrazzld/censudex-gateway/internal/platform/logger"
)

// AuthHandler relays login, token validation and logout to the auth service.
// Replies, including error replies, are passed through with their status.
type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth AuthService, logger *slog.Logger) *AuthHandler {
	if auth == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("auth service cannot be nil for AuthHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthHandler")
	}

	return &AuthHandler{
		auth:   auth,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	reply, err := h.auth.Login(r.Context(), authsvc.LoginRequest{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	h.relay(w, r, reply, err)
}

// ValidateToken handles GET /auth/validate-token.
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	token, ok := h.bearer(w, r)
	if !ok {
		return
	}

	reply, err := h.auth.Validate(r.Context(), token)
	h.relay(w, r, reply, err)
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := h.bearer(w, r)
	if !ok {
		return
	}

	reply, err := h.auth.Logout(r.Context(), token)
	h.relay(w, r, reply, err)
}

// bearer extracts the token or answers 401 without calling the auth service.
func (h *AuthHandler) bearer(w http.ResponseWriter, r *http.Request) (string, bool) {
	token, reason, ok := middleware.ParseBearer(r.Header.Get("Authorization"))
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, middleware.MsgMissingToken,
			shared.WithReason(string(reason)))
		return "", false
	}
	return token, true
}

func (h *AuthHandler) relay(w http.ResponseWriter, r *http.Request, reply *authsvc.Reply, err error) {
	if err == nil {
		status := http.StatusOK
		var body []byte
		if reply != nil {
			if reply.StatusCode != 0 {
				status = reply.StatusCode
			}
			body = reply.Body
		}
		shared.RespondWithRawJSON(w, r, status, body)
		return
	}

	var statusErr *authsvc.StatusError
	if errors.As(err, &statusErr) {
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("relaying auth service rejection",
			slog.Int("status", statusErr.StatusCode))
		shared.RespondWithRawJSON(w, r, statusErr.StatusCode, statusErr.Body)
		return
	}

	if errors.Is(err, domain.ErrAuthServiceUnavailable) {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, MsgAuthUnavailable, err)
		return
	}

	HandleAPIError(w, r, err, "")
}
