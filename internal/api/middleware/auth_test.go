package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/phrazzld/censudex-gateway/internal/api/shared"
	"github.com/phrazzld/censudex-gateway/internal/domain"
	"github.com/phrazzld/censudex-gateway/internal/mocks"
)

type rejectionRecorder struct {
	mu      sync.Mutex
	reasons []string
}

func (r *rejectionRecorder) ObserveAuthRejection(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

func serve(t *testing.T, m *AuthMiddleware, header string) (*httptest.ResponseRecorder, *domain.Identity) {
	t.Helper()

	var captured *domain.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		require.True(t, ok, "identity must be present on authenticated requests")
		captured = id
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req = req.WithContext(shared.WithTraceID(req.Context(), "trace-abc"))
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	m.Authenticate(next).ServeHTTP(rec, req)
	return rec, captured
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	identity := &domain.Identity{Subject: "c-1", Role: "admin"}
	unreachable := fmt.Errorf("validate_token: %w: dial tcp: connection refused", domain.ErrAuthServiceUnavailable)

	tests := []struct {
		name                   string
		header                 string
		validateErr            error
		distinguishUnavailable bool
		wantStatus             int
		wantMessage            string
		wantReason             domain.AuthReason
		wantTokens             []string
	}{
		{
			name:       "valid token",
			header:     "Bearer good-token",
			wantStatus: http.StatusOK,
			wantTokens: []string{"good-token"},
		},
		{
			name:        "missing header",
			header:      "",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgMissingToken,
			wantReason:  domain.ReasonMissingToken,
		},
		{
			name:        "lowercase scheme",
			header:      "bearer good-token",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgMalformedHeader,
			wantReason:  domain.ReasonMalformedHeader,
		},
		{
			name:        "basic scheme",
			header:      "Basic dXNlcjpwYXNz",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgMalformedHeader,
			wantReason:  domain.ReasonMalformedHeader,
		},
		{
			name:        "empty token after prefix",
			header:      "Bearer ",
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgMalformedHeader,
			wantReason:  domain.ReasonMalformedHeader,
		},
		{
			name:        "rejected token",
			header:      "Bearer expired",
			validateErr: errors.New("auth service responded with status 401"),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgInvalidToken,
			wantReason:  domain.ReasonInvalidOrExpiredToken,
			wantTokens:  []string{"expired"},
		},
		{
			name:        "unreachable auth service collapses to 401",
			header:      "Bearer good-token",
			validateErr: unreachable,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: MsgInvalidToken,
			wantReason:  domain.ReasonInvalidOrExpiredToken,
			wantTokens:  []string{"good-token"},
		},
		{
			name:                   "unreachable auth service reported as 503 when distinguished",
			header:                 "Bearer good-token",
			validateErr:            unreachable,
			distinguishUnavailable: true,
			wantStatus:             http.StatusServiceUnavailable,
			wantMessage:            MsgAuthServiceFailure,
			wantReason:             domain.ReasonAuthServiceUnavailable,
			wantTokens:             []string{"good-token"},
		},
		{
			name:                   "rejected token stays 401 when distinguished",
			header:                 "Bearer expired",
			validateErr:            errors.New("auth service responded with status 401"),
			distinguishUnavailable: true,
			wantStatus:             http.StatusUnauthorized,
			wantMessage:            MsgInvalidToken,
			wantReason:             domain.ReasonInvalidOrExpiredToken,
			wantTokens:             []string{"expired"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := &mocks.MockTokenValidator{Identity: identity, Err: tt.validateErr}
			if tt.validateErr != nil {
				validator.Identity = nil
			}
			observer := &rejectionRecorder{}
			m := NewAuthMiddleware(validator,
				WithDistinguishUnavailable(tt.distinguishUnavailable),
				WithRejectionObserver(observer))

			rec, captured := serve(t, m, tt.header)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantTokens, validator.Tokens())

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, identity, captured)
				assert.Empty(t, observer.reasons)
				return
			}

			assert.Nil(t, captured)
			var body shared.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMessage, body.Error)
			assert.Equal(t, string(tt.wantReason), body.Reason)
			assert.Equal(t, "trace-abc", body.TraceID)
			assert.Equal(t, []string{string(tt.wantReason)}, observer.reasons)
		})
	}
}

func TestAuthMiddlewareNilIdentityIsStillAuthenticated(t *testing.T) {
	m := NewAuthMiddleware(&mocks.MockTokenValidator{})

	rec, captured := serve(t, m, "Bearer tok")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Empty(t, captured.Subject)
}

func TestParseBearer(t *testing.T) {
	tests := []struct {
		header     string
		wantToken  string
		wantReason domain.AuthReason
		wantOK     bool
	}{
		{header: "", wantReason: domain.ReasonMissingToken},
		{header: "Bearer", wantReason: domain.ReasonMalformedHeader},
		{header: "Bearer ", wantReason: domain.ReasonMalformedHeader},
		{header: "Bearer    ", wantReason: domain.ReasonMalformedHeader},
		{header: "BEARER abc", wantReason: domain.ReasonMalformedHeader},
		{header: " Bearer abc", wantReason: domain.ReasonMalformedHeader},
		{header: "Bearer abc", wantToken: "abc", wantOK: true},
		{header: "Bearer a b c", wantToken: "a b c", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.header), func(t *testing.T) {
			token, reason, ok := ParseBearer(tt.header)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantToken, token)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

// Any header accepted by the gate reaches the validator as exactly the text
// after "Bearer ", and anything else never reaches it.
func TestAuthMiddlewareHeaderProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		header := rapid.OneOf(
			rapid.StringMatching(`Bearer [!-~]{1,40}`),
			rapid.StringMatching(`[A-Za-z]{0,8} ?[!-~]{0,20}`),
			rapid.Just(""),
		).Draw(rt, "header")

		validator := &mocks.MockTokenValidator{Identity: &domain.Identity{Subject: "x"}}
		m := NewAuthMiddleware(validator)

		reached := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			w.WriteHeader(http.StatusOK)
		})
		req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		m.Authenticate(next).ServeHTTP(rec, req)

		token, hasPrefix := strings.CutPrefix(header, BearerPrefix)
		wellFormed := hasPrefix && strings.TrimSpace(token) != ""

		if wellFormed {
			if rec.Code != http.StatusOK || !reached {
				rt.Fatalf("header %q: got %d, want 200", header, rec.Code)
			}
			if got := validator.Tokens(); len(got) != 1 || got[0] != token {
				rt.Fatalf("header %q: validator saw %v, want [%q]", header, got, token)
			}
			return
		}
		if rec.Code != http.StatusUnauthorized || reached {
			rt.Fatalf("header %q: got %d, want 401", header, rec.Code)
		}
		if got := validator.Tokens(); len(got) != 0 {
			rt.Fatalf("header %q: validator must not be called, saw %v", header, got)
		}
	})
}

func TestIdentityFrom(t *testing.T) {
	t.Run("context with identity", func(t *testing.T) {
		want := &domain.Identity{Subject: "c-9"}
		got, ok := IdentityFrom(WithIdentity(context.Background(), want))

		assert.True(t, ok)
		assert.Same(t, want, got)
	})

	t.Run("context without identity", func(t *testing.T) {
		got, ok := IdentityFrom(context.Background())

		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("nil identity", func(t *testing.T) {
		_, ok := IdentityFrom(WithIdentity(context.Background(), nil))
		assert.False(t, ok)
	})
}
