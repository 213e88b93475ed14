package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/censudex-gateway/internal/domain"
)

// MockTokenValidator implements middleware.TokenValidator for testing.
type MockTokenValidator struct {
	// ValidateTokenFn allows test cases to mock the ValidateToken behavior
	ValidateTokenFn func(ctx context.Context, token string) (*domain.Identity, error)

	// Default values used when ValidateTokenFn isn't defined
	Identity *domain.Identity
	Err      error

	mu     sync.Mutex
	tokens []string
}

// ValidateToken implements the middleware.TokenValidator interface.
func (m *MockTokenValidator) ValidateToken(ctx context.Context, token string) (*domain.Identity, error) {
	m.mu.Lock()
	m.tokens = append(m.tokens, token)
	m.mu.Unlock()

	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, token)
	}
	return m.Identity, m.Err
}

// Tokens returns the tokens passed to ValidateToken, in call order.
func (m *MockTokenValidator) Tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tokens...)
}
