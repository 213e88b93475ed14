package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/censudex-gateway/internal/platform/authsvc"
)

// MockAuthService implements api.AuthService for testing.
type MockAuthService struct {
	LoginFn    func(ctx context.Context, req authsvc.LoginRequest) (*authsvc.Reply, error)
	ValidateFn func(ctx context.Context, token string) (*authsvc.Reply, error)
	LogoutFn   func(ctx context.Context, token string) (*authsvc.Reply, error)

	// Default values used when the function fields aren't defined
	Reply *authsvc.Reply
	Err   error

	mu    sync.Mutex
	calls []string
}

// Login implements the api.AuthService interface.
func (m *MockAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.Reply, error) {
	m.record("login")
	if m.LoginFn != nil {
		return m.LoginFn(ctx, req)
	}
	return m.Reply, m.Err
}

// Validate implements the api.AuthService interface.
func (m *MockAuthService) Validate(ctx context.Context, token string) (*authsvc.Reply, error) {
	m.record("validate")
	if m.ValidateFn != nil {
		return m.ValidateFn(ctx, token)
	}
	return m.Reply, m.Err
}

// Logout implements the api.AuthService interface.
func (m *MockAuthService) Logout(ctx context.Context, token string) (*authsvc.Reply, error) {
	m.record("logout")
	if m.LogoutFn != nil {
		return m.LogoutFn(ctx, token)
	}
	return m.Reply, m.Err
}

// Calls returns the names of the operations invoked, in order.
func (m *MockAuthService) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockAuthService) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, op)
}
