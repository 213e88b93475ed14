// Package mocks provides centralized mock implementations for testing.
//
// Each mock is a struct with one function field per interface method, plus
// default return values used when the function field is nil:
//
//	validator := &mocks.MockTokenValidator{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*domain.Identity, error) {
//	        return &domain.Identity{Subject: "c-1"}, nil
//	    },
//	}
//
// Calls are recorded so tests can assert what reached the dependency.
package mocks
