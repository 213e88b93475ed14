package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("price", "must be greater than 0", nil).
		Add("name", "is required")

	if !errors.Is(err, ErrValidation) {
		t.Error("Expected ValidationError to match ErrValidation")
	}
	if len(err.Fields) != 2 {
		t.Fatalf("Expected 2 field errors, got %d", len(err.Fields))
	}
	if !strings.Contains(err.Error(), "price must be greater than 0") {
		t.Errorf("Unexpected message: %s", err.Error())
	}

	withCause := NewValidationError("id", "has invalid format", ErrInvalidID)
	wrapped := fmt.Errorf("parse path: %w", withCause)
	if !errors.Is(wrapped, ErrInvalidID) || !errors.Is(wrapped, ErrValidation) {
		t.Error("Expected wrapped ValidationError to match both sentinels")
	}

	var ve *ValidationError
	if !errors.As(wrapped, &ve) || ve.Fields[0].Field != "id" {
		t.Error("Expected errors.As to recover the ValidationError")
	}
}

func TestAuthError(t *testing.T) {
	err := NewAuthError(ReasonInvalidOrExpiredToken, ErrAuthServiceUnavailable)

	if !errors.Is(err, ErrUnauthorized) {
		t.Error("Expected AuthError to match ErrUnauthorized")
	}
	if !errors.Is(err, ErrAuthServiceUnavailable) {
		t.Error("Expected AuthError to expose its cause")
	}
	if !strings.Contains(err.Error(), string(ReasonInvalidOrExpiredToken)) {
		t.Errorf("Expected reason in message, got %s", err.Error())
	}

	missing := NewAuthError(ReasonMissingToken, nil)
	if errors.Is(missing, ErrAuthServiceUnavailable) {
		t.Error("Did not expect a cause on a missing token error")
	}
}
