package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors used across the gateway.
var (
	// ErrValidation is returned when an inbound payload fails shape validation.
	// It is usually wrapped by a *ValidationError carrying the offending fields.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when a path identifier is malformed.
	ErrInvalidID = errors.New("invalid ID")

	// ErrNotFound is returned when a backend reports that the entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDomainRejected is returned when a backend refuses a request for a
	// business reason (duplicate email, insufficient stock, ...).
	ErrDomainRejected = errors.New("request rejected by backend")

	// ErrBackendUnavailable is returned when a backend cannot be reached or
	// fails at the transport level.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrAuthServiceUnavailable is returned when the auth service cannot be reached.
	ErrAuthServiceUnavailable = errors.New("auth service unavailable")

	// ErrUnauthorized is returned when a request carries no usable credentials.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// FieldError describes a single invalid field of an inbound payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates the field errors found while validating a payload.
type ValidationError struct {
	Fields []FieldError
	cause  error
}

// NewValidationError creates a ValidationError for a single field.
// The cause is kept for errors.Is checks; ErrValidation is always matched.
func NewValidationError(field, message string, cause error) *ValidationError {
	return &ValidationError{
		Fields: []FieldError{{Field: field, Message: message}},
		cause:  cause,
	}
}

// Add appends another field error and returns the receiver.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
	return e
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes ErrValidation and the original cause.
func (e *ValidationError) Unwrap() []error {
	if e.cause == nil || e.cause == ErrValidation {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.cause}
}

// AuthReason identifies why the auth gate rejected a request.
type AuthReason string

const (
	// ReasonMissingToken means the Authorization header was absent.
	ReasonMissingToken AuthReason = "MissingToken"
	// ReasonMalformedHeader means the header did not carry a "Bearer " token.
	ReasonMalformedHeader AuthReason = "MalformedHeader"
	// ReasonInvalidOrExpiredToken means the auth service did not accept the token.
	ReasonInvalidOrExpiredToken AuthReason = "InvalidOrExpiredToken"
	// ReasonAuthServiceUnavailable is only used when unreachable auth services
	// are reported separately from invalid tokens.
	ReasonAuthServiceUnavailable AuthReason = "AuthServiceUnavailable"
)

// AuthError is returned by the auth gate when a request is rejected.
type AuthError struct {
	Reason AuthReason
	cause  error
}

// NewAuthError creates an AuthError with the given reason and optional cause.
func NewAuthError(reason AuthReason, cause error) *AuthError {
	return &AuthError{Reason: reason, cause: cause}
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("authentication failed (%s): %v", e.Reason, e.cause)
	}
	return fmt.Sprintf("authentication failed (%s)", e.Reason)
}

// Unwrap exposes ErrUnauthorized and the original cause.
func (e *AuthError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrUnauthorized}
	}
	return []error{ErrUnauthorized, e.cause}
}
