package backend

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/phrazzld/censudex-gateway/internal/domain"
)

var (
	// ErrPoolClosed is returned when acquiring from a pool that has been closed.
	ErrPoolClosed = errors.New("backend pool closed")

	// ErrLeaseReleased is returned when invoking through a released lease.
	ErrLeaseReleased = errors.New("backend lease already released")

	// ErrMalformedReply is returned when a reply cannot be decoded.
	ErrMalformedReply = errors.New("malformed backend reply")
)

// Error is a failed call to a gRPC backend. Code is the gRPC status code and
// Detail the status message reported by the backend or transport.
//
// Transport failures unwrap to domain.ErrBackendUnavailable. Every other
// non-OK status is a rejection by the backend and unwraps to
// domain.ErrDomainRejected, plus domain.ErrNotFound for codes.NotFound.
type Error struct {
	Backend string
	Method  string
	Code    codes.Code
	Detail  string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("%s backend: %s: %s", e.Backend, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s backend %s: %s: %s", e.Backend, e.Method, e.Code, e.Detail)
}

// Unavailable reports whether the failure is a transport-level failure.
func (e *Error) Unavailable() bool {
	return IsUnavailableCode(e.Code)
}

// Unwrap returns the domain sentinels matching the failure class, and the
// underlying cause when there is one.
func (e *Error) Unwrap() []error {
	var errs []error
	switch {
	case e.Unavailable():
		errs = append(errs, domain.ErrBackendUnavailable)
	case e.Code == codes.NotFound:
		errs = append(errs, domain.ErrDomainRejected, domain.ErrNotFound)
	default:
		errs = append(errs, domain.ErrDomainRejected)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// IsUnavailableCode reports whether a gRPC status code is a transport-level
// failure rather than a rejection by the backend's business logic. Unknown and
// Internal are what a reachable backend answers when its handler fails, so
// they count as rejections and keep their message.
func IsUnavailableCode(c codes.Code) bool {
	switch c {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled,
		codes.Unimplemented, codes.DataLoss:
		return true
	default:
		return false
	}
}

// Classify converts an error returned by a gRPC invocation into *Error.
// Errors that carry no gRPC status are treated as unavailable.
func Classify(backendName, method string, err error) error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return err
	}

	st, ok := status.FromError(err)
	if !ok {
		return &Error{
			Backend: backendName,
			Method:  method,
			Code:    codes.Unavailable,
			Detail:  err.Error(),
			cause:   err,
		}
	}
	return &Error{
		Backend: backendName,
		Method:  method,
		Code:    st.Code(),
		Detail:  st.Message(),
	}
}

// Detail returns the backend's human-readable message carried by err, if any.
func Detail(err error) (string, bool) {
	var be *Error
	if errors.As(err, &be) && be.Detail != "" {
		return be.Detail, true
	}
	return "", false
}
