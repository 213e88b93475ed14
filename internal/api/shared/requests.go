package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/censudex-gateway/internal/domain"
)

// Global validator instance for reuse
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names so error details match the payload
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	return nil
}

// ValidateRequest validates the given struct using the validator package.
func ValidateRequest(v interface{}) error {
	// Check if the object implements the Validate interface
	if validator, ok := v.(interface{ Validate() error }); ok {
		return validator.Validate()
	}

	// Otherwise, use the struct validator
	return validate.Struct(v)
}

// DecodeAndValidate decodes the request body into v and validates it.
// Every failure is returned as a *domain.ValidationError.
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := DecodeJSON(r, v); err != nil {
		return domain.NewValidationError("body", decodeMessage(err), err)
	}
	if err := ValidateRequest(v); err != nil {
		return ToValidationError(err)
	}
	return nil
}

// ToValidationError converts validator failures into a *domain.ValidationError
// with one detail per failing field. Other errors are wrapped as a single
// body-level failure.
func ToValidationError(err error) error {
	var already *domain.ValidationError
	if errors.As(err, &already) {
		return already
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("body", err.Error(), err)
	}

	var out *domain.ValidationError
	for _, fe := range fieldErrs {
		field := fieldPath(fe)
		if out == nil {
			out = domain.NewValidationError(field, fieldMessage(fe), err)
			continue
		}
		out.Add(field, fieldMessage(fe))
	}
	return out
}

// fieldPath drops the root struct name from the namespace, so
// CreateOrderRequest.items_to_create[0].quantity becomes
// items_to_create[0].quantity.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s character(s) long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s character(s) long", fe.Param())
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func decodeMessage(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, ErrEmptyBody):
		return "request body is required"
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return fmt.Sprintf("field %s must be of type %s", typeErr.Field, typeErr.Type)
		}
		return fmt.Sprintf("must be of type %s", typeErr.Type)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return "malformed JSON"
	default:
		return "invalid request body"
	}
}
