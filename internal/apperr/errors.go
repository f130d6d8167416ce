package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure.
type Code string

const (
	AccessDenied           Code = "access_denied"
	InvalidTransition      Code = "invalid_transition"
	ConstraintViolation    Code = "constraint_violation"
	NotFound               Code = "not_found"
	ExternalServiceFailure Code = "external_service_failure"
	Internal               Code = "internal"
)

// Error is a classified domain error. Field names the violated
// field or rule for constraint violations.
type Error struct {
	Code    Code
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error with a human-readable message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a classified error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a classification to an underlying error.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// WithField returns a copy of the error naming the violated field.
func (e *Error) WithField(field string) *Error {
	clone := *e
	clone.Field = field
	return &clone
}

// CodeOf extracts the classification of err, or Internal for
// unclassified errors.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return Internal
}

// MessageOf extracts the human-readable message of err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

// HTTPStatus maps a classification to the status code surfaced to
// the actor.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case AccessDenied:
		return http.StatusForbidden
	case InvalidTransition, ConstraintViolation:
		return http.StatusUnprocessableEntity
	case NotFound:
		return http.StatusNotFound
	case ExternalServiceFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err carries the given classification.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
