// Package apperr holds the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kinds. Services wrap these so handlers can map them with errors.Is.
var (
	ErrValidation        = errors.New("validation failed")
	ErrUnavailable       = errors.New("unavailable")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid transition")
)

// ErrInvalidArgument is the name the cart operations use for bad quantities.
var ErrInvalidArgument = ErrValidation

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a user-facing error of a known kind.
type Error struct {
	Kind    error
	Message string
	Fields  []FieldError
	Details map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func New(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return New(ErrValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(ErrNotFound, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return New(ErrForbidden, format, args...)
}

func Unavailable(format string, args ...any) *Error {
	return New(ErrUnavailable, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(ErrConflict, format, args...)
}

func Unauthenticated(format string, args ...any) *Error {
	return New(ErrUnauthenticated, format, args...)
}

// WithFields attaches per-field validation messages.
func (e *Error) WithFields(fields ...FieldError) *Error {
	e.Fields = append(e.Fields, fields...)
	return e
}

// WithDetail attaches extra response data, e.g. the valid next states of an order.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// Status maps an error to its HTTP status code. Unknown errors are 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
