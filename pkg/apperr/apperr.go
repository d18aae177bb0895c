// Package apperr defines the error kinds raised by the service layer.
// Each kind maps to one transport status; callers match with errors.Is.
package apperr

import "errors"

// Error kinds.
var (
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid argument")
)

// Error carries a user-facing message together with its kind.
type Error struct {
	kind    error
	message string
}

func (e *Error) Error() string { return e.message }

// Unwrap exposes the kind so errors.Is(err, ErrForbidden) works through wrapping.
func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, message string) *Error {
	if message == "" {
		message = kind.Error()
	}
	return &Error{kind: kind, message: message}
}

func Conflict(message string) error     { return newError(ErrConflict, message) }
func Unauthorized(message string) error { return newError(ErrUnauthorized, message) }
func Forbidden(message string) error    { return newError(ErrForbidden, message) }
func NotFound(message string) error     { return newError(ErrNotFound, message) }
func Invalid(message string) error      { return newError(ErrInvalid, message) }

// Message returns the user-facing message of err if it is an *Error.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.message, true
	}
	return "", false
}
