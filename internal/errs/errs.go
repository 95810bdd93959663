// Package errs defines the error kinds returned by the blog core.
//
// Every error produced by services wraps exactly one kind, so callers
// classify with errors.Is(err, errs.ErrConflict) and show err.Error()
// to the user.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation error")
)

// Error is a user-facing message tagged with its kind.
type Error struct {
	Kind error
	Msg  string
}

// New returns an Error of the given kind.
func New(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrUserNotFound       = New(ErrNotFound, "user not found")
	ErrPostNotFound       = New(ErrNotFound, "post not found")
	ErrUsernameTaken      = New(ErrConflict, "username already exists")
	ErrEmailTaken         = New(ErrConflict, "email already exists")
	ErrInvalidCredentials = New(ErrUnauthorized, "incorrect email or password")
	ErrInvalidToken       = New(ErrUnauthorized, "could not validate credentials")
	ErrUpdateForbidden    = New(ErrForbidden, "not authorized to update the user")
	ErrDeleteForbidden    = New(ErrForbidden, "not authorized to delete the user")
)

// ValidationError lists the fields that failed their constraints,
// keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

// NewValidation returns a ValidationError for a single field.
func NewValidation(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, e.Fields[name]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// IsClientError reports whether err carries one of the kinds above,
// as opposed to an infrastructure failure.
func IsClientError(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrConflict, ErrUnauthorized, ErrForbidden, ErrValidation} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
