package core

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnauthenticated    = errors.New("user not authenticated")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewFieldError is a shortcut for a ValidationError on a single field.
func NewFieldError(field, msg string) error {
	return &ValidationError{Err: errors.New(msg), Fields: []FieldError{{Field: field, Error: msg}}}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			msgs := make([]string, 0, len(err.Fields))
			for _, f := range err.Fields {
				msgs = append(msgs, f.Field+": "+f.Error)
			}
			return strings.Join(msgs, "; ")
		}
		return ""
	}
	return err.Err.Error()
}

// ConflictError reports a uniqueness violation (duplicate username, email, assignment, attendance..).
type ConflictError struct {
	Err error
}

func NewConflictError(err error) error {
	return &ConflictError{Err: err}
}

func (err ConflictError) Error() string { return err.Err.Error() }

func (err ConflictError) Unwrap() error { return err.Err }

// NotFoundError is returned when a referenced resource does not exist.
type NotFoundError struct {
	Resource string
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

func (err NotFoundError) Error() string {
	return err.Resource + " not found"
}

// AuthzError is returned when an authenticated identity lacks the role required by an operation.
type AuthzError struct {
	Role    string
	Allowed []string
}

func NewAuthzError(role string, allowed []string) error {
	return &AuthzError{Role: role, Allowed: allowed}
}

func (err AuthzError) Error() string {
	return "access denied: role " + err.Role + " not in [" + strings.Join(err.Allowed, ", ") + "]"
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
