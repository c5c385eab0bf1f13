// Package canvas defines the domain error taxonomy shared by the engine,
// the services and the HTTP layer. Every rejection leaves prior state
// intact; none of these errors is fatal to an edit session.
package canvas

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error code carried in API envelopes.
type Code string

const (
	CodeValidation       Code = "VALIDATION_FAILED"
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodeNotOwner         Code = "NOT_OWNER"
	CodeNotFound         Code = "NOT_FOUND"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodePersistence      Code = "PERSISTENCE_FAILED"
	CodeElementProtected Code = "ELEMENT_PROTECTED"
)

// ValidationError reports malformed or unsafe input. Always recoverable by
// re-sanitizing.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// AuthorizationError covers both missing authentication and insufficient
// capability. Unauthenticated distinguishes 401 from 403.
type AuthorizationError struct {
	Unauthenticated bool
	Message         string
}

func (e AuthorizationError) Error() string { return e.Message }

func NewUnauthenticatedError(message string) AuthorizationError {
	return AuthorizationError{Unauthenticated: true, Message: message}
}

func NewNotOwnerError(message string) AuthorizationError {
	return AuthorizationError{Message: message}
}

func IsAuthorizationError(err error) bool {
	var ae AuthorizationError
	return errors.As(err, &ae)
}

func IsUnauthenticated(err error) bool {
	var ae AuthorizationError
	return errors.As(err, &ae) && ae.Unauthenticated
}

// RateLimitError reports a throttled sub-resource write. RetryAfterSeconds
// is a hint for the client's cool-down.
type RateLimitError struct {
	Resource          string
	RetryAfterSeconds int
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s", e.Resource)
}

func IsRateLimitError(err error) bool {
	var re RateLimitError
	return errors.As(err, &re)
}

// PersistenceError wraps a storage failure. The save payload stays valid
// and may be retried unchanged because saves are idempotent.
type PersistenceError struct {
	Op  string
	Err error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

func NewPersistenceError(op string, err error) PersistenceError {
	return PersistenceError{Op: op, Err: err}
}

func IsPersistenceError(err error) bool {
	var pe PersistenceError
	return errors.As(err, &pe)
}

// ProtectedElementError reports an attempt to remove an element whose type
// has CanDelete=false. The mutation is refused, never silently ignored.
type ProtectedElementError struct {
	ElementID string
	Type      string
}

func (e ProtectedElementError) Error() string {
	return fmt.Sprintf("element %s of type %s cannot be deleted", e.ElementID, e.Type)
}

func IsProtectedElementError(err error) bool {
	var pe ProtectedElementError
	return errors.As(err, &pe)
}

// CodeFor maps a domain error to its stable machine code.
func CodeFor(err error) Code {
	switch {
	case IsProtectedElementError(err):
		return CodeElementProtected
	case IsValidationError(err):
		return CodeValidation
	case IsUnauthenticated(err):
		return CodeUnauthenticated
	case IsAuthorizationError(err):
		return CodeNotOwner
	case IsRateLimitError(err):
		return CodeRateLimited
	case IsPersistenceError(err):
		return CodePersistence
	default:
		return CodeNotFound
	}
}
