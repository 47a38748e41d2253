package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals an unknown request or knowledge entry id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState signals an operation that is not legal for the
	// request's current lifecycle state.
	ErrInvalidState = errors.New("invalid state for operation")
	// ErrAlreadyTimedOut signals a resolve attempted after the deadline.
	// The forced transition to unresolved has already been committed.
	ErrAlreadyTimedOut = errors.New("request has already timed out and cannot be answered")
	// ErrConflict signals a duplicate question pattern on creation.
	ErrConflict = errors.New("question pattern already exists")
)

// ValidationError marks a missing or malformed caller-supplied field.
// The caller is at fault; retrying without changes will not help.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
