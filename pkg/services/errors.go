package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no contract matches a lookup.
	ErrNotFound = errors.New("contract not found")

	// ErrInvalidInput is matched by every ValidationError.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError rejects a lookup argument before any query runs.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError returns a ValidationError for the given request field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Message)
}

// Is reports ErrInvalidInput so callers need no type assertion.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }
