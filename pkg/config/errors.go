package config

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is by callers and tests.
var (
	ErrConfigNotFound       = errors.New("configuration file not found")
	ErrInvalidYAML          = errors.New("invalid YAML syntax")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidValue         = errors.New("invalid field value")
)

// ValidationError reports a bad value at a YAML key such as relay.max_line_bytes.
type ValidationError struct {
	Section string
	Field   string
	Err     error
}

// NewValidationError returns a ValidationError for section.field.
func NewValidationError(section, field string, err error) *ValidationError {
	return &ValidationError{Section: section, Field: field, Err: err}
}

// Key is the dotted YAML path of the offending field.
func (e *ValidationError) Key() string { return e.Section + "." + e.Field }

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %v", e.Key(), e.Err) }

func (e *ValidationError) Unwrap() error { return e.Err }

// LoadError is returned when contractgen.yaml exists but cannot be read or parsed.
type LoadError struct {
	File string
	Err  error
}

// NewLoadError wraps err with the name of the file being loaded.
func NewLoadError(file string, err error) *LoadError {
	return &LoadError{File: file, Err: err}
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.File, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }
