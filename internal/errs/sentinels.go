// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested event does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates missing or malformed input the user can correct.
	ErrValidation = errors.New("validation")

	// ErrInternal indicates a store or transport failure; details stay server-side.
	ErrInternal = errors.New("internal")
)

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Unwrap() error { return ErrValidation }
