package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every component. Callers classify failures with
// errors.Is against these sentinels; the API layer maps them to status codes.
var (
	// ErrUnauthenticated is returned when no actor can be resolved for a request.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when the actor is resolved but may not act on the target.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned when input is malformed. It is always raised
	// before any store access.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when the target row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on a uniqueness violation (username, email,
	// external identity).
	ErrConflict = errors.New("conflict")

	// ErrIdentityConflict signals an inconsistent identity mapping. It is
	// surfaced, never repaired.
	ErrIdentityConflict = errors.New("identity conflict")

	// ErrStoreUnavailable is returned on backend timeouts and connection
	// failures. It is the only retryable class.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidID is wrapped by validation errors for malformed identifiers.
	ErrInvalidID = errors.New("invalid ID")
)

// ValidationError describes which field failed validation and why.
// It matches ErrValidation as well as the optional wrapped cause.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Message)
}

// Unwrap exposes both ErrValidation and the wrapped cause to errors.Is.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil || e.Err == ErrValidation {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// IsRetryable reports whether the caller may retry the failed operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
