package service

import (
	"errors"
	"fmt"

	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/store"
)

// translateStoreError maps store errors onto the domain taxonomy, keeping the
// original error in the chain. Errors already classified by the domain and
// unexpected errors pass through unchanged.
func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrValidation):
		return err
	case errors.Is(err, store.ErrUnavailable):
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case errors.Is(err, store.ErrInvalidEntity):
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	default:
		return err
	}
}

// conflictField names the field behind a uniqueness violation, for messages.
func conflictField(err error) string {
	switch {
	case errors.Is(err, store.ErrEmailExists):
		return "email"
	case errors.Is(err, store.ErrUsernameExists):
		return "username"
	case errors.Is(err, store.ErrExternalIDExists):
		return "firebase_uid"
	default:
		return ""
	}
}

// ConflictError reports which unique field caused a domain.ErrConflict.
type ConflictError struct {
	Field string
	Err   error
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s already in use: %v", e.Field, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// translateWriteError is translateStoreError for inserts and updates; unique
// violations come back as *ConflictError.
func translateWriteError(err error) error {
	translated := translateStoreError(err)
	if errors.Is(translated, domain.ErrConflict) {
		return &ConflictError{Field: conflictField(err), Err: translated}
	}
	return translated
}
