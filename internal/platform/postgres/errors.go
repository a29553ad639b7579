package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/usersync/users-service/internal/store"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
	queryCanceledCode       = "57014"
	adminShutdownCode       = "57P01"
	cannotConnectNowCode    = "57P03"
	tooManyConnectionsCode  = "53300"

	// connectionExceptionClass is SQLSTATE class 08.
	connectionExceptionClass = "08"
)

// Constraint names from the users migrations.
const (
	usersExternalIDConstraint   = "users_firebase_uid_key"
	usersEmailConstraint        = "users_email_lower_key"
	usersUsernameConstraint     = "users_username_lower_key"
	userInterestsUserConstraint = "user_interests_user_id_fkey"
)

// MapError maps a database error to a store error.
// It wraps the original error to preserve context.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	if IsUnavailable(err) {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return mapUniqueConstraint(pgErr.ConstraintName, err)
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == userInterestsUserConstraint {
				return fmt.Errorf("%w: %w", store.ErrUserNotFound, err)
			}
			return fmt.Errorf(
				"%w: foreign key violation (%s): %w",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
				err,
			)
		case checkViolationCode:
			return fmt.Errorf(
				"%w: check constraint violation (%s): %w",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
				err,
			)
		case notNullViolationCode:
			return fmt.Errorf(
				"%w: not null violation (%s): %w",
				store.ErrInvalidEntity,
				pgErr.ColumnName,
				err,
			)
		}
	}

	return err
}

func mapUniqueConstraint(constraint string, err error) error {
	switch constraint {
	case usersExternalIDConstraint:
		return fmt.Errorf("%w: %w", store.ErrExternalIDExists, err)
	case usersEmailConstraint:
		return fmt.Errorf("%w: %w", store.ErrEmailExists, err)
	case usersUsernameConstraint:
		return fmt.Errorf("%w: %w", store.ErrUsernameExists, err)
	default:
		return fmt.Errorf("%w: duplicate value for constraint %s: %w", store.ErrDuplicate, constraint, err)
	}
}

// IsUnavailable reports whether err means the database could not serve the
// request: deadline expiry, cancelled statements, lost or refused connections.
func IsUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case queryCanceledCode, adminShutdownCode, cannotConnectNowCode, tooManyConnectionsCode:
			return true
		}
		return strings.HasPrefix(pgErr.Code, connectionExceptionClass)
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// CheckRowsAffected returns notFound when an UPDATE or DELETE touched no rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}

	return nil
}
