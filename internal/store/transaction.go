package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/usersync/users-service/internal/platform/logger"
)

// TxFn is a function that executes within a database transaction.
// The transaction is committed if the function returns nil, or rolled back if it returns an error.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// Transactor runs a TxFn inside a transaction. Services depend on it rather
// than on *sql.DB so they can be exercised without a database.
type Transactor interface {
	RunInTx(ctx context.Context, fn TxFn) error
}

// ErrorMapper converts a driver error into one of the store sentinels.
type ErrorMapper func(error) error

// SQLTransactor is the Transactor backed by a database handle.
// MapErr, when set, classifies begin and commit failures so a lost
// connection surfaces as ErrUnavailable like any other query.
type SQLTransactor struct {
	DB     *sql.DB
	MapErr ErrorMapper
}

// NewSQLTransactor returns a Transactor for db. mapErr may be nil.
func NewSQLTransactor(db *sql.DB, mapErr ErrorMapper) *SQLTransactor {
	return &SQLTransactor{DB: db, MapErr: mapErr}
}

// RunInTx implements Transactor.
func (t *SQLTransactor) RunInTx(ctx context.Context, fn TxFn) error {
	return runInTransaction(ctx, t.DB, fn, t.MapErr)
}

// RunInTransaction executes the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// Otherwise, the transaction is committed.
// A panic inside fn rolls the transaction back and is re-raised.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	return runInTransaction(ctx, db, fn, nil)
}

func runInTransaction(ctx context.Context, db *sql.DB, fn TxFn, mapErr ErrorMapper) error {
	log := logger.FromContext(ctx)
	if mapErr == nil {
		mapErr = func(err error) error { return err }
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to begin transaction: %w", mapErr(err))
	}

	defer func() {
		if p := recover(); p != nil {
			txErr := tx.Rollback()
			if txErr != nil {
				log.Error("failed to roll back transaction after panic",
					slog.String("error", txErr.Error()),
					slog.Any("panic", p))
			} else {
				log.Error("rolled back transaction after panic",
					slog.Any("panic", p))
			}
			panic(p)
		}
	}()

	err = fn(ctx, tx)
	if err != nil {
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			log.Error("failed to roll back transaction",
				slog.String("rollback_error", rollbackErr.Error()),
				slog.String("original_error", err.Error()))
			return fmt.Errorf(
				"error rolling back transaction: %v (original error: %w)",
				rollbackErr,
				err,
			)
		}
		log.Debug("rolled back transaction due to error",
			slog.String("error", err.Error()))
		return err
	}

	err = tx.Commit()
	if err != nil {
		log.Error("failed to commit transaction",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to commit transaction: %w", mapErr(err))
	}

	log.Debug("transaction committed successfully")
	return nil
}
