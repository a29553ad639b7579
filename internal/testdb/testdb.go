package testdb

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/stretchr/testify/require"
	"github.com/usersync/users-service/internal/platform/postgres"
)

// TestTimeout bounds connection checks and migrations.
const TestTimeout = 10 * time.Second

var (
	migrateOnce sync.Once
	migrateErr  error
)

// GetTestDatabaseURL returns the integration database URL, or "" when none
// is configured.
func GetTestDatabaseURL() string {
	if url := os.Getenv("USERS_TEST_DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}

// SkipIfNoDatabase skips t when no integration database is configured.
func SkipIfNoDatabase(t *testing.T) {
	t.Helper()
	if GetTestDatabaseURL() == "" {
		t.Skip("no integration database: set USERS_TEST_DATABASE_URL or DATABASE_URL")
	}
}

// Open connects to the integration database, applies migrations once per
// process and closes the pool when t finishes.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	SkipIfNoDatabase(t)

	db, err := sql.Open("pgx", GetTestDatabaseURL())
	require.NoError(t, err, "failed to open database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "failed to ping database")

	migrateOnce.Do(func() {
		quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
		migrateErr = postgres.Migrate(ctx, db, "up", quiet)
	})
	require.NoError(t, migrateErr, "failed to apply migrations")
	return db
}

// WithTx runs fn inside a transaction that is rolled back afterwards, so
// tests leave no rows behind.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("warning: failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// DeleteUsersByExternalID removes rows committed by tests that cannot run in
// a single transaction, such as concurrency tests.
func DeleteUsersByExternalID(t *testing.T, db *sql.DB, externalIDs ...string) {
	t.Helper()
	for _, id := range externalIDs {
		_, err := db.Exec("DELETE FROM users WHERE firebase_uid = $1", id)
		require.NoError(t, err, "failed to clean up user %s", id)
	}
}
