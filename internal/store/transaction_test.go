package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction(t *testing.T) {
	fnErr := errors.New("update failed")
	dbErr := errors.New("connection reset")

	tests := []struct {
		name       string
		expect     func(mock sqlmock.Sqlmock)
		fnErr      error
		wantErrIs  []error
		wantErrMsg string
	}{
		{
			name: "commit on success",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
		},
		{
			name: "rollback returns fn error unchanged",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fnErr:     fnErr,
			wantErrIs: []error{fnErr},
		},
		{
			name: "begin failure",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(dbErr)
			},
			wantErrIs:  []error{dbErr},
			wantErrMsg: "failed to begin transaction",
		},
		{
			name: "commit failure",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(dbErr)
			},
			wantErrIs:  []error{dbErr},
			wantErrMsg: "failed to commit transaction",
		},
		{
			name: "rollback failure keeps fn error in chain",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback().WillReturnError(dbErr)
			},
			fnErr:      fnErr,
			wantErrIs:  []error{fnErr},
			wantErrMsg: "connection reset",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tc.expect(mock)

			err = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
				return tc.fnErr
			})

			if len(tc.wantErrIs) == 0 {
				assert.NoError(t, err)
			}
			for _, target := range tc.wantErrIs {
				assert.ErrorIs(t, err, target)
			}
			if tc.wantErrMsg != "" {
				assert.Contains(t, err.Error(), tc.wantErrMsg)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRunInTransaction_PanicRollsBack(t *testing.T) {
	for _, rollbackErr := range []error{nil, errors.New("rollback failed")} {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(rollbackErr)

		assert.PanicsWithValue(t, "boom", func() {
			_ = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
				panic("boom")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	}
}

func TestSQLTransactor_RunInTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users").WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var tr Transactor = NewSQLTransactor(db, nil)
	err = tr.RunInTx(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", int64(7))
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLTransactor_MapsBeginAndCommitErrors(t *testing.T) {
	connErr := errors.New("connection refused")
	mapErr := func(err error) error {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	tests := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
	}{
		{
			name: "begin",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(connErr)
			},
		},
		{
			name: "commit",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(connErr)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()
			tc.expect(mock)

			err = NewSQLTransactor(db, mapErr).RunInTx(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
				return nil
			})
			assert.ErrorIs(t, err, ErrUnavailable)
			assert.ErrorIs(t, err, connErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLTransactor_MapperSkipsFnErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectRollback()

	called := false
	tr := NewSQLTransactor(db, func(err error) error {
		called = true
		return err
	})
	err = tr.RunInTx(context.Background(), func(ctx context.Context, tx *sql.Tx) error {
		return ErrUserNotFound
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.False(t, called, "errors from fn are already classified by the stores")
	assert.NoError(t, mock.ExpectationsWereMet())
}
