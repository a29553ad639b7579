package postgres

import (
	"context"
	"database/sql/driver"
	"reflect"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/store"
)

// int64s matches an array argument element-wise.
type int64s []int64

func (a int64s) Match(v driver.Value) bool {
	got, ok := v.([]int64)
	return ok && reflect.DeepEqual(got, []int64(a))
}

func TestPostgresInterestStore_Add(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresInterestStore(db, 0, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_interests")).
		WithArgs(int64(3), int64s{1, 2, 99}).
		WillReturnRows(sqlmock.NewRows([]string{"id", "added"}).
			AddRow(int64(1), true).
			AddRow(int64(2), false))

	added, missing, err := s.Add(context.Background(), 3, []int64{1, 2, 99})
	require.NoError(t, err)
	assert.Equal(t, 1, added, "existing pair is not counted")
	assert.Equal(t, []int64{99}, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInterestStore_AddAllUnknown(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresInterestStore(db, 0, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_interests")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "added"}))

	added, missing, err := s.Add(context.Background(), 3, []int64{50, 51})
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, []int64{50, 51}, missing)
}

func TestPostgresInterestStore_AddUnknownUser(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresInterestStore(db, 0, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_interests")).
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: userInterestsUserConstraint})

	_, _, err := s.Add(context.Background(), 404, []int64{1})
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestPostgresInterestStore_Remove(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresInterestStore(db, 0, discardLogger())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_interests")).
		WithArgs(int64(3), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	removed, err := s.Remove(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.True(t, removed)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_interests")).
		WithArgs(int64(3), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	removed, err = s.Remove(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.False(t, removed, "removing a non-held interest is not an error")
}

func TestPostgresInterestStore_ListForUser(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresInterestStore(db, 0, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE ui.user_id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), "art").
			AddRow(int64(4), "fitness"))

	got, err := s.ListForUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []domain.Interest{{ID: 1, Name: "art"}, {ID: 4, Name: "fitness"}}, got)
}

func TestPostgresInterestStore_CatalogEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewPostgresInterestStore(db, 0, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM interests")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	got, err := s.Catalog(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
