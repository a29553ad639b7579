package postgres

import (
	"database/sql"

	"github.com/usersync/users-service/internal/store"
)

// NewTransactor returns a store.Transactor whose begin and commit failures are
// classified by MapError, so an unreachable database reports ErrUnavailable.
func NewTransactor(db *sql.DB) *store.SQLTransactor {
	return store.NewSQLTransactor(db, MapError)
}
