package store

import (
	"context"
	"database/sql"

	"github.com/usersync/users-service/internal/domain"
)

// InterestStore persists the user/interest association and reads the
// interest catalog.
type InterestStore interface {
	// Catalog returns every interest ordered by ID.
	Catalog(ctx context.Context) ([]domain.Interest, error)

	// ListForUser returns the interests held by a user ordered by ID.
	// An unknown user yields an empty slice.
	ListForUser(ctx context.Context, userID int64) ([]domain.Interest, error)

	// Add associates the given interest IDs with a user. Existing pairs are
	// left untouched. It returns the number of newly created pairs and the
	// IDs that do not exist in the catalog, in request order.
	// Returns ErrUserNotFound if the user does not exist.
	Add(ctx context.Context, userID int64, interestIDs []int64) (added int, missing []int64, err error)

	// Remove deletes one association and reports whether it existed.
	Remove(ctx context.Context, userID, interestID int64) (bool, error)

	// WithTx returns a new InterestStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) InterestStore
}
