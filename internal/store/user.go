package store

import (
	"context"
	"database/sql"

	"github.com/usersync/users-service/internal/domain"
)

// UserStore defines the interface for user profile persistence.
type UserStore interface {
	// Create inserts a new user and assigns its ID.
	// Returns ErrExternalIDExists, ErrEmailExists or ErrUsernameExists when the
	// corresponding unique constraint rejects the row.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by internal ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByExternalID retrieves the user mapped to an external identity.
	// Returns ErrUserNotFound if no mapping exists.
	GetByExternalID(ctx context.Context, externalID string) (*domain.User, error)

	// GetByUsername retrieves a user by username, case-insensitively.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// List returns users ordered by ID ascending.
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)

	// Count returns the number of users.
	Count(ctx context.Context) (int, error)

	// Search returns users whose username, first name, last name or full
	// name contains query, case-insensitively, ordered by ID ascending,
	// together with the total number of matches.
	Search(ctx context.Context, query string, offset, limit int) ([]*domain.User, int, error)

	// Update writes the mutable profile fields of an existing user.
	// The external identity, ID and creation time are never modified.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user and its interest associations.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) UserStore
}
