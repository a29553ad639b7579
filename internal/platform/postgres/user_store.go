package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/platform/logger"
	"github.com/usersync/users-service/internal/store"
)

const userColumns = `id, firebase_uid, email, username, first_name, last_name, profile_picture, created_at, updated_at`

// searchPredicate matches $1 against every searchable name column.
const searchPredicate = `
		username ILIKE $1
		OR first_name ILIKE $1
		OR last_name ILIKE $1
		OR (first_name || ' ' || last_name) ILIKE $1`

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db           store.DBTX
	logger       *slog.Logger
	queryTimeout time.Duration
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// A zero queryTimeout leaves the caller's deadline in charge.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, queryTimeout time.Duration, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserStore{
		db:           db,
		logger:       logger.With(slog.String("component", "user_store")),
		queryTimeout: queryTimeout,
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:           tx,
		logger:       s.logger,
		queryTimeout: s.queryTimeout,
	}
}

// Create implements store.UserStore.Create
// It assigns user.ID from the generated key.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO users (firebase_uid, email, username, first_name, last_name, profile_picture, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		user.ExternalID,
		user.Email,
		user.Username,
		user.FirstName,
		user.LastName,
		nullString(user.ProfilePicture),
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Debug("user create rejected by unique constraint",
				slog.String("error", mapped.Error()))
		} else {
			log.Error("failed to create user",
				slog.String("error", err.Error()))
		}
		return store.NewStoreError("user", "create", "insert failed", mapped)
	}

	log.Info("user created successfully",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getOne(ctx, "id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByExternalID implements store.UserStore.GetByExternalID
func (s *PostgresUserStore) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return s.getOne(ctx, "external_id", `SELECT `+userColumns+` FROM users WHERE firebase_uid = $1`, externalID)
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getOne(ctx, "username", `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username)
}

func (s *PostgresUserStore) getOne(ctx context.Context, by, query string, arg any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.String("by", by))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user",
			slog.String("by", by),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "get", "query failed", MapError(err))
	}
	return user, nil
}

// List implements store.UserStore.List
func (s *PostgresUserStore) List(ctx context.Context, offset, limit int) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id ASC LIMIT $1 OFFSET $2`
	return s.queryUsers(ctx, "list", query, limit, offset)
}

// Count implements store.UserStore.Count
func (s *PostgresUserStore) Count(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		log.Error("failed to count users", slog.String("error", err.Error()))
		return 0, store.NewStoreError("user", "count", "query failed", MapError(err))
	}
	return total, nil
}

// Search implements store.UserStore.Search
func (s *PostgresUserStore) Search(
	ctx context.Context,
	query string,
	offset, limit int,
) ([]*domain.User, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	pattern := "%" + EscapeLike(query) + "%"

	countCtx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	var total int
	err := s.db.QueryRowContext(countCtx, `SELECT COUNT(*) FROM users WHERE`+searchPredicate, pattern).Scan(&total)
	if err != nil {
		log.Error("failed to count search matches", slog.String("error", err.Error()))
		return nil, 0, store.NewStoreError("user", "search", "count failed", MapError(err))
	}
	if total == 0 || offset >= total {
		return []*domain.User{}, total, nil
	}

	users, err := s.queryUsers(
		ctx,
		"search",
		`SELECT `+userColumns+` FROM users WHERE`+searchPredicate+` ORDER BY id ASC LIMIT $2 OFFSET $3`,
		pattern, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *PostgresUserStore) queryUsers(ctx context.Context, op, query string, args ...any) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query users",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", op, "query failed", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Error("failed to scan user row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("user", op, "scan failed", MapError(err))
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", op, "iteration failed", MapError(err))
	}

	log.Debug("queried users",
		slog.String("operation", op),
		slog.Int("count", len(users)))
	return users, nil
}

// Update implements store.UserStore.Update
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("user_id", user.ID))
		return err
	}

	query := `
		UPDATE users
		SET email = $1, username = $2, first_name = $3, last_name = $4, profile_picture = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		user.Email,
		user.Username,
		user.FirstName,
		user.LastName,
		nullString(user.ProfilePicture),
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		mapped := MapError(err)
		if !store.IsDuplicateError(mapped) {
			log.Error("failed to update user",
				slog.String("error", err.Error()),
				slog.Int64("user_id", user.ID))
		}
		return store.NewStoreError("user", "update", "update failed", mapped)
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		log.Debug("user not found for update", slog.Int64("user_id", user.ID))
		return err
	}

	log.Info("user updated successfully", slog.Int64("user_id", user.ID))
	return nil
}

// Delete implements store.UserStore.Delete
// Interest associations are removed by the ON DELETE CASCADE foreign key.
func (s *PostgresUserStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.Int64("user_id", id))
		return store.NewStoreError("user", "delete", "delete failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		log.Debug("user not found for delete", slog.Int64("user_id", id))
		return err
	}

	log.Info("user deleted successfully", slog.Int64("user_id", id))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var picture sql.NullString

	err := row.Scan(
		&user.ID,
		&user.ExternalID,
		&user.Email,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&picture,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if picture.Valid {
		user.ProfilePicture = &picture.String
	}
	return &user, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// EscapeLike escapes the LIKE wildcards in s so it matches literally.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func withQueryTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
