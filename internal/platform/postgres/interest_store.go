package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/platform/logger"
	"github.com/usersync/users-service/internal/store"
)

// addInterestsQuery inserts every known requested interest in one statement
// and reports, per known id, whether a new pair was created.
const addInterestsQuery = `
	WITH requested AS (
		SELECT DISTINCT unnest($2::bigint[]) AS id
	), known AS (
		SELECT i.id FROM interests i JOIN requested r ON r.id = i.id
	), inserted AS (
		INSERT INTO user_interests (user_id, interest_id)
		SELECT $1, id FROM known
		ON CONFLICT (user_id, interest_id) DO NOTHING
		RETURNING interest_id
	)
	SELECT k.id, ins.interest_id IS NOT NULL
	FROM known k
	LEFT JOIN inserted ins ON ins.interest_id = k.id
`

// PostgresInterestStore implements store.InterestStore.
type PostgresInterestStore struct {
	db           store.DBTX
	logger       *slog.Logger
	queryTimeout time.Duration
}

// NewPostgresInterestStore creates a PostgreSQL-backed InterestStore.
func NewPostgresInterestStore(db store.DBTX, queryTimeout time.Duration, logger *slog.Logger) *PostgresInterestStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresInterestStore{
		db:           db,
		logger:       logger.With(slog.String("component", "interest_store")),
		queryTimeout: queryTimeout,
	}
}

var _ store.InterestStore = (*PostgresInterestStore)(nil)

// WithTx implements store.InterestStore.WithTx
func (s *PostgresInterestStore) WithTx(tx *sql.Tx) store.InterestStore {
	return &PostgresInterestStore{
		db:           tx,
		logger:       s.logger,
		queryTimeout: s.queryTimeout,
	}
}

// Catalog implements store.InterestStore.Catalog
func (s *PostgresInterestStore) Catalog(ctx context.Context) ([]domain.Interest, error) {
	return s.queryInterests(ctx, "catalog", `SELECT id, name FROM interests ORDER BY id ASC`)
}

// ListForUser implements store.InterestStore.ListForUser
func (s *PostgresInterestStore) ListForUser(ctx context.Context, userID int64) ([]domain.Interest, error) {
	query := `
		SELECT i.id, i.name
		FROM user_interests ui
		JOIN interests i ON i.id = ui.interest_id
		WHERE ui.user_id = $1
		ORDER BY i.id ASC
	`
	return s.queryInterests(ctx, "list", query, userID)
}

func (s *PostgresInterestStore) queryInterests(
	ctx context.Context,
	op, query string,
	args ...any,
) ([]domain.Interest, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query interests",
			slog.String("operation", op),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("interest", op, "query failed", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	interests := []domain.Interest{}
	for rows.Next() {
		var in domain.Interest
		if err := rows.Scan(&in.ID, &in.Name); err != nil {
			log.Error("failed to scan interest row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("interest", op, "scan failed", MapError(err))
		}
		interests = append(interests, in)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("interest", op, "iteration failed", MapError(err))
	}
	return interests, nil
}

// Add implements store.InterestStore.Add
func (s *PostgresInterestStore) Add(
	ctx context.Context,
	userID int64,
	interestIDs []int64,
) (int, []int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, addInterestsQuery, userID, interestIDs)
	if err != nil {
		mapped := MapError(err)
		if store.IsNotFoundError(mapped) {
			log.Debug("interest add for unknown user", slog.Int64("user_id", userID))
		} else {
			log.Error("failed to add interests",
				slog.String("error", err.Error()),
				slog.Int64("user_id", userID))
		}
		return 0, nil, store.NewStoreError("interest", "add", "insert failed", mapped)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	known := make(map[int64]struct{}, len(interestIDs))
	added := 0
	for rows.Next() {
		var id int64
		var inserted bool
		if err := rows.Scan(&id, &inserted); err != nil {
			return 0, nil, store.NewStoreError("interest", "add", "scan failed", MapError(err))
		}
		known[id] = struct{}{}
		if inserted {
			added++
		}
	}
	if err := rows.Err(); err != nil {
		mapped := MapError(err)
		if !store.IsNotFoundError(mapped) {
			log.Error("failed to add interests",
				slog.String("error", err.Error()),
				slog.Int64("user_id", userID))
		}
		return 0, nil, store.NewStoreError("interest", "add", "insert failed", mapped)
	}

	missing := []int64{}
	for _, id := range interestIDs {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}

	log.Info("interests added",
		slog.Int64("user_id", userID),
		slog.Int("added", added),
		slog.Int("missing", len(missing)))
	return added, missing, nil
}

// Remove implements store.InterestStore.Remove
func (s *PostgresInterestStore) Remove(ctx context.Context, userID, interestID int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	result, err := s.db.ExecContext(
		ctx,
		`DELETE FROM user_interests WHERE user_id = $1 AND interest_id = $2`,
		userID, interestID,
	)
	if err != nil {
		log.Error("failed to remove interest",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID),
			slog.Int64("interest_id", interestID))
		return false, store.NewStoreError("interest", "remove", "delete failed", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrNotFound); err != nil {
		if store.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}

	log.Info("interest removed",
		slog.Int64("user_id", userID),
		slog.Int64("interest_id", interestID))
	return true, nil
}
