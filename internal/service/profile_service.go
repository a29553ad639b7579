package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/usersync/users-service/internal/authz"
	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/platform/logger"
	"github.com/usersync/users-service/internal/store"
)

// ProfileService reads, searches, updates and deletes user profiles.
type ProfileService struct {
	users     store.UserStore
	interests store.InterestStore
	tx        store.Transactor
	guard     *authz.Guard
	logger    *slog.Logger
	now       func() time.Time
}

// NewProfileService creates a ProfileService.
func NewProfileService(
	users store.UserStore,
	interests store.InterestStore,
	tx store.Transactor,
	guard *authz.Guard,
	logger *slog.Logger,
) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{
		users:     users,
		interests: interests,
		tx:        tx,
		guard:     guard,
		logger:    logger.With("component", "profile_service"),
		now:       time.Now,
	}
}

// Get returns the full profile of userID.
func (s *ProfileService) Get(ctx context.Context, actorID, userID int64) (*domain.Profile, error) {
	if err := s.guard.Authorize(actorID, authz.OpReadProfile, userID); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return s.withInterests(ctx, user)
}

// GetByUsername returns the full profile of the user with username,
// matched case-insensitively.
func (s *ProfileService) GetByUsername(ctx context.Context, actorID int64, username string) (*domain.Profile, error) {
	// Reads are open to every resolved actor, so the target is not needed yet.
	if err := s.guard.Authorize(actorID, authz.OpReadProfile, 0); err != nil {
		return nil, err
	}
	username = domain.NormalizeUsername(username)
	if username == "" {
		return nil, domain.NewValidationError("username", "is required", nil)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return s.withInterests(ctx, user)
}

// ReadWithCache returns the profile of userID and the fingerprint of the view
// actorID is served. When clientFingerprint matches, notModified is true; the
// profile is still returned so callers may log it, but HTTP callers send no
// body. The fingerprint is computed from the stored row on every call.
func (s *ProfileService) ReadWithCache(
	ctx context.Context,
	actorID, userID int64,
	clientFingerprint string,
) (profile *domain.Profile, fingerprint string, notModified bool, err error) {
	profile, err = s.Get(ctx, actorID, userID)
	if err != nil {
		return nil, "", false, err
	}
	fingerprint, notModified = s.compare(ctx, actorID, profile, clientFingerprint)
	return profile, fingerprint, notModified, nil
}

// ReadByUsernameWithCache is ReadWithCache for a profile addressed by username.
func (s *ProfileService) ReadByUsernameWithCache(
	ctx context.Context,
	actorID int64,
	username string,
	clientFingerprint string,
) (profile *domain.Profile, fingerprint string, notModified bool, err error) {
	profile, err = s.GetByUsername(ctx, actorID, username)
	if err != nil {
		return nil, "", false, err
	}
	fingerprint, notModified = s.compare(ctx, actorID, profile, clientFingerprint)
	return profile, fingerprint, notModified, nil
}

func (s *ProfileService) compare(
	ctx context.Context,
	actorID int64,
	profile *domain.Profile,
	clientFingerprint string,
) (string, bool) {
	fingerprint := domain.FingerprintFor(actorID, profile)
	notModified := domain.FingerprintMatches(clientFingerprint, fingerprint)
	if notModified {
		logger.FromContextOrDefault(ctx, s.logger).Debug("profile not modified",
			"user_id", profile.ID)
	}
	return fingerprint, notModified
}

// List returns one page of all users ordered by ID.
func (s *ProfileService) List(ctx context.Context, actorID int64, offset, limit int) (*domain.SearchResultPage, error) {
	if err := s.guard.Authorize(actorID, authz.OpSearch, 0); err != nil {
		return nil, err
	}
	req, err := domain.NewPageRequest(offset, limit)
	if err != nil {
		return nil, err
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, translateStoreError(err)
	}
	users := []*domain.User{}
	if req.Offset < total {
		users, err = s.users.List(ctx, req.Offset, req.Limit)
		if err != nil {
			return nil, translateStoreError(err)
		}
	}
	return domain.NewSearchResultPage(users, total, req), nil
}

// Search returns one page of users whose username or names contain query,
// case-insensitively, ordered by ID.
func (s *ProfileService) Search(
	ctx context.Context,
	actorID int64,
	query string,
	offset, limit int,
) (*domain.SearchResultPage, error) {
	if err := s.guard.Authorize(actorID, authz.OpSearch, 0); err != nil {
		return nil, err
	}
	q, err := domain.NormalizeQuery(query)
	if err != nil {
		return nil, err
	}
	req, err := domain.NewPageRequest(offset, limit)
	if err != nil {
		return nil, err
	}

	users, total, err := s.users.Search(ctx, q, req.Offset, req.Limit)
	if err != nil {
		return nil, translateStoreError(err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("search completed",
		"query_length", len(q),
		"total", total,
		"returned", len(users))
	return domain.NewSearchResultPage(users, total, req), nil
}

// Update applies a partial update to the actor's own profile and returns the
// resulting profile. An update that changes nothing does not write.
func (s *ProfileService) Update(
	ctx context.Context,
	actorID, userID int64,
	update domain.ProfileUpdate,
) (*domain.Profile, error) {
	if err := s.guard.Authorize(actorID, authz.OpUpdateProfile, userID); err != nil {
		return nil, err
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.users.WithTx(tx)

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		changed, err := user.Apply(update, s.now())
		if err != nil {
			return err
		}
		if changed {
			if err := users.Update(ctx, user); err != nil {
				return err
			}
		}
		updated = user
		return nil
	})
	if err != nil {
		log.Debug("profile update failed", "user_id", userID, "error", err)
		return nil, translateWriteError(err)
	}

	log.Info("profile updated", "user_id", userID)
	return s.withInterests(ctx, updated)
}

// Delete removes the actor's own account and its interest associations.
func (s *ProfileService) Delete(ctx context.Context, actorID, userID int64) error {
	if err := s.guard.Authorize(actorID, authz.OpDeleteAccount, userID); err != nil {
		return err
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.users.WithTx(tx).Delete(ctx, userID)
	})
	if err != nil {
		return translateStoreError(err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("account deleted", "user_id", userID)
	return nil
}

func (s *ProfileService) withInterests(ctx context.Context, user *domain.User) (*domain.Profile, error) {
	interests, err := s.interests.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return &domain.Profile{User: *user, Interests: interests}, nil
}
