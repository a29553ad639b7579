package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/platform/logger"
	"github.com/usersync/users-service/internal/store"
)

// IdentityResolver is the only writer of the external identity to user
// mapping. It creates a user on first sight of an identity and returns the
// existing user afterwards.
type IdentityResolver struct {
	users  store.UserStore
	logger *slog.Logger
	now    func() time.Time
}

// NewIdentityResolver creates an IdentityResolver.
func NewIdentityResolver(users store.UserStore, logger *slog.Logger) *IdentityResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &IdentityResolver{
		users:  users,
		logger: logger.With("component", "identity_resolver"),
		now:    time.Now,
	}
}

// Lookup returns the user mapped to externalID without creating one.
// It returns domain.ErrNotFound when the identity has never been seen.
func (r *IdentityResolver) Lookup(ctx context.Context, externalID string) (*domain.User, error) {
	externalID, err := normalizeExternalID(externalID)
	if err != nil {
		return nil, err
	}

	user, err := r.lookup(ctx, externalID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return user, nil
}

// ResolveOrCreate returns the user mapped to externalID, creating it from
// seed when the identity is new. The boolean reports whether this call
// created the user. The seed is ignored for existing users.
//
// Concurrent first sign-ins for one identity race on the unique constraint;
// the loser looks the row up once more and returns it as an existing user.
func (r *IdentityResolver) ResolveOrCreate(
	ctx context.Context,
	externalID string,
	seed *domain.ProfileSeed,
) (*domain.User, bool, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	externalID, err := normalizeExternalID(externalID)
	if err != nil {
		return nil, false, err
	}

	existing, err := r.lookup(ctx, externalID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, translateStoreError(err)
	}

	if seed == nil {
		return nil, false, domain.NewValidationError("profile", "is required on first sign-in", nil)
	}
	user, err := domain.NewUser(externalID, *seed, r.now())
	if err != nil {
		return nil, false, err
	}

	err = r.users.Create(ctx, user)
	if err == nil {
		log.Info("user created for new identity",
			"user_id", user.ID,
			"username", user.Username)
		return user, true, nil
	}

	if !errors.Is(err, store.ErrExternalIDExists) {
		if errors.Is(err, store.ErrDuplicate) {
			log.Debug("first sign-in rejected by unique constraint",
				"field", conflictField(err))
		} else {
			log.Error("failed to create user for new identity", "error", err)
		}
		return nil, false, translateWriteError(err)
	}

	log.Debug("lost first sign-in race, reading winner")
	winner, err := r.lookup(ctx, externalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Error("identity exists per constraint but cannot be read")
			return nil, false, fmt.Errorf("%w: identity exists but lookup found no user", domain.ErrIdentityConflict)
		}
		return nil, false, translateStoreError(err)
	}
	return winner, false, nil
}

// lookup returns store errors untranslated and rejects rows whose identity
// does not match the one requested.
func (r *IdentityResolver) lookup(ctx context.Context, externalID string) (*domain.User, error) {
	user, err := r.users.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user.ExternalID != externalID {
		logger.FromContextOrDefault(ctx, r.logger).Error("identity lookup returned another identity",
			"user_id", user.ID)
		return nil, fmt.Errorf("%w: user %d is mapped to another identity", domain.ErrIdentityConflict, user.ID)
	}
	return user, nil
}

func normalizeExternalID(externalID string) (string, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return "", domain.NewValidationError("firebase_uid", "is required", nil)
	}
	return externalID, nil
}
