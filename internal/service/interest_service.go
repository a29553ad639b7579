package service

import (
	"context"
	"log/slog"

	"github.com/usersync/users-service/internal/authz"
	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/platform/logger"
	"github.com/usersync/users-service/internal/store"
)

// InterestService manages the set of interests each user holds.
type InterestService struct {
	users     store.UserStore
	interests store.InterestStore
	guard     *authz.Guard
	logger    *slog.Logger
}

// NewInterestService creates an InterestService.
func NewInterestService(
	users store.UserStore,
	interests store.InterestStore,
	guard *authz.Guard,
	logger *slog.Logger,
) *InterestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InterestService{
		users:     users,
		interests: interests,
		guard:     guard,
		logger:    logger.With("component", "interest_service"),
	}
}

// Catalog lists every interest that can be added.
func (s *InterestService) Catalog(ctx context.Context) ([]domain.Interest, error) {
	catalog, err := s.interests.Catalog(ctx)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return catalog, nil
}

// ListInterests returns the interests held by userID.
func (s *InterestService) ListInterests(ctx context.Context, actorID, userID int64) ([]domain.Interest, error) {
	if err := s.guard.Authorize(actorID, authz.OpListInterests, userID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, translateStoreError(err)
	}
	interests, err := s.interests.ListForUser(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return interests, nil
}

// AddInterests adds ids to the actor's own interests. Duplicate ids in the
// request and pairs the user already holds are not counted. Unknown ids are
// reported in Missing while the known ones are still added; when every id is
// unknown the result is returned with an error matching domain.ErrNotFound.
func (s *InterestService) AddInterests(
	ctx context.Context,
	actorID, userID int64,
	ids []int64,
) (*domain.AddInterestsResult, error) {
	if err := s.guard.Authorize(actorID, authz.OpManageInterests, userID); err != nil {
		return nil, err
	}
	unique, err := domain.NormalizeInterestIDs(ids)
	if err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	added, missing, err := s.interests.Add(ctx, userID, unique)
	if err != nil {
		return nil, translateStoreError(err)
	}

	result := &domain.AddInterestsResult{
		Requested: len(unique),
		Added:     added,
		Missing:   missing,
	}
	if len(missing) == len(unique) {
		log.Debug("no requested interest exists", "user_id", userID, "requested", len(unique))
		return result, translateStoreError(store.NewStoreError(
			"interest", "add", "none of the requested interests exist", store.ErrInterestNotFound))
	}

	log.Info("interests added",
		"user_id", userID,
		"added", added,
		"missing", len(missing))
	return result, nil
}

// RemoveInterest removes one interest from the actor's own set and reports
// whether it was held.
func (s *InterestService) RemoveInterest(ctx context.Context, actorID, userID, interestID int64) (bool, error) {
	if err := s.guard.Authorize(actorID, authz.OpManageInterests, userID); err != nil {
		return false, err
	}
	if interestID <= 0 {
		return false, domain.NewValidationError("interest_id", "must be positive", domain.ErrInvalidID)
	}

	removed, err := s.interests.Remove(ctx, userID, interestID)
	if err != nil {
		return false, translateStoreError(err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("interest remove",
		"user_id", userID,
		"interest_id", interestID,
		"removed", removed)
	return removed, nil
}
