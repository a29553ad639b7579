package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/usersync/users-service/internal/api/shared"
	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/platform/logger"
)

// InterestService is the interest API the handlers depend on.
type InterestService interface {
	Catalog(ctx context.Context) ([]domain.Interest, error)
	ListInterests(ctx context.Context, actorID, userID int64) ([]domain.Interest, error)
	AddInterests(ctx context.Context, actorID, userID int64, ids []int64) (*domain.AddInterestsResult, error)
	RemoveInterest(ctx context.Context, actorID, userID, interestID int64) (bool, error)
}

// InterestHandler serves the interest endpoints.
type InterestHandler struct {
	interests InterestService
	logger    *slog.Logger
}

// NewInterestHandler creates an InterestHandler.
func NewInterestHandler(interests InterestService, logger *slog.Logger) *InterestHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for InterestHandler")
	}
	return &InterestHandler{
		interests: interests,
		logger:    logger.With(slog.String("component", "interest_handler")),
	}
}

// Catalog handles GET /api/interests.
func (h *InterestHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.interests.Catalog(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, InterestListResponse{Interests: nonNil(catalog)})
}

// List handles GET /api/users/{id}/interests.
func (h *InterestHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, userID, ok := handleActorAndPathID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	held, err := h.interests.ListInterests(r.Context(), actorID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "User not found")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, InterestListResponse{Interests: nonNil(held)})
}

// Add handles POST /api/users/{id}/interests. Unknown ids are reported per id
// while the rest are added; a request naming only unknown ids is a 404.
func (h *InterestHandler) Add(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	actorID, userID, ok := handleActorAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	var req AddInterestsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.interests.AddInterests(r.Context(), actorID, userID, req.InterestIDs)
	if err != nil {
		if result != nil && errors.Is(err, domain.ErrNotFound) {
			HandleAPIError(w, r, err, "None of the requested interests exist",
				shared.WithMissingIDs(result.Missing))
			return
		}
		HandleAPIError(w, r, err, "User not found")
		return
	}
	log.Debug("interests added", slog.Int64("user_id", userID), slog.Int("added", result.Added))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Remove handles DELETE /api/users/{id}/interests/{interestID}.
func (h *InterestHandler) Remove(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	actorID, userID, ok := handleActorAndPathID(w, r, "id", log)
	if !ok {
		return
	}
	interestID, err := getPathID(r, "interestID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	removed, err := h.interests.RemoveInterest(r.Context(), actorID, userID, interestID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, RemoveInterestResponse{Removed: removed})
}

func nonNil(in []domain.Interest) []domain.Interest {
	if in == nil {
		return []domain.Interest{}
	}
	return in
}
