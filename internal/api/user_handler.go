package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/usersync/users-service/internal/api/shared"
	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/platform/logger"
)

// IdentitySyncer maps an external identity to a user, creating it on first
// sign-in.
type IdentitySyncer interface {
	ResolveOrCreate(ctx context.Context, externalID string, seed *domain.ProfileSeed) (*domain.User, bool, error)
}

// ProfileService is the profile API the user handlers depend on.
type ProfileService interface {
	Get(ctx context.Context, actorID, userID int64) (*domain.Profile, error)
	GetByUsername(ctx context.Context, actorID int64, username string) (*domain.Profile, error)
	ReadWithCache(ctx context.Context, actorID, userID int64, clientFingerprint string) (*domain.Profile, string, bool, error)
	ReadByUsernameWithCache(ctx context.Context, actorID int64, username, clientFingerprint string) (*domain.Profile, string, bool, error)
	List(ctx context.Context, actorID int64, offset, limit int) (*domain.SearchResultPage, error)
	Search(ctx context.Context, actorID int64, query string, offset, limit int) (*domain.SearchResultPage, error)
	Update(ctx context.Context, actorID, userID int64, update domain.ProfileUpdate) (*domain.Profile, error)
	Delete(ctx context.Context, actorID, userID int64) error
}

// UserHandler serves the /api/users endpoints.
type UserHandler struct {
	syncer       IdentitySyncer
	profiles     ProfileService
	defaultLimit int
	logger       *slog.Logger
}

// NewUserHandler creates a UserHandler. defaultLimit applies when a list or
// search request omits limit.
func NewUserHandler(syncer IdentitySyncer, profiles ProfileService, defaultLimit int, logger *slog.Logger) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultPageLimit
	}
	return &UserHandler{
		syncer:       syncer,
		profiles:     profiles,
		defaultLimit: defaultLimit,
		logger:       logger.With(slog.String("component", "user_handler")),
	}
}

// Sync handles POST /api/users/sync. It needs a verified identity but no
// existing user: 201 when the user was created, 200 when it already existed.
func (h *UserHandler) Sync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, ok := shared.IdentityFrom(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthenticated, "")
		return
	}

	var req SyncRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, shared.ErrEmptyBody) {
		HandleAPIError(w, r, domain.NewValidationError("", "malformed JSON body", err), "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, created, err := h.syncer.ResolveOrCreate(r.Context(), identity.ExternalID, req.Seed(identity))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	profile, err := h.profiles.Get(r.Context(), user.ID, user.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	log.Debug("identity synced", slog.Int64("user_id", user.ID), slog.Bool("created", created))
	shared.RespondWithJSON(w, r, status, SyncResponse{Created: created, Profile: profile})
}

// Me handles GET /api/users/me with conditional GET support.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorID(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthenticated, "")
		return
	}
	h.conditionalRead(w, r, actorID, actorID)
}

// Get handles GET /api/users/{id}, where the segment is a numeric id or a
// username.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorID(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthenticated, "")
		return
	}

	ref := chi.URLParam(r, "id")
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if id <= 0 {
			HandleAPIError(w, r, domain.NewValidationError("id", "must be a positive id or a username", domain.ErrInvalidID), "")
			return
		}
		h.conditionalRead(w, r, actorID, id)
		return
	}

	profile, fingerprint, notModified, err := h.profiles.ReadByUsernameWithCache(
		r.Context(), actorID, ref, r.Header.Get("If-None-Match"))
	h.respondConditional(w, r, actorID, profile, fingerprint, notModified, err)
}

func (h *UserHandler) conditionalRead(w http.ResponseWriter, r *http.Request, actorID, userID int64) {
	profile, fingerprint, notModified, err := h.profiles.ReadWithCache(
		r.Context(), actorID, userID, r.Header.Get("If-None-Match"))
	h.respondConditional(w, r, actorID, profile, fingerprint, notModified, err)
}

func (h *UserHandler) respondConditional(
	w http.ResponseWriter,
	r *http.Request,
	actorID int64,
	profile *domain.Profile,
	fingerprint string,
	notModified bool,
	err error,
) {
	if err != nil {
		HandleAPIError(w, r, err, "User not found")
		return
	}

	w.Header().Set("ETag", fingerprint)
	if notModified {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profileView(actorID, profile))
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorID(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthenticated, "")
		return
	}
	offset, limit, err := getPaging(r, h.defaultLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := h.profiles.List(r.Context(), actorID, offset, limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

// Search handles GET /api/users/search?q=&offset=&limit=.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	actorID, ok := shared.ActorID(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthenticated, "")
		return
	}
	offset, limit, err := getPaging(r, h.defaultLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := h.profiles.Search(r.Context(), actorID, r.URL.Query().Get("q"), offset, limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

// Update handles PATCH /api/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	actorID, userID, ok := handleActorAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := decodeAndValidate(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	profile, err := h.profiles.Update(r.Context(), actorID, userID, req.ToUpdate())
	if err != nil {
		HandleAPIError(w, r, err, "User not found")
		return
	}
	w.Header().Set("ETag", domain.Fingerprint(profile))
	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	actorID, userID, ok := handleActorAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.profiles.Delete(r.Context(), actorID, userID); err != nil {
		HandleAPIError(w, r, err, "User not found")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, DeleteAccountResponse{ID: userID, Deleted: true})
}
