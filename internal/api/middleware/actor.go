package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/usersync/users-service/internal/api/shared"
	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/platform/logger"
)

// ActorLookup finds the internal user for an external identity without
// creating one.
type ActorLookup interface {
	Lookup(ctx context.Context, externalID string) (*domain.User, error)
}

// ActorMiddleware resolves the verified identity to an internal actor ID.
type ActorMiddleware struct {
	lookup ActorLookup
	logger *slog.Logger
}

// NewActorMiddleware creates an ActorMiddleware.
func NewActorMiddleware(lookup ActorLookup, logger *slog.Logger) *ActorMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActorMiddleware{lookup: lookup, logger: logger.With("component", "actor_middleware")}
}

// RequireActor must run after IdentityMiddleware.Authenticate. Identities
// that were never synced have no actor and get 401.
func (m *ActorMiddleware) RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := shared.IdentityFrom(r.Context())
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Missing identity")
			return
		}

		user, err := m.lookup.Lookup(r.Context(), identity.ExternalID)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrNotFound):
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
				"No profile for this identity; sync first", err)
			return
		case errors.Is(err, domain.ErrValidation):
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Missing identity", err)
			return
		case errors.Is(err, domain.ErrIdentityConflict):
			shared.RespondWithErrorAndLog(w, r, http.StatusConflict, "Identity mapping conflict", err,
				shared.WithElevatedLogLevel())
			return
		case errors.Is(err, domain.ErrStoreUnavailable):
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Service temporarily unavailable", err, shared.WithHeader("Retry-After", "1"))
			return
		default:
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}

		log := logger.FromContextOrDefault(r.Context(), m.logger).With("actor_id", user.ID)
		ctx := logger.WithLogger(shared.WithActorID(r.Context(), user.ID), log)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
