package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/usersync/users-service/internal/api/shared"
	"github.com/usersync/users-service/internal/config"
	"github.com/usersync/users-service/internal/platform/logger"
	"github.com/usersync/users-service/internal/service/auth"
)

// DefaultIdentityHeader carries the external identity in gateway mode.
const DefaultIdentityHeader = "X-Firebase-Uid"

// IdentityMiddleware is the single trusted-input adapter: it turns whatever
// the deployment uses to carry the external identity into an *auth.Identity
// on the request context. Nothing else reads identity headers.
type IdentityMiddleware struct {
	mode     string
	header   string
	verifier auth.TokenVerifier
	logger   *slog.Logger
}

// NewIdentityMiddleware creates an IdentityMiddleware. verifier is required in
// token mode and ignored in gateway mode.
func NewIdentityMiddleware(
	cfg config.AuthConfig,
	verifier auth.TokenVerifier,
	logger *slog.Logger,
) (*IdentityMiddleware, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := &IdentityMiddleware{
		mode:     cfg.Mode,
		header:   cfg.IdentityHeader,
		verifier: verifier,
		logger:   logger.With("component", "identity_middleware"),
	}
	switch cfg.Mode {
	case config.AuthModeGateway:
		if m.header == "" {
			m.header = DefaultIdentityHeader
		}
	case config.AuthModeToken:
		if verifier == nil {
			return nil, errors.New("token auth mode requires a token verifier")
		}
	default:
		return nil, errors.New("unknown auth mode: " + cfg.Mode)
	}
	return m, nil
}

// Authenticate rejects requests without a verifiable external identity and
// stores the identity on the context for the next handler.
func (m *IdentityMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			identity *auth.Identity
			ok       bool
		)
		if m.mode == config.AuthModeGateway {
			identity, ok = m.fromHeader(w, r)
		} else {
			identity, ok = m.fromBearer(w, r)
		}
		if !ok {
			return
		}
		logger.FromContextOrDefault(r.Context(), m.logger).Debug("external identity accepted", "auth_mode", m.mode)
		next.ServeHTTP(w, r.WithContext(shared.WithIdentity(r.Context(), identity)))
	})
}

func (m *IdentityMiddleware) fromHeader(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	uid := strings.TrimSpace(r.Header.Get(m.header))
	if uid == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Missing identity")
		return nil, false
	}
	return &auth.Identity{ExternalID: uid}, true
}

func (m *IdentityMiddleware) fromBearer(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
		return nil, false
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
		return nil, false
	}

	identity, err := m.verifier.Verify(r.Context(), strings.TrimSpace(token))
	if err == nil {
		return identity, true
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Token expired", err)
	case errors.Is(err, auth.ErrTokenNotYetValid):
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Token not yet valid", err)
	case errors.Is(err, auth.ErrMissingIdentity):
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Token has no user identity", err)
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid token", err,
			shared.WithElevatedLogLevel())
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
	}
	return nil, false
}
