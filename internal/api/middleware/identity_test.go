package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usersync/users-service/internal/api/middleware"
	"github.com/usersync/users-service/internal/api/shared"
	"github.com/usersync/users-service/internal/config"
	"github.com/usersync/users-service/internal/mocks"
	"github.com/usersync/users-service/internal/service/auth"
)

// echoIdentity writes the external ID the middleware placed on the context.
var echoIdentity = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(identity.ExternalID))
})

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestNewIdentityMiddleware(t *testing.T) {
	_, err := middleware.NewIdentityMiddleware(config.AuthConfig{Mode: config.AuthModeToken}, nil, nil)
	assert.Error(t, err, "token mode needs a verifier")

	_, err = middleware.NewIdentityMiddleware(config.AuthConfig{Mode: "cookie"}, nil, nil)
	assert.Error(t, err)

	_, err = middleware.NewIdentityMiddleware(config.AuthConfig{Mode: config.AuthModeGateway}, nil, nil)
	assert.NoError(t, err)
}

func TestIdentityMiddleware_Gateway(t *testing.T) {
	mw, err := middleware.NewIdentityMiddleware(config.AuthConfig{Mode: config.AuthModeGateway}, nil, nil)
	require.NoError(t, err)
	handler := mw.Authenticate(echoIdentity)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set(middleware.DefaultIdentityHeader, "  fb-123 ")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fb-123", rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing identity", errorMessage(t, rec))
}

func TestIdentityMiddleware_GatewayCustomHeader(t *testing.T) {
	cfg := config.AuthConfig{Mode: config.AuthModeGateway, IdentityHeader: "X-User-Uid"}
	mw, err := middleware.NewIdentityMiddleware(cfg, nil, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.DefaultIdentityHeader, "ignored")
	rec := httptest.NewRecorder()
	mw.Authenticate(echoIdentity).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("X-User-Uid", "fb-9")
	rec = httptest.NewRecorder()
	mw.Authenticate(echoIdentity).ServeHTTP(rec, req)
	assert.Equal(t, "fb-9", rec.Body.String())
}

func TestIdentityMiddleware_Token(t *testing.T) {
	verifier := &mocks.MockTokenVerifier{
		VerifyFn: func(_ context.Context, token string) (*auth.Identity, error) {
			switch token {
			case "good":
				return &auth.Identity{ExternalID: "fb-1", Email: "ada@example.com"}, nil
			case "expired":
				return nil, auth.ErrExpiredToken
			case "early":
				return nil, auth.ErrTokenNotYetValid
			case "anonymous":
				return nil, auth.ErrMissingIdentity
			case "broken":
				return nil, errors.New("key service down")
			default:
				return nil, auth.ErrInvalidToken
			}
		},
	}
	mw, err := middleware.NewIdentityMiddleware(config.AuthConfig{Mode: config.AuthModeToken}, verifier, nil)
	require.NoError(t, err)
	handler := mw.Authenticate(echoIdentity)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
		wantError  string
	}{
		{"valid token", "Bearer good", http.StatusOK, "fb-1", ""},
		{"lower-case scheme", "bearer good", http.StatusOK, "fb-1", ""},
		{"missing header", "", http.StatusUnauthorized, "", "Authorization header required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "", "Invalid authorization format"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "", "Invalid authorization format"},
		{"expired", "Bearer expired", http.StatusUnauthorized, "", "Token expired"},
		{"not yet valid", "Bearer early", http.StatusUnauthorized, "", "Token not yet valid"},
		{"no uid", "Bearer anonymous", http.StatusUnauthorized, "", "Token has no user identity"},
		{"invalid", "Bearer forged", http.StatusUnauthorized, "", "Invalid token"},
		{"verifier failure", "Bearer broken", http.StatusInternalServerError, "", "Authentication error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, errorMessage(t, rec))
			} else {
				assert.Equal(t, tc.wantBody, rec.Body.String())
			}
		})
	}
}
