package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usersync/users-service/internal/api/shared"
	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/service"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("%w: not owner", domain.ErrForbidden), http.StatusForbidden},
		{"validation", domain.NewValidationError("offset", "must not be negative", nil), http.StatusBadRequest},
		{"invalid id", domain.NewValidationError("id", "bad", domain.ErrInvalidID), http.StatusBadRequest},
		{"request validation", shared.ValidateRequest(&AddInterestsRequest{}), http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: user", domain.ErrNotFound), http.StatusNotFound},
		{"conflict", &service.ConflictError{Field: "email", Err: domain.ErrConflict}, http.StatusConflict},
		{"identity conflict", domain.ErrIdentityConflict, http.StatusConflict},
		{"store unavailable", domain.ErrStoreUnavailable, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "Invalid offset: must not be negative",
		GetSafeErrorMessage(domain.NewValidationError("offset", "must not be negative", nil)))
	assert.Equal(t, "username already in use",
		GetSafeErrorMessage(&service.ConflictError{Field: "username", Err: domain.ErrConflict}))
	assert.Equal(t, "Invalid interest_ids: required field",
		GetSafeErrorMessage(shared.ValidateRequest(&AddInterestsRequest{})))

	leaky := fmt.Errorf("%w: pq: connection to 10.0.0.5 refused", domain.ErrStoreUnavailable)
	msg := GetSafeErrorMessage(leaky)
	assert.NotContains(t, msg, "10.0.0.5")
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(errors.New("select * from users")))
}

func TestHandleAPIError(t *testing.T) {
	t.Run("retryable sets Retry-After", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		HandleAPIError(rec, req, fmt.Errorf("%w: timeout", domain.ErrStoreUnavailable), "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, RetryAfterSeconds, rec.Header().Get("Retry-After"))
	})

	t.Run("not found message override", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/users/7", nil)
		HandleAPIError(rec, req, domain.ErrNotFound, "User not found")

		var body shared.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "User not found", body.Error)
		assert.Empty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("field is reported", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch, "/api/users/7", nil)
		HandleAPIError(rec, req, &service.ConflictError{Field: "email", Err: domain.ErrConflict}, "")

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"email already in use","field":"email"}`, rec.Body.String())
	})
}
