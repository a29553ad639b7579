package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usersync/users-service/internal/api/shared"
	"github.com/usersync/users-service/internal/domain"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathID(t *testing.T) {
	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"99999999999999999999", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", tc.value)
			got, err := getPathID(req, "id")
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetPaging(t *testing.T) {
	offset, limit, err := getPaging(httptest.NewRequest(http.MethodGet, "/api/users", nil), 20)
	require.NoError(t, err)
	assert.Equal(t, 0, offset)
	assert.Equal(t, 20, limit)

	offset, limit, err = getPaging(httptest.NewRequest(http.MethodGet, "/api/users?offset=-1&limit=0", nil), 20)
	require.NoError(t, err, "range checks belong to the service")
	assert.Equal(t, -1, offset)
	assert.Equal(t, 0, limit)

	_, _, err = getPaging(httptest.NewRequest(http.MethodGet, "/api/users?offset=x", nil), 20)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestHandleActorAndPathID(t *testing.T) {
	rec := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/users/5", nil), "id", "5")
	_, _, ok := handleActorAndPathID(rec, req, "id", nil)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = req.WithContext(shared.WithActorID(req.Context(), 5))
	actorID, pathID, ok := handleActorAndPathID(rec, req, "id", nil)
	assert.True(t, ok)
	assert.Equal(t, int64(5), actorID)
	assert.Equal(t, int64(5), pathID)
}
