package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/mocks"
)

var testCatalog = []domain.Interest{
	{ID: 1, Name: "art"},
	{ID: 2, Name: "books"},
	{ID: 3, Name: "chess"},
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedFor(email, first, last, username string) *domain.ProfileSeed {
	return &domain.ProfileSeed{Email: email, FirstName: first, LastName: last, Username: username}
}

// seedUser stores a valid user and returns it with its assigned ID.
func seedUser(t *testing.T, users *mocks.MockUserStore, uid, email, first, last, username string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(uid, *seedFor(email, first, last, username), time.Now())
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func strPtr(s string) *string { return &s }
