package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/usersync/users-service/internal/domain"
	"github.com/usersync/users-service/internal/store"
)

func newUser(t *testing.T, uid, email, username string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(uid, domain.ProfileSeed{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Username:  username,
	}, time.Now())
	require.NoError(t, err)
	return u
}

func TestMockUserStore_Uniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewMockUserStore()
	require.NoError(t, s.Create(ctx, newUser(t, "uid-1", "a@x.com", "alpha")))

	assert.ErrorIs(t, s.Create(ctx, newUser(t, "uid-1", "b@x.com", "beta")), store.ErrExternalIDExists)
	assert.ErrorIs(t, s.Create(ctx, newUser(t, "uid-2", "A@X.com", "beta")), store.ErrEmailExists)
	assert.ErrorIs(t, s.Create(ctx, newUser(t, "uid-2", "b@x.com", "ALPHA")), store.ErrUsernameExists)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 4, s.CreateCalls())
}

func TestMockInterestStore_CascadeOnDelete(t *testing.T) {
	ctx := context.Background()
	users := NewMockUserStore()
	interests := NewMockInterestStore(users, domain.Interest{ID: 1, Name: "art"})

	u := newUser(t, "uid-1", "a@x.com", "alpha")
	require.NoError(t, users.Create(ctx, u))
	added, missing, err := interests.Add(ctx, u.ID, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, []int64{2}, missing)

	require.NoError(t, users.Delete(ctx, u.ID))
	held, err := interests.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, held)

	_, _, err = interests.Add(ctx, u.ID, []int64{1})
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}
