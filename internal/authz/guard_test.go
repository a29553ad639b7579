package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/usersync/users-service/internal/domain"
)

func TestGuard_Authorize(t *testing.T) {
	g := NewGuard()

	tests := []struct {
		name    string
		actor   int64
		op      Operation
		target  int64
		wantErr error
	}{
		{"read other profile", 1, OpReadProfile, 2, nil},
		{"search", 1, OpSearch, 0, nil},
		{"list other interests", 1, OpListInterests, 2, nil},
		{"update own profile", 1, OpUpdateProfile, 1, nil},
		{"update other profile", 1, OpUpdateProfile, 2, domain.ErrForbidden},
		{"delete own account", 3, OpDeleteAccount, 3, nil},
		{"delete other account", 3, OpDeleteAccount, 4, domain.ErrForbidden},
		{"manage own interests", 5, OpManageInterests, 5, nil},
		{"manage other interests", 5, OpManageInterests, 6, domain.ErrForbidden},
		{"unresolved actor read", 0, OpReadProfile, 2, domain.ErrUnauthenticated},
		{"unresolved actor mutation", 0, OpUpdateProfile, 0, domain.ErrUnauthenticated},
		{"unknown operation", 1, Operation("promote"), 1, domain.ErrForbidden},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := g.Authorize(tc.actor, tc.op, tc.target)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestGuard_ForbiddenIsNotUnauthenticated(t *testing.T) {
	err := NewGuard().Authorize(1, OpDeleteAccount, 2)
	assert.False(t, errors.Is(err, domain.ErrUnauthenticated))
	assert.Contains(t, err.Error(), "delete_account")
}

func TestOperation_IsMutation(t *testing.T) {
	assert.True(t, OpUpdateProfile.IsMutation())
	assert.True(t, OpManageInterests.IsMutation())
	assert.False(t, OpReadProfile.IsMutation())
	assert.False(t, OpSearch.IsMutation())
}

func TestGuard_MutationsAreOwnerOnly(t *testing.T) {
	g := NewGuard()
	ops := []Operation{
		OpReadProfile, OpSearch, OpListInterests,
		OpUpdateProfile, OpDeleteAccount, OpManageInterests,
	}

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			assert.NoError(t, g.Authorize(7, op, 7))
			err := g.Authorize(7, op, 8)
			if op.IsMutation() {
				assert.ErrorIs(t, err, domain.ErrForbidden)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
