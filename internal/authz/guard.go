// Package authz decides whether a resolved actor may perform an operation
// on a target user. Every profile and interest mutation passes through it.
package authz

import (
	"fmt"

	"github.com/usersync/users-service/internal/domain"
)

// Operation names an action on a user resource.
type Operation string

const (
	OpReadProfile     Operation = "read_profile"
	OpSearch          Operation = "search"
	OpListInterests   Operation = "list_interests"
	OpUpdateProfile   Operation = "update_profile"
	OpDeleteAccount   Operation = "delete_account"
	OpManageInterests Operation = "manage_interests"
)

// IsMutation reports whether op changes the target's data.
func (op Operation) IsMutation() bool {
	switch op {
	case OpUpdateProfile, OpDeleteAccount, OpManageInterests:
		return true
	default:
		return false
	}
}

func (op Operation) isRead() bool {
	switch op {
	case OpReadProfile, OpSearch, OpListInterests:
		return true
	default:
		return false
	}
}

// Guard enforces the ownership rule: reads are open to any resolved actor,
// mutations only to the owner. There are no roles.
type Guard struct{}

// NewGuard returns a Guard.
func NewGuard() *Guard {
	return &Guard{}
}

// Authorize returns nil when actorID may perform op on targetID.
// An actorID of 0 means no actor was resolved and yields
// domain.ErrUnauthenticated. Unknown operations are denied.
func (g *Guard) Authorize(actorID int64, op Operation, targetID int64) error {
	if actorID <= 0 {
		return domain.ErrUnauthenticated
	}

	switch {
	case op.IsMutation():
		if actorID != targetID {
			return fmt.Errorf("%w: user %d may not %s of user %d", domain.ErrForbidden, actorID, op, targetID)
		}
		return nil
	case op.isRead():
		return nil
	default:
		return fmt.Errorf("%w: unknown operation %q", domain.ErrForbidden, op)
	}
}
