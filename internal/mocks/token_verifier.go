package mocks

import (
	"context"

	"github.com/usersync/users-service/internal/service/auth"
)

// MockTokenVerifier implements auth.TokenVerifier for testing
type MockTokenVerifier struct {
	// VerifyFn allows test cases to mock the Verify behavior
	VerifyFn func(ctx context.Context, token string) (*auth.Identity, error)

	// Default values used when VerifyFn isn't set
	Identity *auth.Identity
	Err      error
}

var _ auth.TokenVerifier = (*MockTokenVerifier)(nil)

// Verify implements auth.TokenVerifier.
func (m *MockTokenVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, token)
	}
	return m.Identity, m.Err
}
