// Package auth turns a bearer credential into the external identity it
// asserts. It never touches the user store.
package auth

import "context"

// Identity is what a verified credential says about its holder. Only
// ExternalID is required; the other fields seed a first-time profile.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
	Picture    string
}

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	// Verify returns the identity asserted by token, or one of the package
	// errors when the token is missing, malformed, expired or anonymous.
	Verify(ctx context.Context, token string) (*Identity, error)
}
