package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/usersync/users-service/internal/config"
	"github.com/usersync/users-service/internal/platform/logger"
)

// minSecretLength matches the config validation rule.
const minSecretLength = 32

// identityClaims is the token payload. "uid" wins over "sub" when both are set.
type identityClaims struct {
	UID     string `json:"uid,omitempty"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// HMACTokenVerifier verifies HS256 tokens signed with a shared secret.
type HMACTokenVerifier struct {
	signingKey []byte
	issuer     string
	timeFunc   func() time.Time
	clockSkew  time.Duration
}

var _ TokenVerifier = (*HMACTokenVerifier)(nil)

// NewHMACTokenVerifier creates a verifier from the auth configuration.
func NewHMACTokenVerifier(cfg config.AuthConfig) (*HMACTokenVerifier, error) {
	if len(cfg.TokenSecret) < minSecretLength {
		return nil, fmt.Errorf("token secret must be at least %d characters", minSecretLength)
	}

	return &HMACTokenVerifier{
		signingKey: []byte(cfg.TokenSecret),
		issuer:     cfg.TokenIssuer,
		timeFunc:   time.Now,
		clockSkew:  2 * time.Minute,
	}, nil
}

// WithTimeFunc returns a copy of v that validates time claims against fn.
func (v *HMACTokenVerifier) WithTimeFunc(fn func() time.Time) *HMACTokenVerifier {
	clone := *v
	clone.timeFunc = fn
	return &clone
}

// Verify implements TokenVerifier.
func (v *HMACTokenVerifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	now := v.timeFunc()
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&identityClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.signingKey, nil
		},
		parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token verification failed: token expired", "error", err)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token verification failed: token not yet valid", "error", err)
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("token verification failed",
				"error", err,
				"error_type", fmt.Sprintf("%T", err))
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*identityClaims)
	if !ok || !token.Valid {
		log.Debug("token verification failed: invalid claims")
		return nil, ErrInvalidToken
	}

	externalID := strings.TrimSpace(claims.UID)
	if externalID == "" {
		externalID = strings.TrimSpace(claims.Subject)
	}
	if externalID == "" {
		return nil, ErrMissingIdentity
	}

	log.Debug("token verified", "token_id", claims.ID)
	return &Identity{
		ExternalID: externalID,
		Email:      claims.Email,
		Name:       claims.Name,
		Picture:    claims.Picture,
	}, nil
}

// IssueToken signs an HS256 token for identity. It is used by the
// development token generator and by tests; production tokens come from the
// identity provider.
func IssueToken(secret, issuer string, identity Identity, now time.Time, ttl time.Duration) (string, error) {
	if len(secret) < minSecretLength {
		return "", fmt.Errorf("token secret must be at least %d characters", minSecretLength)
	}

	claims := identityClaims{
		UID:     identity.ExternalID,
		Email:   identity.Email,
		Name:    identity.Name,
		Picture: identity.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ExternalID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}
	return signed, nil
}
