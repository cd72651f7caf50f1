package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// TokenManager issues and verifies project-scoped bearer tokens.
type TokenManager struct {
	secretKey []byte
	tokenTTL  time.Duration
}

// NewTokenManager creates a token manager with the given secret and
// token lifetime. secretKey should be a strong random string (e.g., 32
// bytes).
func NewTokenManager(secretKey string, tokenTTL time.Duration) *TokenManager {
	return &TokenManager{
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
	}
}

// Issue creates a bearer token granting access to one project.
func (m *TokenManager) Issue(projectID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   projectID,
		ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses a bearer token and returns the project id it grants.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Reject tokens signed with anything but our HMAC method.
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
