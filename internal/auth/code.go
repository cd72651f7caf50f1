// Package auth implements project authentication: bcrypt-hashed private
// codes and project-scoped bearer tokens.
//
// A project is its own principal. Everyone who knows the project id and
// private code shares the same access, so there are no user accounts.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid project id or private code")
	ErrWeakCode           = errors.New("private code must be at least 4 characters")
)

// Codec hashes and verifies project private codes.
type Codec struct {
	cost int
}

// NewCodec creates a code hasher with the given bcrypt cost. A cost of 0
// selects the bcrypt default.
func NewCodec(cost int) *Codec {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Codec{cost: cost}
}

// Hash hashes a private code for storage. The clear code is never kept.
func (c *Codec) Hash(code string) (string, error) {
	if len(code) < 4 {
		return "", ErrWeakCode
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), c.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash private code: %w", err)
	}
	return string(hash), nil
}

// Verify checks a submitted code against the stored hash.
func (c *Codec) Verify(hash, code string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
