// Package auth provides password hashing, session tokens and request identity helpers.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/todoapi/todoapi/internal/model"
)

// DefaultCost is the bcrypt cost used when none is configured.
const DefaultCost = 10

// maxPasswordBytes is the number of password bytes bcrypt consumes.
// Longer passwords are truncated rather than rejected.
const maxPasswordBytes = 72

// ErrInvalidHash indicates the stored hash is not a bcrypt hash.
var ErrInvalidHash = errors.New("invalid hash format")

// PasswordHasher hashes and verifies user passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the given bcrypt cost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// HashPassword creates a salted bcrypt hash of the given password.
func (h *PasswordHasher) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordBytes(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks if the password matches the hash.
// A mismatch is reported as (false, nil); a malformed hash as ErrInvalidHash.
func (h *PasswordHasher) VerifyPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrInvalidHash
	}
}

func passwordBytes(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

// Prepare hashes the user's password if it changed since it was last persisted.
// Every write path that can change the password must call it before the write.
func (h *PasswordHasher) Prepare(u *model.User) error {
	if !u.PasswordModified() {
		return nil
	}
	hash, err := h.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hash
	return nil
}
