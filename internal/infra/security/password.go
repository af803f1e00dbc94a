// File: internal/infra/security/password.go
package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher stores passwords as bcrypt(HMAC-SHA256(pepper, password)).
// The HMAC step keeps input under bcrypt's 72-byte limit and binds hashes to the pepper.
type PasswordHasher struct {
	cost   int
	pepper []byte
}

// NewPasswordHasher validates cost. Zero selects bcrypt.DefaultCost + 2.
func NewPasswordHasher(cost int, pepper string) (*PasswordHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost + 2
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be in [%d,%d]; got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	return &PasswordHasher{cost: cost, pepper: []byte(pepper)}, nil
}

func (h *PasswordHasher) prehash(password string) []byte {
	m := hmac.New(sha256.New, h.pepper)
	m.Write([]byte(password))
	return []byte(hex.EncodeToString(m.Sum(nil)))
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	b, err := bcrypt.GenerateFromPassword(h.prehash(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// Verify reports whether password matches hash. Malformed hashes simply don't match.
func (h *PasswordHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), h.prehash(password)) == nil
}
