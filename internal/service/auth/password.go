package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier defines the interface for comparing passwords.
type PasswordVerifier interface {
	// Compare compares a hashed password with its possible plaintext equivalent.
	// Returns nil on success, or an error on failure (e.g., mismatch).
	Compare(hashedPassword, password string) error
}

// BcryptVerifier implements PasswordVerifier using bcrypt.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare implements the PasswordVerifier interface using bcrypt.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// PasswordHasher defines the interface for hashing plaintext passwords.
type PasswordHasher interface {
	// Hash returns the hash of the given plaintext password.
	Hash(password string) (string, error)
}

// BcryptHasher implements PasswordHasher using bcrypt with a configurable cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. A cost of 0 selects the bcrypt
// default cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements the PasswordHasher interface using bcrypt.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
