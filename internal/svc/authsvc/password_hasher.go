package authsvc

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/homecase-accounts/internal/domain"
)

// ErrInvalidHashCost is returned for a bcrypt cost outside the supported range.
var ErrInvalidHashCost = errors.New("invalid hash cost")

// PasswordHasher hashes and verifies passwords with a one-way, salted function.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	// ComparePassword returns domain.ErrInvalidCredentials on mismatch.
	ComparePassword(hash, password string) error
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

var _ PasswordHasher = (*BcryptHasher)(nil)

// NewBcryptHasher validates the cost factor and returns a hasher.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidHashCost, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &BcryptHasher{cost: cost}, nil
}

// HashPassword returns the encoded bcrypt hash, which embeds salt and cost.
func (h *BcryptHasher) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// ComparePassword checks password against hash in constant time.
func (h *BcryptHasher) ComparePassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return domain.ErrInvalidCredentials
	default:
		return fmt.Errorf("compare password: %w", err)
	}
}
