// Package password implements user.PasswordHasher with bcrypt.
package password

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/artem13815/accounts/pkg/apperr"
)

// MaxLength is the longest input bcrypt accepts, in bytes.
const MaxLength = 72

// Hasher hashes credentials with a fixed bcrypt cost.
type Hasher struct {
	cost int
}

// NewHasher validates cost against bcrypt bounds; zero selects bcrypt.DefaultCost.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

func (h *Hasher) Hash(_ context.Context, plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Invalid(fmt.Sprintf("password must be at most %d bytes", MaxLength))
	}
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports a mismatch as (false, nil); any other failure (malformed
// digest, oversized input) is returned as an error.
func (h *Hasher) Verify(_ context.Context, plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
