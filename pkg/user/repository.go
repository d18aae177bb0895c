package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository-level errors.
var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
	// ErrDuplicateExternalID also matches ErrDuplicate.
	ErrDuplicateExternalID = fmt.Errorf("external identity already linked: %w", ErrDuplicate)
)

// Repository abstracts persistence of users.
// Implementations enforce uniqueness of email and of non-empty ExternalID,
// report violations as ErrDuplicate (ErrDuplicateExternalID for the latter)
// and stamp CreatedAt/UpdatedAt themselves. Lookups of absent records return
// ErrNotFound.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByExternalID(ctx context.Context, externalID string) (User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	List(ctx context.Context, q ListQuery) ([]User, int, error)
	ListInactive(ctx context.Context, before time.Time) ([]User, error)
}

// PasswordHasher is the one-way credential primitive.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) (bool, error)
}
