// Package memory holds in-process repository implementations. They enforce
// the same unique constraints as the SQL schema.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/accounts/pkg/user"
)

// UserRepository implements user.Repository in memory.
type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]user.User
	now   func() time.Time

	// Writes counts successful Create/Update/Delete/SetLastLogin calls.
	writes int
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]user.User), now: time.Now}
}

// Writes returns the number of successful mutating calls.
func (r *UserRepository) Writes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.writes
}

// Len returns the number of stored users.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *UserRepository) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; ok {
		return user.User{}, user.ErrDuplicate
	}
	if err := r.checkUniqueLocked(u); err != nil {
		return user.User{}, err
	}
	now := r.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = u
	r.writes++
	return u, nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (user.User, error) {
	return r.find(func(u user.User) bool { return u.Email == email })
}

func (r *UserRepository) GetByExternalID(_ context.Context, externalID string) (user.User, error) {
	if externalID == "" {
		return user.User{}, user.ErrNotFound
	}
	return r.find(func(u user.User) bool { return u.ExternalID == externalID })
}

func (r *UserRepository) Update(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.users[u.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if err := r.checkUniqueLocked(u); err != nil {
		return user.User{}, err
	}
	u.CreatedAt = current.CreatedAt
	u.UpdatedAt = r.now().UTC()
	r.users[u.ID] = u
	r.writes++
	return u, nil
}

func (r *UserRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.users, id)
	r.writes++
	return nil
}

func (r *UserRepository) SetLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}
	at = at.UTC()
	u.LastLoginAt = &at
	u.UpdatedAt = r.now().UTC()
	r.users[id] = u
	r.writes++
	return nil
}

func (r *UserRepository) List(_ context.Context, q user.ListQuery) ([]user.User, int, error) {
	r.mu.RLock()
	all := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		if q.Role != "" && u.Role != q.Role {
			continue
		}
		all = append(all, u)
	}
	r.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool {
		c := compare(all[i], all[j], q.SortColumn)
		if c == 0 {
			c = strings.Compare(all[i].ID.String(), all[j].ID.String())
		}
		if q.Descending {
			return c > 0
		}
		return c < 0
	})

	total := len(all)
	if q.Offset < 0 || q.Offset >= total {
		return []user.User{}, total, nil
	}
	end := total
	if q.Limit > 0 && q.Limit < total-q.Offset {
		end = q.Offset + q.Limit
	}
	return all[q.Offset:end], total, nil
}

func (r *UserRepository) ListInactive(_ context.Context, before time.Time) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]user.User, 0)
	for _, u := range r.users {
		if u.LastLoginAt == nil || u.LastLoginAt.Before(before) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *UserRepository) find(match func(user.User) bool) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UserRepository) checkUniqueLocked(u user.User) error {
	for id, other := range r.users {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return user.ErrDuplicate
		}
		if u.ExternalID != "" && other.ExternalID == u.ExternalID {
			return user.ErrDuplicateExternalID
		}
	}
	return nil
}

// compare orders two users on a storage column. A NULL last_login_at sorts
// as the greatest value, like PostgreSQL does.
func compare(a, b user.User, column string) int {
	switch column {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "email":
		return strings.Compare(a.Email, b.Email)
	case "last_login_at":
		switch {
		case a.LastLoginAt == nil && b.LastLoginAt == nil:
			return 0
		case a.LastLoginAt == nil:
			return 1
		case b.LastLoginAt == nil:
			return -1
		}
		return a.LastLoginAt.Compare(*b.LastLoginAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
