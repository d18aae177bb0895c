package user_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/accounts/pkg/apperr"
	"github.com/artem13815/accounts/pkg/repository/memory"
	"github.com/artem13815/accounts/pkg/user"
)

type prefixHasher struct{}

func (prefixHasher) Hash(_ context.Context, plain string) (string, error) {
	return "hashed:" + plain, nil
}

func (prefixHasher) Verify(_ context.Context, plain, digest string) (bool, error) {
	return digest == "hashed:"+plain, nil
}

func ptr[T any](v T) *T { return &v }

type fixture struct {
	repo  *memory.UserRepository
	svc   user.UseCase
	admin user.User
	alice user.User
	bob   user.User
}

func newFixture(t *testing.T, opts ...user.Option) fixture {
	t.Helper()
	ctx := context.Background()
	repo := memory.NewUserRepository()
	svc := user.NewService(repo, prefixHasher{}, nil, opts...)

	admin, err := svc.Create(ctx, user.CreateInput{Name: "Root", Email: "root@x.com", Password: "secret1", Role: user.RoleAdmin})
	require.NoError(t, err)
	alice, err := svc.Create(ctx, user.CreateInput{Name: "Alice", Email: "alice@x.com", Password: "secret1"})
	require.NoError(t, err)
	bob, err := svc.Create(ctx, user.CreateInput{Name: "Bob", Email: "bob@x.com", Password: "secret1"})
	require.NoError(t, err)
	return fixture{repo: repo, svc: svc, admin: admin, alice: alice, bob: bob}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, user.RoleUser, f.alice.Role)
	assert.Equal(t, "hashed:secret1", f.alice.PasswordHash)
	assert.False(t, f.alice.CreatedAt.IsZero())

	writes := f.repo.Writes()
	_, err := f.svc.Create(ctx, user.CreateInput{Name: "Dup", Email: "alice@x.com", Password: "x"})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Email já está em uso", err.Error())
	assert.Equal(t, writes, f.repo.Writes())

	ext, err := f.svc.Create(ctx, user.CreateInput{Name: "G", Email: "g@x.com", ExternalID: "google-1"})
	require.NoError(t, err)
	assert.False(t, ext.HasPassword())

	_, err = f.svc.Create(ctx, user.CreateInput{Name: "G2", Email: "g2@x.com", ExternalID: "google-1"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = f.svc.Create(ctx, user.CreateInput{Name: "R", Email: "r@x.com", Role: "ROOT"})
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

// racyRepo hides existing rows from GetByEmail so the store's unique
// constraint is the only guard left.
type racyRepo struct {
	*memory.UserRepository
}

func (racyRepo) GetByEmail(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func TestCreate_StoreConstraintSurfacesAsConflict(t *testing.T) {
	repo := racyRepo{memory.NewUserRepository()}
	svc := user.NewService(repo, prefixHasher{}, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, user.CreateInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, user.CreateInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, 1, repo.Len())
}

func TestFindSentinels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.FindByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = f.svc.FindByExternalID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = f.svc.FindByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, f.alice.ID, u.ID)

	_, err = f.svc.FindByID(ctx, uuid.New())
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Usuário não encontrado", err.Error())
}

func TestView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.View(ctx, f.alice.ID, f.alice)
	assert.NoError(t, err)
	_, err = f.svc.View(ctx, f.alice.ID, f.admin)
	assert.NoError(t, err)
	_, err = f.svc.View(ctx, f.alice.ID, f.bob)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := f.svc.Create(ctx, user.CreateInput{Name: "U", Email: strings.Repeat("u", i+1) + "@x.com"})
		require.NoError(t, err)
	}

	page, err := f.svc.List(ctx, user.Filters{SortBy: "email", Order: "asc", Page: 2, Limit: 3}, f.admin)
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, user.Pagination{Page: 2, Limit: 3, Total: 7, Pages: 3}, page.Pagination)
	assert.Len(t, page.Data, 3)

	page, err = f.svc.List(ctx, user.Filters{Role: user.RoleAdmin, Order: "DESC", Page: 1, Limit: 10}, f.admin)
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, 1, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.Pages)
	assert.Equal(t, f.admin.ID, page.Data[0].ID)

	page, err = f.svc.List(ctx, user.Filters{Order: "asc", Page: 1, Limit: 10, Role: user.Role("NOBODY")}, f.admin)
	assert.ErrorIs(t, err, apperr.ErrInvalid)
	assert.Nil(t, page)
}

func TestList_IncompleteFiltersSentinel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		f    user.Filters
	}{
		{"no order", user.Filters{Page: 1, Limit: 10}},
		{"no page", user.Filters{Order: "asc", Limit: 10}},
		{"no limit", user.Filters{Order: "asc", Page: 1}},
		{"negative page", user.Filters{Order: "asc", Page: -1, Limit: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.List(ctx, tt.f, f.admin)
			assert.NoError(t, err)
			assert.Nil(t, page)
		})
	}
}

func TestList_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.List(ctx, user.Filters{Order: "asc", Page: 1, Limit: 10}, f.alice)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "Apenas administradores podem listar todos os usuários", err.Error())

	_, err = f.svc.List(ctx, user.Filters{SortBy: "password_hash", Order: "asc", Page: 1, Limit: 10}, f.admin)
	assert.ErrorIs(t, err, apperr.ErrInvalid)

	_, err = f.svc.List(ctx, user.Filters{Order: "sideways", Page: 1, Limit: 10}, f.admin)
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestList_BoundsWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		f    user.Filters
	}{
		{"limit above max", user.Filters{Order: "asc", Page: 1, Limit: user.MaxLimit + 1}},
		{"huge limit", user.Filters{Order: "asc", Page: 1, Limit: 1 << 40}},
		{"offset overflow", user.Filters{Order: "asc", Page: 1<<62 + 1, Limit: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.List(ctx, tt.f, f.admin)
			assert.ErrorIs(t, err, apperr.ErrInvalid)
			assert.Nil(t, page)
		})
	}

	page, err := f.svc.List(ctx, user.Filters{Order: "asc", Page: 1, Limit: user.MaxLimit}, f.admin)
	require.NoError(t, err)
	assert.Len(t, page.Data, 3)

	page, err = f.svc.List(ctx, user.Filters{Order: "asc", Page: 1 << 20, Limit: user.MaxLimit}, f.admin)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 3, page.Pagination.Total)
}

func TestList_PagesIsCeil(t *testing.T) {
	f := newFixture(t) // 3 users
	ctx := context.Background()
	for limit, pages := range map[int]int{1: 3, 2: 2, 3: 1, 4: 1} {
		page, err := f.svc.List(ctx, user.Filters{Order: "asc", Page: 1, Limit: limit}, f.admin)
		require.NoError(t, err)
		assert.Equal(t, pages, page.Pagination.Pages, "limit %d", limit)
	}
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	updated, err := f.svc.Update(ctx, f.alice.ID, user.Patch{Name: ptr("Alicia")}, f.alice)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "alice@x.com", updated.Email)

	updated, err = f.svc.Update(ctx, f.alice.ID, user.Patch{Password: ptr("newpass")}, f.alice)
	require.NoError(t, err)
	assert.Equal(t, "hashed:newpass", updated.PasswordHash)

	updated, err = f.svc.Update(ctx, f.alice.ID, user.Patch{Role: ptr(user.RoleAdmin)}, f.admin)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, updated.Role)
}

func TestUpdate_Forbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	writes := f.repo.Writes()

	_, err := f.svc.Update(ctx, f.bob.ID, user.Patch{Name: ptr("x")}, f.alice)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "Você só pode atualizar seus próprios dados", err.Error())

	// Same value still counts as a role change.
	_, err = f.svc.Update(ctx, f.alice.ID, user.Patch{Role: ptr(user.RoleUser)}, f.alice)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "Você não pode alterar seu próprio papel", err.Error())

	assert.Equal(t, writes, f.repo.Writes())
}

func TestUpdate_ConflictAndNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Update(ctx, f.alice.ID, user.Patch{Email: ptr("bob@x.com")}, f.alice)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// Keeping one's own email is not a conflict.
	_, err = f.svc.Update(ctx, f.alice.ID, user.Patch{Email: ptr("alice@x.com")}, f.alice)
	assert.NoError(t, err)

	_, err = f.svc.Update(ctx, uuid.New(), user.Patch{Name: ptr("x")}, f.admin)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.Remove(ctx, f.admin.ID, f.admin)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "Você não pode excluir sua própria conta", err.Error())

	err = f.svc.Remove(ctx, f.bob.ID, f.alice)
	require.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, "Apenas administradores podem excluir usuários", err.Error())

	err = f.svc.Remove(ctx, f.alice.ID, f.alice)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	assert.ErrorIs(t, f.svc.Remove(ctx, uuid.New(), f.admin), apperr.ErrNotFound)

	require.NoError(t, f.svc.Remove(ctx, f.bob.ID, f.admin))
	_, err = f.svc.FindByID(ctx, f.bob.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTouchLastLoginAndListInactive(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	f := newFixture(t, user.WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	clock = now.AddDate(0, 0, -40)
	require.NoError(t, f.svc.TouchLastLogin(ctx, f.alice.ID))
	clock = now.AddDate(0, 0, -1)
	require.NoError(t, f.svc.TouchLastLogin(ctx, f.bob.ID))
	clock = now

	got, err := f.svc.FindByID(ctx, f.bob.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.True(t, got.LastLoginAt.Equal(now.AddDate(0, 0, -1)))

	inactive, err := f.svc.ListInactive(ctx, 0)
	require.NoError(t, err)
	ids := make([]uuid.UUID, 0, len(inactive))
	for _, u := range inactive {
		ids = append(ids, u.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{f.admin.ID, f.alice.ID}, ids)

	inactive, err = f.svc.ListInactive(ctx, 60)
	require.NoError(t, err)
	assert.Len(t, inactive, 1)

	err = f.svc.TouchLastLogin(ctx, uuid.New())
	assert.True(t, errors.Is(err, user.ErrNotFound))
}
