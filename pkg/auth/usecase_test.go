package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/artem13815/accounts/pkg/apperr"
	"github.com/artem13815/accounts/pkg/auth"
	"github.com/artem13815/accounts/pkg/repository/memory"
	"github.com/artem13815/accounts/pkg/security/jwt"
	"github.com/artem13815/accounts/pkg/security/password"
	"github.com/artem13815/accounts/pkg/user"
)

const secret = "test-secret"

type flakyRepo struct {
	*memory.UserRepository
	touchErr error
}

func (r *flakyRepo) SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if r.touchErr != nil {
		return r.touchErr
	}
	return r.UserRepository.SetLastLogin(ctx, id, at)
}

type failingTokens struct{}

func (failingTokens) Generate(context.Context, user.User) (string, error) {
	return "", errors.New("signer down")
}

type env struct {
	repo  *flakyRepo
	users user.UseCase
	svc   auth.AuthUseCase
}

func newEnv(t *testing.T, tokens auth.TokenGenerator) env {
	t.Helper()
	hasher, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	repo := &flakyRepo{UserRepository: memory.NewUserRepository()}
	users := user.NewService(repo, hasher, nil)
	if tokens == nil {
		tokens = jwt.NewGenerator(secret, 7*24*time.Hour)
	}
	return env{repo: repo, users: users, svc: auth.NewAuthService(users, hasher, tokens, nil)}
}

func TestRegisterThenLogin(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	res, err := e.svc.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.UserID)

	stored, err := e.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, res.UserID, stored.ID)
	assert.Equal(t, user.RoleUser, stored.Role)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.Nil(t, stored.LastLoginAt)

	login, err := e.svc.Login(ctx, auth.LoginInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, auth.LoginUser{ID: res.UserID, Name: "A", Email: "a@x.com", Role: user.RoleUser}, login.User)

	claims, err := jwt.Parse(login.AccessToken, []byte(secret))
	require.NoError(t, err)
	assert.Equal(t, res.UserID.String(), claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, user.RoleUser, claims.Role)

	stored, err = e.users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	_, err := e.svc.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	writes := e.repo.Writes()

	_, err = e.svc.Register(ctx, auth.RegisterInput{Name: "B", Email: "a@x.com", Password: "other1"})
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "Email já está em uso", err.Error())
	assert.Equal(t, writes, e.repo.Writes())
}

func TestRegister_OverlongPassword(t *testing.T) {
	e := newEnv(t, nil)

	_, err := e.svc.Register(context.Background(), auth.RegisterInput{Name: "A", Email: "a@x.com", Password: strings.Repeat("p", 80)})
	require.ErrorIs(t, err, apperr.ErrInvalid)
	assert.Equal(t, 0, e.repo.Writes())
}

func TestLogin_UniformRejection(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	_, err := e.svc.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = e.users.Create(ctx, user.CreateInput{Name: "G", Email: "g@x.com", ExternalID: "google-1"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   auth.LoginInput
	}{
		{"wrong password", auth.LoginInput{Email: "a@x.com", Password: "wrong"}},
		{"unknown email", auth.LoginInput{Email: "nobody@x.com", Password: "secret1"}},
		{"external-only account", auth.LoginInput{Email: "g@x.com", Password: "anything"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.svc.Login(ctx, tt.in)
			require.ErrorIs(t, err, apperr.ErrUnauthorized)
			assert.Equal(t, auth.MsgInvalidCredentials, err.Error())
		})
	}
}

func TestLogin_TokenFailurePropagates(t *testing.T) {
	e := newEnv(t, failingTokens{})
	ctx := context.Background()
	_, err := e.svc.Register(ctx, auth.RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = e.svc.Login(ctx, auth.LoginInput{Email: "a@x.com", Password: "secret1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signer down")
	assert.NotErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestExternalLogin(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	u, err := e.users.Create(ctx, user.CreateInput{Name: "G", Email: "g@x.com", ExternalID: "google-1"})
	require.NoError(t, err)

	res, err := e.svc.ExternalLogin(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, u.Sanitize(), res.User)

	claims, err := jwt.Parse(res.AccessToken, []byte(secret))
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.Subject)

	stored, err := e.users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestExternalLogin_TouchFailureAborts(t *testing.T) {
	calls := 0
	tokens := tokenFunc(func(context.Context, user.User) (string, error) {
		calls++
		return "tok", nil
	})
	e := newEnv(t, tokens)
	ctx := context.Background()
	u, err := e.users.Create(ctx, user.CreateInput{Name: "G", Email: "g@x.com", ExternalID: "google-1"})
	require.NoError(t, err)

	e.repo.touchErr = errors.New("db gone")
	_, err = e.svc.ExternalLogin(ctx, u)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db gone")
	assert.Zero(t, calls)
}

type tokenFunc func(context.Context, user.User) (string, error)

func (f tokenFunc) Generate(ctx context.Context, u user.User) (string, error) { return f(ctx, u) }
