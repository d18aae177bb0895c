package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/artem13815/accounts/pkg/repository/memory"
	"github.com/artem13815/accounts/pkg/user"
)

type plainHasher struct{}

func (plainHasher) Hash(_ context.Context, p string) (string, error)    { return "h:" + p, nil }
func (plainHasher) Verify(_ context.Context, p, d string) (bool, error) { return d == "h:"+p, nil }

func TestSeedAdmin_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository()
	users := user.NewService(repo, plainHasher{}, nil)
	seed := AdminSeed{Name: "Root", Email: "root@x.com", Password: "secret1"}

	created, err := SeedAdmin(ctx, users, seed, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, created)

	created, err = SeedAdmin(ctx, users, seed, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, repo.Len())

	admin, err := users.FindByEmail(ctx, "root@x.com")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, user.RoleAdmin, admin.Role)
	assert.Equal(t, "h:secret1", admin.PasswordHash)
}
