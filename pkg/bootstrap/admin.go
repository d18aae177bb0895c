// Package bootstrap provisions the data a fresh deployment needs.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/artem13815/accounts/pkg/user"
)

// AdminSeed describes the administrator to provision.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

// SeedAdmin creates the administrator unless the email is already taken.
// It reports whether an account was created.
func SeedAdmin(ctx context.Context, users user.UseCase, seed AdminSeed, log *zap.Logger) (bool, error) {
	existing, err := users.FindByEmail(ctx, seed.Email)
	if err != nil {
		return false, fmt.Errorf("lookup admin: %w", err)
	}
	if existing != nil {
		if !existing.IsAdmin() {
			log.Warn("admin seed email belongs to a non-admin account", zap.String("user_id", existing.ID.String()))
		}
		return false, nil
	}

	created, err := users.Create(ctx, user.CreateInput{
		Name:     seed.Name,
		Email:    seed.Email,
		Password: seed.Password,
		Role:     user.RoleAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	log.Info("admin account seeded", zap.String("user_id", created.ID.String()))
	return true, nil
}
