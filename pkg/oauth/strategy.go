package oauth

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/artem13815/accounts/pkg/auth"
	"github.com/artem13815/accounts/pkg/user"
)

var tracer = otel.Tracer("github.com/artem13815/accounts/pkg/oauth")

// ExternalLoginer issues a session for an already resolved account.
type ExternalLoginer interface {
	ExternalLogin(ctx context.Context, u user.User) (auth.ExternalLoginResult, error)
}

// Strategy turns a provider profile into a local account and a session.
type Strategy struct {
	users user.UseCase
	login ExternalLoginer
	log   *zap.Logger
}

func NewStrategy(users user.UseCase, login ExternalLoginer, log *zap.Logger) *Strategy {
	if log == nil {
		log = zap.NewNop()
	}
	return &Strategy{users: users, login: login, log: log.Named("oauth")}
}

// Resolve finds the account linked to p.ProviderID or creates one. A found
// account is re-persisted with the same external id, so every resolution of
// a known identity costs exactly one store write.
func (s *Strategy) Resolve(ctx context.Context, p Profile) (user.User, error) {
	ctx, span := tracer.Start(ctx, "oauth.Resolve")
	defer span.End()

	if err := p.Validate(); err != nil {
		return user.User{}, err
	}

	existing, err := s.users.FindByExternalID(ctx, p.ProviderID)
	if err != nil {
		return user.User{}, fmt.Errorf("lookup external identity: %w", err)
	}
	if existing != nil {
		providerID := p.ProviderID
		linked, err := s.users.Update(ctx, existing.ID, user.Patch{ExternalID: &providerID}, *existing)
		if err != nil {
			return user.User{}, err
		}
		return linked, nil
	}

	created, err := s.users.Create(ctx, user.CreateInput{
		Name:       p.Name(),
		Email:      p.Email,
		Role:       user.RoleUser,
		ExternalID: p.ProviderID,
	})
	if err != nil {
		return user.User{}, err
	}
	s.log.Info("external account created", zap.String("user_id", created.ID.String()))
	return created, nil
}

// Login resolves the profile and hands the account to the session issuer.
func (s *Strategy) Login(ctx context.Context, p Profile) (auth.ExternalLoginResult, error) {
	u, err := s.Resolve(ctx, p)
	if err != nil {
		return auth.ExternalLoginResult{}, err
	}
	return s.login.ExternalLogin(ctx, u)
}
