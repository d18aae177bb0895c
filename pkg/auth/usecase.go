package auth

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/artem13815/accounts/pkg/apperr"
	"github.com/artem13815/accounts/pkg/user"
)

// MsgInvalidCredentials is returned for every failed password login so that
// callers cannot tell an unknown email from a wrong password.
const MsgInvalidCredentials = "Credenciais inválidas"

var tracer = otel.Tracer("github.com/artem13815/accounts/pkg/auth")

// AuthUseCase describes authentication/registration behavior.
type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (RegisterResult, error)
	Login(ctx context.Context, in LoginInput) (LoginResult, error)
	// ExternalLogin issues a session for an account already resolved by the
	// external identity strategy.
	ExternalLogin(ctx context.Context, u user.User) (ExternalLoginResult, error)
}

type authService struct {
	users  user.UseCase
	hasher user.PasswordHasher
	tokens TokenGenerator
	log    *zap.Logger
}

// NewAuthService returns default implementation of AuthUseCase.
func NewAuthService(users user.UseCase, hasher user.PasswordHasher, tokens TokenGenerator, log *zap.Logger) AuthUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{users: users, hasher: hasher, tokens: tokens, log: log.Named("auth")}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	ctx, span := tracer.Start(ctx, "auth.Register")
	defer span.End()

	created, err := s.users.Create(ctx, user.CreateInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     user.RoleUser,
	})
	if err != nil {
		return RegisterResult{}, err
	}
	s.log.Info("user registered", zap.String("user_id", created.ID.String()))
	return RegisterResult{UserID: created.ID}, nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	ctx, span := tracer.Start(ctx, "auth.Login")
	defer span.End()

	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil || !u.HasPassword() {
		s.log.Warn("login rejected", zap.String("reason", "unknown account"))
		return LoginResult{}, apperr.Unauthorized(MsgInvalidCredentials)
	}
	ok, err := s.hasher.Verify(ctx, in.Password, u.PasswordHash)
	if err != nil || !ok {
		s.log.Warn("login rejected", zap.String("user_id", u.ID.String()), zap.NamedError("verify_error", err))
		return LoginResult{}, apperr.Unauthorized(MsgInvalidCredentials)
	}

	if err := s.users.TouchLastLogin(ctx, u.ID); err != nil {
		return LoginResult{}, err
	}
	token, err := s.tokens.Generate(ctx, *u)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}
	span.SetAttributes(attribute.String("user.id", u.ID.String()))
	s.log.Info("login succeeded", zap.String("user_id", u.ID.String()))

	return LoginResult{
		User:        LoginUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
		AccessToken: token,
	}, nil
}

func (s *authService) ExternalLogin(ctx context.Context, u user.User) (ExternalLoginResult, error) {
	ctx, span := tracer.Start(ctx, "auth.ExternalLogin")
	defer span.End()

	// A failed timestamp write aborts the login; no token is minted.
	if err := s.users.TouchLastLogin(ctx, u.ID); err != nil {
		return ExternalLoginResult{}, err
	}
	token, err := s.tokens.Generate(ctx, u)
	if err != nil {
		return ExternalLoginResult{}, fmt.Errorf("sign token: %w", err)
	}
	s.log.Info("external login succeeded", zap.String("user_id", u.ID.String()))
	return ExternalLoginResult{User: u.Sanitize(), AccessToken: token}, nil
}
