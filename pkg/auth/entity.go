package auth

import (
	"github.com/google/uuid"

	"github.com/artem13815/accounts/pkg/user"
)

// RegisterInput is the self-service sign-up payload. Any role the caller
// might send is ignored; registered accounts are always USER.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type RegisterResult struct {
	UserID uuid.UUID `json:"userId"`
}

// LoginUser is the profile subset returned by a password login.
type LoginUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  user.Role `json:"role"`
}

type LoginResult struct {
	User        LoginUser `json:"user"`
	AccessToken string    `json:"accessToken"`
}

// ExternalLoginResult echoes the resolved account as handed over by the
// external identity strategy.
type ExternalLoginResult struct {
	User        user.Profile `json:"user"`
	AccessToken string       `json:"accessToken"`
}
