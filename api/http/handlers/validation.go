package handlers

import (
	"net/mail"
	"strings"

	"github.com/artem13815/accounts/pkg/apperr"
	"github.com/artem13815/accounts/pkg/security/password"
	"github.com/artem13815/accounts/pkg/user"
)

const minPasswordLength = 6

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Invalid("name is required")
	}
	return nil
}

// validateEmail accepts a bare address only; "Name <a@b>" forms are rejected.
func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperr.Invalid("email must be a valid address")
	}
	return nil
}

func validatePassword(pw string) error {
	if len(pw) < minPasswordLength {
		return apperr.Invalid("password must be at least 6 characters")
	}
	if len(pw) > password.MaxLength {
		return apperr.Invalid("password must be at most 72 bytes")
	}
	return nil
}

func parseRole(raw string) (user.Role, error) {
	r := user.Role(raw)
	if !r.Valid() {
		return "", apperr.Invalid("role must be USER or ADMIN")
	}
	return r, nil
}
