package oauth

import (
	"strings"

	"github.com/artem13815/accounts/pkg/apperr"
)

// Profile is what a provider tells us about the person signing in.
type Profile struct {
	ProviderID  string
	DisplayName string
	GivenName   string
	FamilyName  string
	Email       string
}

// Validate rejects payloads that cannot be linked to an account.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.ProviderID) == "" {
		return apperr.Invalid("perfil externo sem identificador")
	}
	if strings.TrimSpace(p.Email) == "" {
		return apperr.Invalid("perfil externo sem email")
	}
	return nil
}

// Name is "given family" when the provider supplies either part, otherwise
// the display name, otherwise the email.
func (p Profile) Name() string {
	full := strings.TrimSpace(strings.TrimSpace(p.GivenName) + " " + strings.TrimSpace(p.FamilyName))
	return firstNonEmpty(full, p.DisplayName, p.Email)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
