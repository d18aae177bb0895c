package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleUserInfoURL is the OpenID Connect userinfo endpoint.
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleConfig holds the client registration.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Enabled reports whether credentials are configured.
func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type GoogleProvider struct {
	cfg         *oauth2.Config
	userInfoURL string
}

// GoogleOption customizes the provider, mostly for tests.
type GoogleOption func(*GoogleProvider)

func WithEndpoint(ep oauth2.Endpoint) GoogleOption {
	return func(p *GoogleProvider) { p.cfg.Endpoint = ep }
}

func WithUserInfoURL(u string) GoogleOption {
	return func(p *GoogleProvider) { p.userInfoURL = u }
}

func NewGoogleProvider(c GoogleConfig, opts ...GoogleOption) *GoogleProvider {
	p := &GoogleProvider{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.CallbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: GoogleUserInfoURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (Profile, error) {
	tok, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Profile{}, errors.New("profile request failed")
	}

	var payload struct {
		Sub        string `json:"sub"`
		Name       string `json:"name"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Email      string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	return Profile{
		ProviderID:  payload.Sub,
		DisplayName: payload.Name,
		GivenName:   payload.GivenName,
		FamilyName:  payload.FamilyName,
		Email:       payload.Email,
	}, nil
}
