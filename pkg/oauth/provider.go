package oauth

import "context"

// Provider is one external identity provider's redirect flow.
type Provider interface {
	// AuthCodeURL is where the browser is sent to sign in.
	AuthCodeURL(state string) string
	// Exchange trades the callback code for the signed-in profile.
	Exchange(ctx context.Context, code string) (Profile, error)
}
