package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/accounts/api/http/presenter"
	"github.com/artem13815/accounts/pkg/auth"
	"github.com/artem13815/accounts/pkg/oauth"
)

const msgProviderDenied = "login com Google não autorizado"

// ExternalLogin is the reconciliation step run on a provider callback.
type ExternalLogin interface {
	Login(ctx context.Context, p oauth.Profile) (auth.ExternalLoginResult, error)
}

// GoogleHandler runs the Google redirect flow. A nil provider means the
// integration is not configured and both routes answer 503.
type GoogleHandler struct {
	provider    oauth.Provider
	states      oauth.StateStore
	strategy    ExternalLogin
	frontendURL string
	log         *zap.Logger
}

func NewGoogleHandler(provider oauth.Provider, states oauth.StateStore, strategy ExternalLogin, frontendURL string, log *zap.Logger) *GoogleHandler {
	return &GoogleHandler{
		provider:    provider,
		states:      states,
		strategy:    strategy,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
	}
}

// Login redirects the browser to Google.
// @Summary Fazer login com Google
// @Tags    auth
// @Success 302
// @Failure 503 {object} presenter.ErrorResponse
// @Router  /auth/google/login [get]
func (h *GoogleHandler) Login(c *fiber.Ctx) error {
	if h.provider == nil {
		return presenter.Error(c, http.StatusServiceUnavailable, "google login is not configured")
	}
	state, err := h.states.Issue(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Redirect(h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the Google flow and hands the session token to the frontend.
func (h *GoogleHandler) Callback(c *fiber.Ctx) error {
	if h.provider == nil {
		return presenter.Error(c, http.StatusServiceUnavailable, "google login is not configured")
	}
	if e := c.Query("error"); e != "" {
		h.log.Warn("google login denied", zap.String("provider_error", e))
		return presenter.Error(c, http.StatusUnauthorized, msgProviderDenied)
	}
	if err := h.states.Consume(c.Context(), c.Query("state")); err != nil {
		return writeError(c, h.log, err)
	}
	code := c.Query("code")
	if code == "" {
		return presenter.Error(c, http.StatusBadRequest, "missing code")
	}

	profile, err := h.provider.Exchange(c.Context(), code)
	if err != nil {
		h.log.Warn("google exchange failed", zap.Error(err))
		return presenter.Error(c, http.StatusBadGateway, "failed to fetch provider profile")
	}
	result, err := h.strategy.Login(c.Context(), profile)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Redirect(h.frontendURL+"/auth/success?token="+url.QueryEscape(result.AccessToken), http.StatusFound)
}
