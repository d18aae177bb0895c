package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/accounts/api/http/presenter"
	"github.com/artem13815/accounts/pkg/security/jwt"
	"github.com/artem13815/accounts/pkg/user"
)

const localCurrentUser = "currentUser"

// RequestLogger logs one line per request.
func RequestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		requestID, _ := c.Locals("requestid").(string)
		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", requestID),
		)
		return nil
	}
}

// CurrentUser loads the account named by the token subject. Tokens of
// deleted accounts are rejected, and role checks downstream use the stored
// role rather than the one frozen into the token.
func CurrentUser(users user.UseCase, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sub, _ := c.Locals(jwt.LocalUserID).(string)
		id, err := uuid.Parse(sub)
		if err != nil {
			return presenter.Error(c, http.StatusUnauthorized, "invalid token subject")
		}
		u, err := users.FindByID(c.Context(), id)
		if err != nil {
			if statusFor(err) == http.StatusNotFound {
				return presenter.Error(c, http.StatusUnauthorized, "account no longer exists")
			}
			return writeError(c, log, err)
		}
		c.Locals(localCurrentUser, u)
		return c.Next()
	}
}

// RequireRole admits the current user only when it holds one of roles.
func RequireRole(roles ...user.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := currentUser(c)
		if !ok {
			return presenter.Error(c, http.StatusUnauthorized, "authentication required")
		}
		for _, r := range roles {
			if u.Role == r {
				return c.Next()
			}
		}
		return presenter.Error(c, http.StatusForbidden, "Acesso negado")
	}
}

func currentUser(c *fiber.Ctx) (user.User, bool) {
	u, ok := c.Locals(localCurrentUser).(user.User)
	return u, ok
}
