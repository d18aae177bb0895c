package jwt

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the middleware.
const (
	LocalUserID = "userId"
	LocalRole   = "role"
	LocalEmail  = "email"
)

// NewAuthMiddleware returns a Fiber middleware that validates Bearer JWT (HS256).
// On success sets subject, role and email into c.Locals.
func NewAuthMiddleware(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "missing Authorization header"})
		}
		tokenStr := extractToken(authHeader)
		if tokenStr == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "empty token"})
		}
		claims, err := Parse(tokenStr, secretBytes)
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
		}
		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalRole, string(claims.Role))
		c.Locals(LocalEmail, claims.Email)
		return c.Next()
	}
}

// extractToken supports both "Bearer <token>" and "<token>" (no prefix).
func extractToken(header string) string {
	header = strings.TrimSpace(header)
	if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return header
}
