package http

import (
	"github.com/gofiber/fiber/v2"
	swagger "github.com/gofiber/swagger"

	"github.com/artem13815/accounts/api/http/handlers"
	"github.com/artem13815/accounts/pkg/user"
)

// Routes groups what Register mounts.
type Routes struct {
	Auth   *handlers.AuthHandler
	Google *handlers.GoogleHandler
	Users  *handlers.UsersHandler
	Health *handlers.HealthHandler

	// Authn verifies the bearer token; CurrentUser loads its account.
	Authn       fiber.Handler
	CurrentUser fiber.Handler
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, r Routes) {
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Health and readiness endpoints for probes/monitoring
	v1.Get("/health", r.Health.Health)
	v1.Get("/ready", r.Health.Ready)

	a := v1.Group("/auth")
	a.Post("/register", r.Auth.Register)
	a.Post("/login", r.Auth.Login)
	a.Get("/google/login", r.Google.Login)
	a.Get("/google/callback", r.Google.Callback)

	admin := handlers.RequireRole(user.RoleAdmin)
	u := v1.Group("/users", r.Authn, r.CurrentUser)
	u.Post("/", admin, r.Users.Create)
	u.Get("/", r.Users.List)
	u.Get("/inactive", admin, r.Users.Inactive)
	u.Get("/me", r.Users.Me)
	u.Get("/:id", r.Users.Get)
	u.Patch("/:id", r.Users.Update)
	u.Delete("/:id", admin, r.Users.Delete)

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)
}
