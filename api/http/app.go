package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/artem13815/accounts/api/http/handlers"
)

// NewApp creates a Fiber app with the shared middleware stack.
func NewApp(log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "accounts API v1",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		ErrorHandler: handlers.ErrorHandler(log),
	})
	app.Use(fiberrecover.New())
	app.Use(requestid.New())
	app.Use(handlers.RequestLogger(log))
	return app
}
