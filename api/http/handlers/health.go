package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/accounts/pkg/health"
)

// readyTimeout bounds all checkers of one readiness probe.
const readyTimeout = 2 * time.Second

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	svc health.ReadinessUseCase
	log *zap.Logger
}

func NewHealthHandler(svc health.ReadinessUseCase, log *zap.Logger) *HealthHandler {
	return &HealthHandler{svc: svc, log: log}
}

type readyResponse struct {
	Status string          `json:"status"`
	Checks []health.Result `json:"checks"`
}

// Health: basic liveness check.
// @Summary Liveness probe
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]string
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

// Ready runs every configured checker and reports each one by name.
// @Summary Readiness probe
// @Tags    health
// @Produce json
// @Success 200 {object} readyResponse
// @Failure 503 {object} readyResponse
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), readyTimeout)
	defer cancel()
	checks, err := h.svc.Ready(ctx)
	if err != nil {
		h.log.Warn("readiness check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(readyResponse{Status: "not_ready", Checks: checks})
	}
	return c.Status(fiber.StatusOK).JSON(readyResponse{Status: "ready", Checks: checks})
}
