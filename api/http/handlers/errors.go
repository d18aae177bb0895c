package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/accounts/api/http/presenter"
	"github.com/artem13815/accounts/pkg/apperr"
)

const msgInternal = "internal server error"

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a domain error. Causes of 500s are logged, not returned.
func writeError(c *fiber.Ctx, log *zap.Logger, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
		)
		return presenter.Error(c, status, msgInternal)
	}
	msg, ok := apperr.Message(err)
	if !ok {
		msg = err.Error()
	}
	return presenter.Error(c, status, msg)
}

// ErrorHandler is the app-level fallback for errors returned by handlers
// and middleware.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return presenter.Error(c, fe.Code, fe.Message)
		}
		return writeError(c, log, err)
	}
}
