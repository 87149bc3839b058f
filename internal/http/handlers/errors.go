package handlers

import (
	"errors"

	applog "hrauth/internal/log"
	"hrauth/internal/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error to its HTTP status. Internal causes are
// logged and replaced by the error's generic message.
func respondError(c *fiber.Ctx, action string, err error, fields map[string]any) error {
	kind, msg := services.Classify(err)
	switch kind {
	case services.Unauthorized:
		c.Status(fiber.StatusUnauthorized)
		applog.Security(c, action+".fail", fields)
	case services.Conflict:
		c.Status(fiber.StatusBadRequest)
		applog.Security(c, action+".conflict", fields)
	default:
		c.Status(fiber.StatusInternalServerError)
		applog.Error(c, action+".error", err, fields)
	}
	return c.JSON(fiber.Map{"detail": msg})
}

func invalid(c *fiber.Ctx, action, msg string) error {
	c.Status(fiber.StatusUnprocessableEntity)
	applog.Security(c, action+".invalid", map[string]any{"reason": msg})
	return c.JSON(fiber.Map{"detail": msg})
}

// ErrorHandler renders framework errors (unknown route, oversized body,
// recovered panic) as JSON without leaking internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			msg = fe.Message
		}
	}
	c.Status(code)
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	return c.JSON(fiber.Map{"detail": msg})
}
