package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"marketplace/internal/domain"
	applog "marketplace/internal/log"
)

// fail reports domain errors as payloads: access denials with 403 and a
// machine-readable reason, validation and conflict failures with 200.
// Anything else goes to ErrorHandler.
func fail(c *fiber.Ctx, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		return err
	}
	switch de.Kind {
	case domain.KindUnauthenticated, domain.KindForbidden:
		applog.Security(c, "access.denied", map[string]any{"reason": de.Code})
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"Status": false, "Error": de.Code})
	default:
		return c.JSON(fiber.Map{"Status": false, "Errors": de.Message})
	}
}

func ok(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"Status": true})
}

// ErrorHandler renders unhandled errors without leaking internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return c.Status(fe.Code).JSON(fiber.Map{"Status": false, "Error": fe.Message})
	}
	applog.Error(c, "server.error", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"Status": false, "Error": "internal error"})
}

// NotFound is the catch-all for unknown routes.
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"Status": false, "Error": "not found"})
}
