package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"marketplace/internal/access"
	"marketplace/internal/domain"
	"marketplace/internal/services"
)

const sessionCookie = "sid"

// Identify resolves the caller from "Authorization: Token <token>" or the
// sid cookie and stores the identity in Locals. Requests without a valid
// session continue as anonymous; services decide whether that is enough.
func Identify(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := auth.Identify(c.UserContext(), sessionToken(c))
		if err != nil {
			return err
		}
		c.Locals("identity", id)
		if id.Authenticated {
			c.Locals("user_id", id.UserID)
		}
		return c.Next()
	}
}

// RequireRole stops the request before its body is read unless the caller is
// signed in and, when roles are given, holds one of them.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := access.Authorize(identity(c), roles...); err != nil {
			return fail(c, err)
		}
		return c.Next()
	}
}

func sessionToken(c *fiber.Ctx) string {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Token") {
		return strings.TrimSpace(tok)
	}
	return c.Cookies(sessionCookie)
}

func identity(c *fiber.Ctx) access.Identity {
	if id, ok := c.Locals("identity").(access.Identity); ok {
		return id
	}
	return access.Anonymous()
}
