package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"marketplace/internal/domain"
	applog "marketplace/internal/log"
	"marketplace/internal/services"
	"marketplace/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

// Register signs a new buyer or partner up. The caller logs in afterwards.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req domain.Registration
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	u, err := h.Auth.Register(c.UserContext(), req)
	if err != nil {
		if domain.KindOf(err) != 0 {
			applog.Info(c, "auth.register.rejected", map[string]any{"reason": err.Error()})
		}
		return fail(c, err)
	}
	c.Locals("user_id", u.ID)
	applog.Audit(c, "auth.register", map[string]any{"email": u.Email, "role": string(u.Role)})
	return c.JSON(fiber.Map{"Status": true, "User": u})
}

// Account returns the caller's own user record.
func (h *AuthHandler) Account(c *fiber.Ctx) error {
	u, err := h.Auth.Account(c.UserContext(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(u)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if err := validate.Struct(req); err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"reason": "bad_format"})
		return fail(c, err)
	}

	token, u, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if errors.Is(err, services.ErrBadCreds) {
		applog.Security(c, "auth.login.fail", map[string]any{"email": req.Email})
		return c.JSON(fiber.Map{"Status": false, "Errors": "invalid email or password"})
	}
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals("user_id", u.ID)
	applog.Audit(c, "auth.login.success", map[string]any{"email": u.Email, "role": string(u.Role)})
	return c.JSON(fiber.Map{"Status": true, "Token": token})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.Auth.Logout(c.UserContext(), sessionToken(c)); err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	applog.Audit(c, "auth.logout", nil)
	return ok(c)
}
