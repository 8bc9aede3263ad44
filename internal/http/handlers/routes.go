package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"marketplace/internal/domain"
	applog "marketplace/internal/log"
)

// Register mounts the JSON API under /api/v1.
func Register(app *fiber.App, d *Deps) {
	api := app.Group("/api/v1", Identify(d.Auth))
	signedIn := RequireRole()
	buyer := RequireRole(domain.RoleBuyer)
	shop := RequireRole(domain.RoleShop)

	credentials := limiter.New(limiter.Config{
		Max:        10,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"Status": false, "Error": "too many attempts"})
		},
	})

	api.Post("/user/register", credentials, d.AuthHandler.Register)
	api.Post("/user/login", credentials, d.AuthHandler.Login)
	api.Post("/user/logout", signedIn, d.AuthHandler.Logout)
	api.Get("/user/details", signedIn, d.AuthHandler.Account)

	api.Get("/products", d.CatalogHandler.Products)
	api.Get("/products/info", d.CatalogHandler.Listings)
	api.Get("/categories", d.CatalogHandler.Categories)
	api.Get("/shops", d.CatalogHandler.Shops)

	api.Get("/basket", buyer, d.BasketHandler.Get)
	api.Post("/basket", buyer, d.BasketHandler.Add)
	api.Post("/basket/update", buyer, d.BasketHandler.Update)
	api.Put("/basket", buyer, d.BasketHandler.Update)
	api.Post("/basket/delete", buyer, d.BasketHandler.Delete)
	api.Delete("/basket", buyer, d.BasketHandler.Delete)

	api.Get("/order", buyer, d.OrderHandler.List)
	api.Post("/order", buyer, d.OrderHandler.Place)

	api.Post("/partner/update", shop, d.PartnerHandler.Update)
	api.Get("/partner/orders", shop, d.PartnerHandler.Orders)
	api.Get("/partner/products", shop, d.PartnerHandler.Listings)
	api.Get("/partner/state", shop, d.PartnerHandler.State)
	api.Post("/partner/state", shop, d.PartnerHandler.SetState)
}
