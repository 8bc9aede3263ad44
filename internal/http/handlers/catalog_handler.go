package handlers

import (
	"github.com/gofiber/fiber/v2"

	"marketplace/internal/repos"
	"marketplace/internal/services"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

func (h *CatalogHandler) Products(c *fiber.Ctx) error {
	out, err := h.Catalog.Products(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	out, err := h.Catalog.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *CatalogHandler) Shops(c *fiber.Ctx) error {
	out, err := h.Catalog.Shops(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Listings serves GET /products/info?shop_id=&category_id=.
func (h *CatalogHandler) Listings(c *fiber.Ctx) error {
	var f repos.ListingFilter
	var err error
	if f.ShopID, err = queryID(c, "shop_id"); err != nil {
		return fail(c, err)
	}
	if f.CategoryID, err = queryID(c, "category_id"); err != nil {
		return fail(c, err)
	}
	out, err := h.Catalog.Listings(c.UserContext(), f)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
