package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "marketplace/internal/log"
	"marketplace/internal/services"
)

type OrderHandler struct {
	Order *services.OrderService
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	out, err := h.Order.ListOrders(c.UserContext(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req struct {
		ID flexID `json:"id"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	if err := h.Order.PlaceOrder(c.UserContext(), identity(c), int64(req.ID)); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "order.place", map[string]any{"order_id": int64(req.ID)})
	return ok(c)
}
