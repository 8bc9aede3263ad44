package handlers

import (
	"github.com/gofiber/fiber/v2"

	"marketplace/internal/domain"
	applog "marketplace/internal/log"
	"marketplace/internal/services"
)

type BasketHandler struct {
	Basket *services.BasketService
}

type addResponse struct {
	Status     bool               `json:"Status"`
	Created    int                `json:"created_count"`
	ItemErrors []domain.ItemError `json:"item_errors,omitempty"`
}

type updateResponse struct {
	Status     bool               `json:"Status"`
	Updated    int                `json:"updated_count"`
	ItemErrors []domain.ItemError `json:"item_errors,omitempty"`
}

// Get returns the basket as a list holding zero or one order.
func (h *BasketHandler) Get(c *fiber.Ctx) error {
	v, err := h.Basket.GetBasket(c.UserContext(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	out := []domain.OrderView{}
	if v != nil {
		out = append(out, *v)
	}
	return c.JSON(out)
}

func (h *BasketHandler) Add(c *fiber.Ctx) error {
	var req itemsRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	res, err := h.Basket.AddItems(c.UserContext(), identity(c), req.Items)
	if err != nil {
		return fail(c, err)
	}
	if len(res.Errors) > 0 {
		applog.Info(c, "basket.add.partial", map[string]any{"created": res.Count, "rejected": len(res.Errors)})
	}
	return c.JSON(addResponse{Status: true, Created: res.Count, ItemErrors: res.Errors})
}

func (h *BasketHandler) Update(c *fiber.Ctx) error {
	var req itemsRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	res, err := h.Basket.UpdateItems(c.UserContext(), identity(c), req.Items)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(updateResponse{Status: true, Updated: res.Count, ItemErrors: res.Errors})
}

func (h *BasketHandler) Delete(c *fiber.Ctx) error {
	var req itemsRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	ids := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.ProductInfo)
	}
	n, err := h.Basket.RemoveItems(c.UserContext(), identity(c), ids)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"Status": true, "deleted_count": n})
}
