package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"marketplace/internal/domain"
	applog "marketplace/internal/log"
	"marketplace/internal/services"
)

type PartnerHandler struct {
	Import  *services.ImportService
	Partner *services.PartnerService
}

// Update imports the catalog document found at the posted url.
func (h *PartnerHandler) Update(c *fiber.Ctx) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	res, err := h.Import.Import(c.UserContext(), identity(c), strings.TrimSpace(req.URL))
	if err != nil {
		if domain.KindOf(err) == domain.KindValidation || domain.KindOf(err) == domain.KindConflict {
			applog.Info(c, "partner.import.rejected", map[string]any{"url": req.URL, "reason": err.Error()})
		}
		return fail(c, err)
	}
	applog.Audit(c, "partner.import", map[string]any{
		"url": req.URL, "shop_id": res.ShopID, "categories": res.Categories, "goods": res.Goods,
	})
	return ok(c)
}

func (h *PartnerHandler) Orders(c *fiber.Ctx) error {
	out, err := h.Partner.PartnerOrders(c.UserContext(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *PartnerHandler) State(c *fiber.Ctx) error {
	shop, err := h.Partner.State(c.UserContext(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(shop)
}

func (h *PartnerHandler) Listings(c *fiber.Ctx) error {
	out, err := h.Partner.Listings(c.UserContext(), identity(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// SetState accepts {"state": "on"|"off"} or any boolean spelling.
func (h *PartnerHandler) SetState(c *fiber.Ctx) error {
	var req struct {
		State any `json:"state"`
	}
	if err := parseBody(c, &req); err != nil {
		return fail(c, err)
	}
	open, err := parseState(req.State)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Partner.SetState(c.UserContext(), identity(c), open); err != nil {
		return fail(c, err)
	}
	applog.Audit(c, "partner.state", map[string]any{"open": open})
	return ok(c)
}

func parseState(v any) (bool, error) {
	switch s := v.(type) {
	case bool:
		return s, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "on", "open", "yes":
			return true, nil
		case "off", "closed", "no":
			return false, nil
		}
		if b, err := strconv.ParseBool(s); err == nil {
			return b, nil
		}
	}
	return false, domain.Validation("state: must be on or off")
}
