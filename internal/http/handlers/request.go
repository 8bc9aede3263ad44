package handlers

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"marketplace/internal/domain"
	applog "marketplace/internal/log"
)

// lineItems accepts ordered_items either as a JSON array or as a string
// holding one, which is what form-style clients send.
type lineItems []domain.LineItem

func (l *lineItems) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*l = nil
			return nil
		}
		b = []byte(s)
	}
	var items []domain.LineItem
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// flexID accepts a number or a numeric string.
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexID(n)
	return nil
}

type itemsRequest struct {
	Items lineItems `json:"ordered_items"`
}

var errMalformedBody = domain.Validation("request body: malformed JSON")

// parseBody decodes a JSON body. Malformed bodies are reported as a fixed
// validation failure; decoder detail stays in the debug log.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(c.Body(), out); err != nil {
		applog.L().Debug("request body rejected", zap.String("path", c.Path()), zap.Error(err))
		return errMalformedBody
	}
	return nil
}

// queryID reads an optional positive integer query parameter.
func queryID(c *fiber.Ctx, name string) (int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, domain.Validation(name + ": must be a positive integer")
	}
	return n, nil
}
