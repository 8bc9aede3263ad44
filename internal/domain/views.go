package domain

import "github.com/shopspring/decimal"

// Read models assembled by explicit joins in the repos.

type ParameterValue struct {
	Parameter string `db:"parameter" json:"parameter"`
	Value     string `db:"value" json:"value"`
}

type ListingView struct {
	ID         int64            `json:"id"`
	ExternalID int64            `json:"external_id"`
	Model      string           `json:"model"`
	Product    Product          `json:"product"`
	ShopID     int64            `json:"shop"`
	ShopName   string           `json:"shop_name"`
	Quantity   int              `json:"quantity"`
	Price      decimal.Decimal  `json:"price"`
	PriceRRC   decimal.Decimal  `json:"price_rrc"`
	Parameters []ParameterValue `json:"product_parameters"`
}

type OrderItemView struct {
	ID          int64       `json:"id"`
	ProductInfo ListingView `json:"product_info"`
	Quantity    int         `json:"quantity"`
}

type OrderView struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user"`
	State     OrderState      `json:"state"`
	CreatedAt string          `json:"dt"`
	Items     []OrderItemView `json:"ordered_items"`
	Total     decimal.Decimal `json:"total_sum"`
}

// Sum returns Σ price × quantity over the stored line items.
func (o *OrderView) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.ProductInfo.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
