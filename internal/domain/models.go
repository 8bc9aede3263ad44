package domain

import "github.com/shopspring/decimal"

type Shop struct {
	ID     int64  `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	UserID int64  `db:"user_id" json:"-"`
	URL    string `db:"url" json:"url,omitempty"`
	IsOpen bool   `db:"is_open" json:"state"`
}

type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Product struct {
	ID         int64  `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	CategoryID int64  `db:"category_id" json:"category_id"`
	Category   string `db:"category" json:"category"`
}

// ProductInfo is a shop's listing of a product.
type ProductInfo struct {
	ID         int64           `db:"id"`
	ProductID  int64           `db:"product_id"`
	ShopID     int64           `db:"shop_id"`
	ExternalID int64           `db:"external_id"`
	Model      string          `db:"model"`
	Price      decimal.Decimal `db:"price"`
	PriceRRC   decimal.Decimal `db:"price_rrc"`
	Quantity   int             `db:"quantity"`
}

type Parameter struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type ProductParameter struct {
	ProductInfoID int64  `db:"product_info_id"`
	ParameterID   int64  `db:"parameter_id"`
	Value         string `db:"value"`
}

type OrderState string

const (
	StateBasket    OrderState = "basket"
	StateNew       OrderState = "new"
	StateConfirmed OrderState = "confirmed"
	StateAssembled OrderState = "assembled"
	StateSent      OrderState = "sent"
	StateDelivered OrderState = "delivered"
	StateCanceled  OrderState = "canceled"
)

type Order struct {
	ID        int64      `db:"id"`
	UserID    int64      `db:"user_id"`
	State     OrderState `db:"state"`
	CreatedAt string     `db:"created_at"`
	UpdatedAt string     `db:"updated_at"`
}

type OrderItem struct {
	ID            int64 `db:"id"`
	OrderID       int64 `db:"order_id"`
	ProductInfoID int64 `db:"product_info_id"`
	Quantity      int   `db:"quantity"`
}
