package domain

// LineItem is one entry of an ordered_items request body.
type LineItem struct {
	ProductInfo int64 `json:"product_info" validate:"required,gt=0"`
	Quantity    int   `json:"quantity" validate:"gte=1"`
}

// BatchResult is the outcome of a basket add or update.
type BatchResult struct {
	Count  int
	Errors []ItemError
}
