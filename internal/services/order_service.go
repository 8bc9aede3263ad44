package services

import (
	"context"

	"marketplace/internal/access"
	"marketplace/internal/domain"
	"marketplace/internal/repos"
)

type OrderService struct {
	Orders *repos.OrderRepo
}

func NewOrderService(orders *repos.OrderRepo) *OrderService {
	return &OrderService{Orders: orders}
}

// PlaceOrder turns the caller's basket orderID into a new order. Any other
// order id, including baskets of other users, reports basket not found.
func (s *OrderService) PlaceOrder(ctx context.Context, id access.Identity, orderID int64) error {
	if err := access.Authorize(id, domain.RoleBuyer); err != nil {
		return err
	}
	if orderID <= 0 {
		return domain.Validation("id: is required")
	}
	return s.Orders.PlaceBasket(ctx, id.UserID, orderID)
}

// ListOrders returns the caller's placed orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, id access.Identity) ([]domain.OrderView, error) {
	if err := access.Authorize(id, domain.RoleBuyer); err != nil {
		return nil, err
	}
	return s.Orders.ListByUser(ctx, id.UserID)
}
