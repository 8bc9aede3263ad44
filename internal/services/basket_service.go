package services

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/access"
	"marketplace/internal/domain"
	"marketplace/internal/repos"
	"marketplace/internal/validate"
)

// BasketService manages the caller's single mutable basket order.
type BasketService struct {
	Orders  *repos.OrderRepo
	Catalog *repos.CatalogRepo
}

func NewBasketService(orders *repos.OrderRepo, catalog *repos.CatalogRepo) *BasketService {
	return &BasketService{Orders: orders, Catalog: catalog}
}

// EnsureBasket returns the caller's basket id, creating the basket if needed.
func (s *BasketService) EnsureBasket(ctx context.Context, id access.Identity) (int64, error) {
	if err := access.Authorize(id, domain.RoleBuyer); err != nil {
		return 0, err
	}
	basket, err := s.Orders.EnsureBasket(ctx, id.UserID)
	if err != nil {
		return 0, fmt.Errorf("ensure basket: %w", err)
	}
	return basket, nil
}

// GetBasket returns the caller's basket, or nil when there is none.
func (s *BasketService) GetBasket(ctx context.Context, id access.Identity) (*domain.OrderView, error) {
	if err := access.Authorize(id, domain.RoleBuyer); err != nil {
		return nil, err
	}
	v, err := s.Orders.BasketView(ctx, id.UserID)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

// AddItems creates a basket line per item. Invalid items, unknown listings
// and listings already in the basket are reported per item; the remaining
// items are still added.
func (s *BasketService) AddItems(ctx context.Context, id access.Identity, items []domain.LineItem) (domain.BatchResult, error) {
	if err := access.Authorize(id, domain.RoleBuyer); err != nil {
		return domain.BatchResult{}, err
	}
	if len(items) == 0 {
		return domain.BatchResult{}, domain.ErrNoItems
	}
	basket, err := s.EnsureBasket(ctx, id)
	if err != nil {
		return domain.BatchResult{}, err
	}

	var res domain.BatchResult
	for _, it := range items {
		if err := validate.Struct(it); err != nil {
			res.Errors = append(res.Errors, itemError(it, err))
			continue
		}
		if _, err := s.Catalog.Listing(ctx, it.ProductInfo); err != nil {
			if errors.Is(err, repos.ErrNotFound) {
				res.Errors = append(res.Errors, itemError(it, domain.ErrListingNotFound))
				continue
			}
			return res, fmt.Errorf("listing %d: %w", it.ProductInfo, err)
		}
		created, err := s.Orders.AddItem(ctx, basket, it.ProductInfo, it.Quantity)
		if errors.Is(err, domain.ErrListingNotFound) {
			res.Errors = append(res.Errors, itemError(it, err))
			continue
		}
		if err != nil {
			return res, err
		}
		if !created {
			res.Errors = append(res.Errors, itemError(it, domain.ErrDuplicateItem))
			continue
		}
		res.Count++
	}
	return res, nil
}

// UpdateItems sets the quantity of every listed basket line. Lines that are
// not in the basket are skipped silently.
func (s *BasketService) UpdateItems(ctx context.Context, id access.Identity, items []domain.LineItem) (domain.BatchResult, error) {
	if err := access.Authorize(id, domain.RoleBuyer); err != nil {
		return domain.BatchResult{}, err
	}
	if len(items) == 0 {
		return domain.BatchResult{}, domain.ErrNoItems
	}
	basket, err := s.EnsureBasket(ctx, id)
	if err != nil {
		return domain.BatchResult{}, err
	}

	var res domain.BatchResult
	for _, it := range items {
		if err := validate.Struct(it); err != nil {
			res.Errors = append(res.Errors, itemError(it, err))
			continue
		}
		n, err := s.Orders.UpdateItemQty(ctx, basket, it.ProductInfo, it.Quantity)
		if err != nil {
			return res, fmt.Errorf("update line %d: %w", it.ProductInfo, err)
		}
		res.Count += int(n)
	}
	return res, nil
}

// RemoveItems deletes the listed listings from the basket in one statement
// and returns how many lines went away.
func (s *BasketService) RemoveItems(ctx context.Context, id access.Identity, productInfoIDs []int64) (int64, error) {
	if err := access.Authorize(id, domain.RoleBuyer); err != nil {
		return 0, err
	}
	if len(productInfoIDs) == 0 {
		return 0, domain.ErrNoItems
	}
	for _, pid := range productInfoIDs {
		if pid <= 0 {
			return 0, domain.Validation("ordered_items: product_info must be a positive id")
		}
	}
	basket, err := s.EnsureBasket(ctx, id)
	if err != nil {
		return 0, err
	}
	n, err := s.Orders.DeleteItems(ctx, basket, productInfoIDs)
	if err != nil {
		return 0, fmt.Errorf("delete lines: %w", err)
	}
	return n, nil
}

func itemError(it domain.LineItem, err error) domain.ItemError {
	return domain.ItemError{ProductInfo: it.ProductInfo, Error: err.Error()}
}
