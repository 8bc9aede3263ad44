package services

import (
	"context"
	"errors"

	"marketplace/internal/access"
	"marketplace/internal/domain"
	"marketplace/internal/repos"
)

var errNoShop = domain.Conflict("shop_not_found", "no shop yet, import a catalog first")

// PartnerService is the shop owner's view of its shop and of the orders
// that include its listings.
type PartnerService struct {
	Orders  *repos.OrderRepo
	Catalog *repos.CatalogRepo
}

func NewPartnerService(orders *repos.OrderRepo, catalog *repos.CatalogRepo) *PartnerService {
	return &PartnerService{Orders: orders, Catalog: catalog}
}

// PartnerOrders lists every placed order holding at least one listing of the
// caller's shop, whoever the buyer is.
func (s *PartnerService) PartnerOrders(ctx context.Context, id access.Identity) ([]domain.OrderView, error) {
	if err := access.Authorize(id, domain.RoleShop); err != nil {
		return nil, err
	}
	return s.Orders.PartnerOrders(ctx, id.UserID)
}

func (s *PartnerService) State(ctx context.Context, id access.Identity) (*domain.Shop, error) {
	if err := access.Authorize(id, domain.RoleShop); err != nil {
		return nil, err
	}
	shop, err := s.Catalog.ShopByOwner(ctx, id.UserID)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, errNoShop
	}
	return shop, err
}

// Listings returns the caller's whole catalog, including listings hidden
// while the shop is closed.
func (s *PartnerService) Listings(ctx context.Context, id access.Identity) ([]domain.ListingView, error) {
	shop, err := s.State(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Catalog.ListingsByShop(ctx, shop.ID)
}

// SetState opens or closes the caller's shop. Listings of closed shops are
// hidden from catalog queries.
func (s *PartnerService) SetState(ctx context.Context, id access.Identity, open bool) error {
	if err := access.Authorize(id, domain.RoleShop); err != nil {
		return err
	}
	err := s.Catalog.SetShopOpen(ctx, id.UserID, open)
	if errors.Is(err, repos.ErrNotFound) {
		return errNoShop
	}
	return err
}
