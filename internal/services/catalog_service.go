package services

import (
	"context"

	"marketplace/internal/domain"
	"marketplace/internal/repos"
)

// CatalogService serves the public, read-only catalog projections.
type CatalogService struct {
	Catalog *repos.CatalogRepo
}

func NewCatalogService(catalog *repos.CatalogRepo) *CatalogService {
	return &CatalogService{Catalog: catalog}
}

func (s *CatalogService) Products(ctx context.Context) ([]domain.Product, error) {
	return s.Catalog.ListProducts(ctx)
}

func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.Catalog.ListCategories(ctx)
}

func (s *CatalogService) Shops(ctx context.Context) ([]domain.Shop, error) {
	return s.Catalog.ListShops(ctx)
}

func (s *CatalogService) Listings(ctx context.Context, f repos.ListingFilter) ([]domain.ListingView, error) {
	return s.Catalog.QueryListings(ctx, f)
}
