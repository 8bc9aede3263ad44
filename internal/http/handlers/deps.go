package handlers

import (
	"github.com/jmoiron/sqlx"

	"marketplace/internal/config"
	"marketplace/internal/repos"
	"marketplace/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler    *AuthHandler
	CatalogHandler *CatalogHandler
	BasketHandler  *BasketHandler
	OrderHandler   *OrderHandler
	PartnerHandler *PartnerHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	userRepo := repos.NewUserRepo(db)
	catalogRepo := repos.NewCatalogRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	importRepo := repos.NewImportRepo(db)

	authSvc := services.NewAuthService(userRepo)
	catalogSvc := services.NewCatalogService(catalogRepo)
	basketSvc := services.NewBasketService(orderRepo, catalogRepo)
	orderSvc := services.NewOrderService(orderRepo)
	partnerSvc := services.NewPartnerService(orderRepo, catalogRepo)
	importSvc := services.NewImportService(importRepo, cfg.ImportTimeout, cfg.ImportMaxBytes)

	return &Deps{
		Auth:           authSvc,
		AuthHandler:    &AuthHandler{Auth: authSvc},
		CatalogHandler: &CatalogHandler{Catalog: catalogSvc},
		BasketHandler:  &BasketHandler{Basket: basketSvc},
		OrderHandler:   &OrderHandler{Order: orderSvc},
		PartnerHandler: &PartnerHandler{Import: importSvc, Partner: partnerSvc},
	}
}
