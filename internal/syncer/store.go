package syncer

import (
	"context"

	"github.com/profitpeek/shopsync/internal/models"
	"github.com/profitpeek/shopsync/internal/shopify"
	"github.com/shopspring/decimal"
)

// Store is the persistence contract the sync pipeline requires. The
// repository package implements it against Postgres; tests substitute an
// in-memory fake.
type Store interface {
	GetCredential(ctx context.Context, clientID string) (*models.Credential, error)
	UpsertProduct(ctx context.Context, p *models.Product) error
	UpsertVariant(ctx context.Context, v *models.Variant) error
	UpsertOrder(ctx context.Context, o *models.Order) error
	UpsertLineItem(ctx context.Context, li *models.LineItem) error
	UpdateOrderLandingCost(ctx context.Context, orderID int64, total decimal.Decimal) error
	ListVariantCosts(ctx context.Context, clientID string) ([]models.VariantCost, error)
	CountOrders(ctx context.Context, clientID string) (int64, error)
}

// Remote is the slice of the Shopify client the pipeline depends on.
type Remote interface {
	ShopInfo(ctx context.Context, cred *models.Credential) (*shopify.Shop, error)
	ProductPage(ctx context.Context, cred *models.Credential, cursor *string) (*shopify.ProductConnection, error)
	OrderPage(ctx context.Context, cred *models.Credential, cursor *string, filter string) (*shopify.OrderConnection, error)
}
