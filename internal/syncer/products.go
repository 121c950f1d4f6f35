package syncer

import (
	"context"
	"fmt"

	"github.com/profitpeek/shopsync/internal/domain"
	"github.com/profitpeek/shopsync/internal/models"
	"github.com/profitpeek/shopsync/internal/observability"
	"github.com/profitpeek/shopsync/internal/shopify"
)

// ProductReconciler upserts the catalog (products plus nested variants) page
// by page. Re-running with identical remote data is a no-op semantically.
type ProductReconciler struct {
	store  Store
	remote Remote
}

func NewProductReconciler(store Store, remote Remote) *ProductReconciler {
	return &ProductReconciler{store: store, remote: remote}
}

// ProductStats summarizes one catalog sync phase.
type ProductStats struct {
	Products   int
	Variants   int
	LastCursor *string
	HasMore    bool
}

// SyncAll walks the full product catalog for the credential's tenant.
func (r *ProductReconciler) SyncAll(ctx context.Context, cred *models.Credential) (ProductStats, error) {
	var stats ProductStats

	fetch := func(ctx context.Context, cursor *string) (*shopify.ProductConnection, error) {
		return r.remote.ProductPage(ctx, cred, cursor)
	}

	page, err := shopify.Paginate(ctx, fetch, func(nodes []shopify.ProductNode) error {
		observability.AddPagesFetched("products", 1)
		for i := range nodes {
			if err := r.reconcileProduct(ctx, cred, &nodes[i], &stats); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	stats.LastCursor = page.LastCursor
	stats.HasMore = page.HasMore
	return stats, nil
}

func (r *ProductReconciler) reconcileProduct(ctx context.Context, cred *models.Credential, node *shopify.ProductNode, stats *ProductStats) error {
	product := &models.Product{
		ShopifyID:       node.ID,
		ClientID:        cred.ClientID,
		Title:           node.Title,
		Handle:          node.Handle,
		Vendor:          node.Vendor,
		ProductType:     node.ProductType,
		Status:          node.Status,
		RemoteUpdatedAt: node.UpdatedAt,
	}
	if err := r.store.UpsertProduct(ctx, product); err != nil {
		return fmt.Errorf("upsert product %s: %w", node.ID, err)
	}
	stats.Products++
	observability.AddRowsUpserted("product", 1)

	for _, edge := range node.Variants.Edges {
		if err := r.reconcileVariant(ctx, product.ID, &edge.Node); err != nil {
			return err
		}
		stats.Variants++
		observability.AddRowsUpserted("variant", 1)
	}
	return nil
}

func (r *ProductReconciler) reconcileVariant(ctx context.Context, productID int64, node *shopify.VariantNode) error {
	price, err := domain.NullAmount(node.Price)
	if err != nil {
		return fmt.Errorf("variant %s price: %w", node.ID, err)
	}
	compareAt, err := domain.NullAmount(node.CompareAtPrice)
	if err != nil {
		return fmt.Errorf("variant %s compare-at price: %w", node.ID, err)
	}

	variant := &models.Variant{
		ShopifyID:         node.ID,
		ProductID:         productID,
		SKU:               node.SKU,
		Title:             node.Title,
		Barcode:           node.Barcode,
		Price:             price,
		CompareAtPrice:    compareAt,
		InventoryQuantity: node.InventoryQuantity,
		RemoteUpdatedAt:   node.UpdatedAt,
	}

	// Unit cost stays null when the remote doesn't report one, so downstream
	// margin math can tell "unknown" apart from "known zero".
	if item := node.InventoryItem; item != nil {
		variant.InventoryItemID = &item.ID
		if item.UnitCost != nil {
			cost, err := domain.NullAmount(&item.UnitCost.Amount)
			if err != nil {
				return fmt.Errorf("variant %s unit cost: %w", node.ID, err)
			}
			variant.InventoryCost = cost
		}
	}

	if err := r.store.UpsertVariant(ctx, variant); err != nil {
		return fmt.Errorf("upsert variant %s: %w", node.ID, err)
	}
	return nil
}
