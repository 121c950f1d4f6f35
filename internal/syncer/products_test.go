package syncer

import (
	"context"
	"testing"

	"github.com/profitpeek/shopsync/internal/shopify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductSyncUpsertsCatalog(t *testing.T) {
	store := newFakeStore()
	cred := store.addCredential("acme")

	cost := "10.00"
	remote := newFakeRemote()
	remote.productPages = []*shopify.ProductConnection{
		productPage(false, "p1",
			productNode("gid://shopify/Product/1", "Widget",
				variantNode("gid://shopify/ProductVariant/11", "W-1", &cost),
				variantNode("gid://shopify/ProductVariant/12", "W-2", nil),
			),
		),
	}

	stats, err := NewProductReconciler(store, remote).SyncAll(context.Background(), cred)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Products)
	assert.Equal(t, 2, stats.Variants)
	assert.False(t, stats.HasMore)

	product := store.products["gid://shopify/Product/1"]
	require.NotNil(t, product)
	assert.Equal(t, "acme", product.ClientID)
	assert.Equal(t, "Widget", product.Title)

	withCost := store.variants["gid://shopify/ProductVariant/11"]
	require.NotNil(t, withCost)
	assert.Equal(t, product.ID, withCost.ProductID)
	require.True(t, withCost.InventoryCost.Valid)
	assert.Equal(t, "10", withCost.InventoryCost.Decimal.String())

	// Absent cost stays null, never zero.
	withoutCost := store.variants["gid://shopify/ProductVariant/12"]
	require.NotNil(t, withoutCost)
	assert.False(t, withoutCost.InventoryCost.Valid)
}

func TestProductSyncIsIdempotent(t *testing.T) {
	store := newFakeStore()
	cred := store.addCredential("acme")

	cost := "10.00"
	page := func() *shopify.ProductConnection {
		return productPage(false, "p1",
			productNode("gid://shopify/Product/1", "Widget",
				variantNode("gid://shopify/ProductVariant/11", "W-1", &cost)))
	}

	remote := newFakeRemote()
	remote.productPages = []*shopify.ProductConnection{page()}
	rec := NewProductReconciler(store, remote)

	_, err := rec.SyncAll(context.Background(), cred)
	require.NoError(t, err)

	firstProduct := *store.products["gid://shopify/Product/1"]
	firstVariant := *store.variants["gid://shopify/ProductVariant/11"]

	remote.productPages = []*shopify.ProductConnection{page()}
	remote.reset()
	stats, err := rec.SyncAll(context.Background(), cred)
	require.NoError(t, err)

	// Same remote IDs, so exactly one row each and stable local ids.
	assert.Equal(t, 1, stats.Products)
	assert.Len(t, store.products, 1)
	assert.Len(t, store.variants, 1)
	assert.Equal(t, firstProduct, *store.products["gid://shopify/Product/1"])
	assert.Equal(t, firstVariant, *store.variants["gid://shopify/ProductVariant/11"])
}

func TestProductSyncEmptyFirstPageWritesNothing(t *testing.T) {
	store := newFakeStore()
	cred := store.addCredential("acme")

	remote := newFakeRemote()
	remote.productPages = []*shopify.ProductConnection{nil}

	_, err := NewProductReconciler(store, remote).SyncAll(context.Background(), cred)
	require.ErrorIs(t, err, shopify.ErrEmptyFirstPage)
	assert.Zero(t, store.writes)
}

func TestProductSyncLaterMissingPageIsPartial(t *testing.T) {
	store := newFakeStore()
	cred := store.addCredential("acme")

	remote := newFakeRemote()
	remote.productPages = []*shopify.ProductConnection{
		productPage(true, "p1", productNode("gid://shopify/Product/1", "Widget")),
		nil,
	}

	stats, err := NewProductReconciler(store, remote).SyncAll(context.Background(), cred)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Products)
	assert.True(t, stats.HasMore)
	require.NotNil(t, stats.LastCursor)
	assert.Equal(t, "p1", *stats.LastCursor)
}
