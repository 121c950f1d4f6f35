package syncer

import (
	"context"
	"testing"

	"github.com/profitpeek/shopsync/internal/models"
	"github.com/profitpeek/shopsync/internal/shopify"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedCatalog runs a product sync so the store holds variants with costs.
func seedCatalog(t *testing.T, store *fakeStore, cred *models.Credential, unitCost string) {
	t.Helper()
	remote := newFakeRemote()
	remote.productPages = []*shopify.ProductConnection{
		productPage(false, "p1",
			productNode("gid://shopify/Product/1", "Widget",
				variantNode("gid://shopify/ProductVariant/11", "W-1", &unitCost))),
	}
	_, err := NewProductReconciler(store, remote).SyncAll(context.Background(), cred)
	require.NoError(t, err)
}

func TestBuildOrderFilter(t *testing.T) {
	filter, err := BuildOrderFilter("", "")
	require.NoError(t, err)
	assert.Empty(t, filter)

	filter, err = BuildOrderFilter("2024-01-01", "")
	require.NoError(t, err)
	assert.Equal(t, "created_at:>=2024-01-01", filter)

	// End date is inclusive at day granularity: the remote upper bound is
	// the following midnight, exclusive.
	filter, err = BuildOrderFilter("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, "created_at:>=2024-01-01 created_at:<2024-02-01", filter)

	_, err = BuildOrderFilter("not-a-date", "")
	assert.Error(t, err)
	_, err = BuildOrderFilter("", "31/01/2024")
	assert.Error(t, err)
}

func TestOrderSyncComputesDerivedFields(t *testing.T) {
	store := newFakeStore()
	cred := store.addCredential("acme")
	seedCatalog(t, store, cred, "15.00")

	remote := newFakeRemote()
	remote.orderPages = []*shopify.OrderConnection{
		orderPage(false, "o1",
			orderNode("gid://shopify/Order/100", "#1001",
				lineItemNode("gid://shopify/LineItem/1000", "gid://shopify/ProductVariant/11", 3))),
	}

	stats, err := NewOrderReconciler(store, remote).SyncAll(context.Background(), cred, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Orders)
	assert.Equal(t, 1, stats.LineItems)

	order := store.orders["gid://shopify/Order/100"]
	require.NotNil(t, order)

	// netPayment = totalPrice − totalDiscounts + totalShipping − totalTax
	//            = 120.00 − 10.00 + 5.00 − 8.00 = 107.00
	assert.True(t, order.NetPayment.Equal(decimal.RequireFromString("107.00")),
		"net payment was %s", order.NetPayment)

	// landing cost = unit cost 15.00 × qty 3 = 45.00
	li := store.lineItems["gid://shopify/LineItem/1000"]
	require.NotNil(t, li)
	assert.True(t, li.LandingCost.Equal(decimal.RequireFromString("45.00")),
		"landing cost was %s", li.LandingCost)
	assert.True(t, order.LandingCost.Equal(li.LandingCost))

	// Remote status enum is lower-cased; order-level fulfillment stays unset.
	require.NotNil(t, order.FinancialStatus)
	assert.Equal(t, "paid", *order.FinancialStatus)
	assert.Nil(t, order.FulfillmentStatus)
}

func TestOrderSyncAggregatesLandingCostAcrossLineItems(t *testing.T) {
	store := newFakeStore()
	cred := store.addCredential("acme")
	seedCatalog(t, store, cred, "10.00")

	remote := newFakeRemote()
	remote.orderPages = []*shopify.OrderConnection{
		orderPage(false, "o1",
			orderNode("gid://shopify/Order/100", "#1001",
				lineItemNode("gid://shopify/LineItem/1000", "gid://shopify/ProductVariant/11", 2),
				lineItemNode("gid://shopify/LineItem/1001", "gid://shopify/ProductVariant/11", 5),
				// Unknown variant contributes zero cost.
				lineItemNode("gid://shopify/LineItem/1002", "gid://shopify/ProductVariant/404", 9))),
	}

	_, err := NewOrderReconciler(store, remote).SyncAll(context.Background(), cred, "", "")
	require.NoError(t, err)

	order := store.orders["gid://shopify/Order/100"]
	require.NotNil(t, order)

	sum := decimal.Zero
	for _, li := range store.lineItemsForOrder(order.ID) {
		sum = sum.Add(li.LandingCost)
	}
	assert.True(t, order.LandingCost.Equal(sum), "aggregate %s, sum %s", order.LandingCost, sum)
	assert.True(t, order.LandingCost.Equal(decimal.RequireFromString("70.00")))
}

func TestOrderSyncSnapshotsCostAtSyncTime(t *testing.T) {
	store := newFakeStore()
	cred := store.addCredential("acme")
	seedCatalog(t, store, cred, "10.00")

	remote := newFakeRemote()
	remote.orderPages = []*shopify.OrderConnection{
		orderPage(false, "o1",
			orderNode("gid://shopify/Order/100", "#1001",
				lineItemNode("gid://shopify/LineItem/1000", "gid://shopify/ProductVariant/11", 2))),
	}
	_, err := NewOrderReconciler(store, remote).SyncAll(context.Background(), cred, "", "")
	require.NoError(t, err)

	li := store.lineItems["gid://shopify/LineItem/1000"]
	require.True(t, li.LandingCost.Equal(decimal.RequireFromString("20.00")))

	// The variant's cost changes and the catalog is re-synced; the stored
	// line item keeps the cost known when it was synced.
	seedCatalog(t, store, cred, "20.00")

	li = store.lineItems["gid://shopify/LineItem/1000"]
	assert.True(t, li.LandingCost.Equal(decimal.RequireFromString("20.00")),
		"historical landing cost must not be rewritten, got %s", li.LandingCost)
}

func TestOrderSyncIsIdempotent(t *testing.T) {
	store := newFakeStore()
	cred := store.addCredential("acme")
	seedCatalog(t, store, cred, "10.00")

	page := func() *shopify.OrderConnection {
		return orderPage(false, "o1",
			orderNode("gid://shopify/Order/100", "#1001",
				lineItemNode("gid://shopify/LineItem/1000", "gid://shopify/ProductVariant/11", 2)))
	}

	remote := newFakeRemote()
	remote.orderPages = []*shopify.OrderConnection{page()}
	rec := NewOrderReconciler(store, remote)

	first, err := rec.SyncAll(context.Background(), cred, "", "")
	require.NoError(t, err)
	firstOrder := *store.orders["gid://shopify/Order/100"]
	firstItem := *store.lineItems["gid://shopify/LineItem/1000"]

	remote.orderPages = []*shopify.OrderConnection{page()}
	remote.reset()
	second, err := rec.SyncAll(context.Background(), cred, "", "")
	require.NoError(t, err)

	assert.Equal(t, first.Orders, second.Orders)
	assert.Equal(t, first.LineItems, second.LineItems)
	assert.Len(t, store.orders, 1)
	assert.Len(t, store.lineItems, 1)
	assert.Equal(t, firstOrder, *store.orders["gid://shopify/Order/100"])
	assert.Equal(t, firstItem, *store.lineItems["gid://shopify/LineItem/1000"])
}

func TestOrderSyncPassesFilterToRemote(t *testing.T) {
	store := newFakeStore()
	cred := store.addCredential("acme")

	remote := newFakeRemote()
	remote.orderPages = []*shopify.OrderConnection{orderPage(false, "o1")}

	_, err := NewOrderReconciler(store, remote).SyncAll(context.Background(), cred, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Equal(t, "created_at:>=2024-01-01 created_at:<2024-02-01", remote.lastFilter)
}

func TestOrderSyncEmptyFirstPageWritesNothing(t *testing.T) {
	store := newFakeStore()
	cred := store.addCredential("acme")

	remote := newFakeRemote()
	remote.orderPages = []*shopify.OrderConnection{nil}

	_, err := NewOrderReconciler(store, remote).SyncAll(context.Background(), cred, "", "")
	require.ErrorIs(t, err, shopify.ErrEmptyFirstPage)
	assert.Empty(t, store.orders)
	assert.Empty(t, store.lineItems)
}

func TestOrderSyncPartialPagination(t *testing.T) {
	store := newFakeStore()
	cred := store.addCredential("acme")

	remote := newFakeRemote()
	remote.orderPages = []*shopify.OrderConnection{
		orderPage(true, "o1", orderNode("gid://shopify/Order/100", "#1001")),
		nil,
	}

	stats, err := NewOrderReconciler(store, remote).SyncAll(context.Background(), cred, "", "")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Orders)
	assert.True(t, stats.HasMore)
	require.NotNil(t, stats.LastCursor)
	assert.Equal(t, "o1", *stats.LastCursor)
}

func TestOrderSyncNetPaymentPrefersDiscountedTotal(t *testing.T) {
	store := newFakeStore()
	cred := store.addCredential("acme")

	li := lineItemNode("gid://shopify/LineItem/1000", "", 1)
	li.DiscountedTotalSet = moneySet("24.99")

	remote := newFakeRemote()
	remote.orderPages = []*shopify.OrderConnection{
		orderPage(false, "o1", orderNode("gid://shopify/Order/100", "#1001", li)),
	}

	_, err := NewOrderReconciler(store, remote).SyncAll(context.Background(), cred, "", "")
	require.NoError(t, err)

	stored := store.lineItems["gid://shopify/LineItem/1000"]
	require.NotNil(t, stored)
	require.True(t, stored.DiscountedTotal.Valid)
	assert.True(t, stored.NetPayment.Equal(decimal.RequireFromString("24.99")))
	// No variant on the line: cost falls back to zero at the lookup boundary.
	assert.True(t, stored.LandingCost.IsZero())
}
