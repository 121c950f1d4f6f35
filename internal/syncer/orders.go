package syncer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/profitpeek/shopsync/internal/models"
	"github.com/profitpeek/shopsync/internal/observability"
	"github.com/profitpeek/shopsync/internal/shopify"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// OrderReconciler upserts orders and their line items, deriving the monetary
// fields (net payment, landing cost) as it goes. Landing costs snapshot the
// unit cost known at sync time via the CostIndex; they are never recomputed
// retroactively when a variant's cost later changes.
type OrderReconciler struct {
	store  Store
	remote Remote
}

func NewOrderReconciler(store Store, remote Remote) *OrderReconciler {
	return &OrderReconciler{store: store, remote: remote}
}

// OrderStats summarizes one order sync phase.
type OrderStats struct {
	Orders     int
	LineItems  int
	LastCursor *string
	HasMore    bool
}

// BuildOrderFilter builds the remote search expression for a date window.
// The lower bound is inclusive; the upper bound is the midnight after endDate,
// exclusive, which makes the end date itself inclusive at day granularity.
func BuildOrderFilter(startDate, endDate string) (string, error) {
	var parts []string
	if startDate != "" {
		if _, err := time.Parse(dateLayout, startDate); err != nil {
			return "", fmt.Errorf("invalid start date %q: %w", startDate, err)
		}
		parts = append(parts, "created_at:>="+startDate)
	}
	if endDate != "" {
		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return "", fmt.Errorf("invalid end date %q: %w", endDate, err)
		}
		parts = append(parts, "created_at:<"+end.AddDate(0, 0, 1).Format(dateLayout))
	}
	return strings.Join(parts, " "), nil
}

// SyncAll walks the tenant's orders, optionally narrowed by a date window.
// The cost index is built once up front from the variants stored by the
// product phase and consulted for every line item.
func (r *OrderReconciler) SyncAll(ctx context.Context, cred *models.Credential, startDate, endDate string) (OrderStats, error) {
	var stats OrderStats

	filter, err := BuildOrderFilter(startDate, endDate)
	if err != nil {
		return stats, err
	}

	index, err := BuildCostIndex(ctx, r.store, cred.ClientID)
	if err != nil {
		return stats, err
	}

	fetch := func(ctx context.Context, cursor *string) (*shopify.OrderConnection, error) {
		return r.remote.OrderPage(ctx, cred, cursor, filter)
	}

	page, err := shopify.Paginate(ctx, fetch, func(nodes []shopify.OrderNode) error {
		observability.AddPagesFetched("orders", 1)
		for i := range nodes {
			if err := r.reconcileOrder(ctx, cred, &nodes[i], index, &stats); err != nil {
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

// amountReader accumulates the first parse error across several money sets so
// call sites stay linear.
type amountReader struct {
	err error
}

func (a *amountReader) read(set *shopify.MoneySet) decimal.Decimal {
	d, err := set.Amount()
	if err != nil && a.err == nil {
		a.err = err
	}
	return d
}

func (r *OrderReconciler) reconcileOrder(ctx context.Context, cred *models.Credential, node *shopify.OrderNode, index *CostIndex, stats *OrderStats) error {
	amounts := &amountReader{}
	subtotal := amounts.read(node.CurrentSubtotalLineItemsSet)
	totalPrice := amounts.read(node.CurrentTotalPriceSet)
	totalDiscounts := amounts.read(node.CurrentTotalDiscountsSet)
	totalShipping := amounts.read(node.CurrentTotalShippingPriceSet)
	totalTax := amounts.read(node.CurrentTotalTaxSet)
	if amounts.err != nil {
		return fmt.Errorf("order %s: %w", node.ID, amounts.err)
	}

	// Fixed operation order; decimal arithmetic is exact so there is no
	// rounding reason to reorder.
	netPayment := totalPrice.Sub(totalDiscounts).Add(totalShipping).Sub(totalTax)

	remoteUpdatedAt := node.ProcessedAt
	if node.UpdatedAt != nil {
		remoteUpdatedAt = *node.UpdatedAt
	}

	order := &models.Order{
		ShopifyID:       node.ID,
		ClientID:        cred.ClientID,
		Name:            node.Name,
		Currency:        node.CurrencyCode,
		Subtotal:        subtotal,
		TotalPrice:      totalPrice,
		TotalDiscounts:  totalDiscounts,
		TotalShipping:   totalShipping,
		TotalTax:        totalTax,
		NetPayment:      netPayment,
		FinancialStatus: lowerStatus(node.FinancialStatus),
		// Order-level fulfillment status is deliberately left unset; the
		// per-line-item status supersedes it.
		FulfillmentStatus: nil,
		ProcessedAt:       node.ProcessedAt,
		RemoteUpdatedAt:   remoteUpdatedAt,
		DiscountCodes:     node.DiscountCodes,
		ShippingLines:     node.ShippingLines,
	}
	if err := r.store.UpsertOrder(ctx, order); err != nil {
		return fmt.Errorf("upsert order %s: %w", node.ID, err)
	}
	stats.Orders++
	observability.AddRowsUpserted("order", 1)

	orderLandingCost := decimal.Zero
	for _, edge := range node.LineItems.Edges {
		landingCost, err := r.reconcileLineItem(ctx, order.ID, &edge.Node, index)
		if err != nil {
			return err
		}
		orderLandingCost = orderLandingCost.Add(landingCost)
		stats.LineItems++
		observability.AddRowsUpserted("line_item", 1)
	}

	// Second write per order: the aggregate is only knowable after all its
	// line items have been walked.
	if err := r.store.UpdateOrderLandingCost(ctx, order.ID, orderLandingCost); err != nil {
		return fmt.Errorf("update landing cost for order %s: %w", node.ID, err)
	}
	return nil
}

func (r *OrderReconciler) reconcileLineItem(ctx context.Context, orderID int64, node *shopify.LineItemNode, index *CostIndex) (decimal.Decimal, error) {
	amounts := &amountReader{}
	price := amounts.read(node.OriginalUnitPriceSet)
	totalDiscount := amounts.read(node.TotalDiscountSet)

	unitCost := decimal.Zero
	var variantID, variantSKU, variantTitle *string
	if node.Variant != nil {
		variantID = &node.Variant.ID
		variantSKU = node.Variant.SKU
		variantTitle = node.Variant.Title
		unitCost = index.UnitCost(node.Variant.ID)
	}
	landingCost := unitCost.Mul(decimal.NewFromInt32(node.Quantity))

	var discountedTotal decimal.NullDecimal
	netPayment := price
	if node.DiscountedTotalSet != nil {
		d := amounts.read(node.DiscountedTotalSet)
		discountedTotal = decimal.NullDecimal{Decimal: d, Valid: true}
		netPayment = d
	}
	if amounts.err != nil {
		return decimal.Zero, fmt.Errorf("line item %s: %w", node.ID, amounts.err)
	}

	title := node.Title
	if variantTitle != nil && *variantTitle != "" {
		title = *variantTitle
	}
	if title == "" {
		title = "Line Item"
	}

	var productID *string
	if node.Product != nil {
		productID = &node.Product.ID
	}

	li := &models.LineItem{
		ShopifyID:         node.ID,
		OrderID:           orderID,
		ProductShopifyID:  productID,
		VariantShopifyID:  variantID,
		Title:             title,
		SKU:               variantSKU,
		Quantity:          node.Quantity,
		Price:             price,
		TotalDiscount:     totalDiscount,
		DiscountedTotal:   discountedTotal,
		FulfillmentStatus: node.FulfillmentStatus,
		LandingCost:       landingCost,
		NetPayment:        netPayment,
	}
	if err := r.store.UpsertLineItem(ctx, li); err != nil {
		return decimal.Zero, fmt.Errorf("upsert line item %s: %w", node.ID, err)
	}
	return landingCost, nil
}

// lowerStatus normalizes the remote status enum so downstream filters like
// "paid" or "partially_paid" are case-insensitive by construction.
func lowerStatus(s *string) *string {
	if s == nil {
		return nil
	}
	lowered := strings.ToLower(*s)
	return &lowered
}
