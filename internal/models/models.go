package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Credential holds one tenant's Shopify connection. Exactly one row per
// client; the sync pipeline only reads it, the connect flow writes it.
type Credential struct {
	ID          int64     `json:"id"`
	ClientID    string    `json:"client_id"`
	StoreDomain string    `json:"store_domain"`
	AccessToken string    `json:"-"`
	APIVersion  string    `json:"api_version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a catalog record keyed by its immutable Shopify ID.
type Product struct {
	ID              int64     `json:"id"`
	ShopifyID       string    `json:"shopify_id"`
	ClientID        string    `json:"client_id"`
	Title           string    `json:"title"`
	Handle          *string   `json:"handle"`
	Vendor          *string   `json:"vendor"`
	ProductType     *string   `json:"product_type"`
	Status          *string   `json:"status"`
	RemoteUpdatedAt time.Time `json:"remote_updated_at"`
}

// Variant belongs to a product. InventoryCost is nullable on purpose:
// null means "cost unknown", which is not the same as a known zero cost.
type Variant struct {
	ID                int64               `json:"id"`
	ShopifyID         string              `json:"shopify_id"`
	ProductID         int64               `json:"product_id"`
	SKU               *string             `json:"sku"`
	Title             *string             `json:"title"`
	Barcode           *string             `json:"barcode"`
	Price             decimal.NullDecimal `json:"price"`
	CompareAtPrice    decimal.NullDecimal `json:"compare_at_price"`
	InventoryCost     decimal.NullDecimal `json:"inventory_cost"`
	InventoryQuantity *int32              `json:"inventory_quantity"`
	InventoryItemID   *string             `json:"inventory_item_id"`
	RemoteUpdatedAt   time.Time           `json:"remote_updated_at"`
}

// Order holds one remote order plus derived monetary fields. LandingCost is
// the aggregate over the order's stored line items, rewritten on every sync.
type Order struct {
	ID              int64           `json:"id"`
	ShopifyID       string          `json:"shopify_id"`
	ClientID        string          `json:"client_id"`
	Name            string          `json:"name"`
	Currency        string          `json:"currency"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	TotalDiscounts  decimal.Decimal `json:"total_discounts"`
	TotalShipping   decimal.Decimal `json:"total_shipping"`
	TotalTax        decimal.Decimal `json:"total_tax"`
	NetPayment      decimal.Decimal `json:"net_payment"`
	LandingCost     decimal.Decimal `json:"landing_cost"`
	FinancialStatus *string         `json:"financial_status"`
	// FulfillmentStatus stays unset at order level; line items carry the
	// per-item status instead.
	FulfillmentStatus *string   `json:"fulfillment_status"`
	ProcessedAt       time.Time `json:"processed_at"`
	RemoteUpdatedAt   time.Time `json:"remote_updated_at"`
	DiscountCodes     []byte    `json:"discount_codes,omitempty"`
	ShippingLines     []byte    `json:"shipping_lines,omitempty"`
}

// LineItem belongs to an order. LandingCost snapshots the variant's unit cost
// at the moment the line item was synced; later cost changes do not rewrite it.
type LineItem struct {
	ID                int64               `json:"id"`
	ShopifyID         string              `json:"shopify_id"`
	OrderID           int64               `json:"order_id"`
	ProductShopifyID  *string             `json:"product_shopify_id"`
	VariantShopifyID  *string             `json:"variant_shopify_id"`
	Title             string              `json:"title"`
	SKU               *string             `json:"sku"`
	Quantity          int32               `json:"quantity"`
	Price             decimal.Decimal     `json:"price"`
	TotalDiscount     decimal.Decimal     `json:"total_discount"`
	DiscountedTotal   decimal.NullDecimal `json:"discounted_total"`
	FulfillmentStatus *string             `json:"fulfillment_status"`
	LandingCost       decimal.Decimal     `json:"landing_cost"`
	NetPayment        decimal.Decimal     `json:"net_payment"`
}

// VariantCost is the projection the cost index is built from.
type VariantCost struct {
	ShopifyID     string
	InventoryCost decimal.NullDecimal
}
