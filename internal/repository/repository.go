package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/profitpeek/shopsync/internal/models"
	"github.com/shopspring/decimal"
)

// ErrCredentialNotFound is returned when a tenant has no stored credential.
var ErrCredentialNotFound = errors.New("credential not found")

// Repository is the single write path of the sync pipeline. Every write is an
// upsert keyed by the remote shopify_id; rows are never deleted here.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCredential(ctx context.Context, clientID string) (*models.Credential, error) {
	cred := &models.Credential{}
	query := `SELECT id, client_id, store_domain, access_token, api_version, created_at, updated_at
		FROM shopify_credentials WHERE client_id = $1`
	err := r.db.QueryRow(ctx, query, clientID).Scan(
		&cred.ID, &cred.ClientID, &cred.StoreDomain, &cred.AccessToken,
		&cred.APIVersion, &cred.CreatedAt, &cred.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCredentialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return cred, nil
}

func (r *Repository) UpsertCredential(ctx context.Context, cred *models.Credential) error {
	query := `INSERT INTO shopify_credentials (client_id, store_domain, access_token, api_version)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (client_id) DO UPDATE SET
			store_domain = EXCLUDED.store_domain,
			access_token = EXCLUDED.access_token,
			api_version = EXCLUDED.api_version,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query, cred.ClientID, cred.StoreDomain, cred.AccessToken, cred.APIVersion).
		Scan(&cred.ID, &cred.CreatedAt, &cred.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}
	return nil
}

func (r *Repository) ListCredentials(ctx context.Context) ([]models.Credential, error) {
	query := `SELECT id, client_id, store_domain, access_token, api_version, created_at, updated_at
		FROM shopify_credentials ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var creds []models.Credential
	for rows.Next() {
		var c models.Credential
		if err := rows.Scan(&c.ID, &c.ClientID, &c.StoreDomain, &c.AccessToken, &c.APIVersion, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

// UpsertProduct writes a product by remote ID and fills in the local row id.
func (r *Repository) UpsertProduct(ctx context.Context, p *models.Product) error {
	query := `INSERT INTO products (shopify_id, client_id, title, handle, vendor, product_type, status, remote_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (shopify_id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			title = EXCLUDED.title,
			handle = EXCLUDED.handle,
			vendor = EXCLUDED.vendor,
			product_type = EXCLUDED.product_type,
			status = EXCLUDED.status,
			remote_updated_at = EXCLUDED.remote_updated_at,
			updated_at = NOW()
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		p.ShopifyID, p.ClientID, p.Title, p.Handle, p.Vendor, p.ProductType, p.Status, p.RemoteUpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

func (r *Repository) UpsertVariant(ctx context.Context, v *models.Variant) error {
	query := `INSERT INTO variants (shopify_id, product_id, sku, title, barcode, price, compare_at_price,
			inventory_cost, inventory_quantity, inventory_item_id, remote_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (shopify_id) DO UPDATE SET
			product_id = EXCLUDED.product_id,
			sku = EXCLUDED.sku,
			title = EXCLUDED.title,
			barcode = EXCLUDED.barcode,
			price = EXCLUDED.price,
			compare_at_price = EXCLUDED.compare_at_price,
			inventory_cost = EXCLUDED.inventory_cost,
			inventory_quantity = EXCLUDED.inventory_quantity,
			inventory_item_id = EXCLUDED.inventory_item_id,
			remote_updated_at = EXCLUDED.remote_updated_at,
			updated_at = NOW()
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		v.ShopifyID, v.ProductID, v.SKU, v.Title, v.Barcode, v.Price, v.CompareAtPrice,
		v.InventoryCost, v.InventoryQuantity, v.InventoryItemID, v.RemoteUpdatedAt,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert variant: %w", err)
	}
	return nil
}

// UpsertOrder writes an order by remote ID. LandingCost is intentionally not
// written here; it only becomes knowable after the order's line items are
// processed and is written by UpdateOrderLandingCost.
func (r *Repository) UpsertOrder(ctx context.Context, o *models.Order) error {
	query := `INSERT INTO orders (shopify_id, client_id, name, currency, subtotal, total_price,
			total_discounts, total_shipping, total_tax, net_payment, financial_status,
			fulfillment_status, processed_at, remote_updated_at, discount_codes, shipping_lines)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (shopify_id) DO UPDATE SET
			client_id = EXCLUDED.client_id,
			name = EXCLUDED.name,
			currency = EXCLUDED.currency,
			subtotal = EXCLUDED.subtotal,
			total_price = EXCLUDED.total_price,
			total_discounts = EXCLUDED.total_discounts,
			total_shipping = EXCLUDED.total_shipping,
			total_tax = EXCLUDED.total_tax,
			net_payment = EXCLUDED.net_payment,
			financial_status = EXCLUDED.financial_status,
			fulfillment_status = EXCLUDED.fulfillment_status,
			processed_at = EXCLUDED.processed_at,
			remote_updated_at = EXCLUDED.remote_updated_at,
			discount_codes = EXCLUDED.discount_codes,
			shipping_lines = EXCLUDED.shipping_lines,
			updated_at = NOW()
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		o.ShopifyID, o.ClientID, o.Name, o.Currency, o.Subtotal, o.TotalPrice,
		o.TotalDiscounts, o.TotalShipping, o.TotalTax, o.NetPayment, o.FinancialStatus,
		o.FulfillmentStatus, o.ProcessedAt, o.RemoteUpdatedAt, o.DiscountCodes, o.ShippingLines,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert order: %w", err)
	}
	return nil
}

func (r *Repository) UpsertLineItem(ctx context.Context, li *models.LineItem) error {
	query := `INSERT INTO line_items (shopify_id, order_id, product_shopify_id, variant_shopify_id,
			title, sku, quantity, price, total_discount, discounted_total, fulfillment_status,
			landing_cost, net_payment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (shopify_id) DO UPDATE SET
			order_id = EXCLUDED.order_id,
			product_shopify_id = EXCLUDED.product_shopify_id,
			variant_shopify_id = EXCLUDED.variant_shopify_id,
			title = EXCLUDED.title,
			sku = EXCLUDED.sku,
			quantity = EXCLUDED.quantity,
			price = EXCLUDED.price,
			total_discount = EXCLUDED.total_discount,
			discounted_total = EXCLUDED.discounted_total,
			fulfillment_status = EXCLUDED.fulfillment_status,
			landing_cost = EXCLUDED.landing_cost,
			net_payment = EXCLUDED.net_payment,
			updated_at = NOW()
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		li.ShopifyID, li.OrderID, li.ProductShopifyID, li.VariantShopifyID,
		li.Title, li.SKU, li.Quantity, li.Price, li.TotalDiscount, li.DiscountedTotal,
		li.FulfillmentStatus, li.LandingCost, li.NetPayment,
	).Scan(&li.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert line item: %w", err)
	}
	return nil
}

// UpdateOrderLandingCost writes the aggregate landing cost after all of an
// order's line items have been upserted.
func (r *Repository) UpdateOrderLandingCost(ctx context.Context, orderID int64, total decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET landing_cost = $1, updated_at = NOW() WHERE id = $2`, total, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order landing cost: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("update order landing cost affected %d rows", tag.RowsAffected())
	}
	return nil
}

// ListVariantCosts returns every stored variant for the tenant with its unit
// cost, null preserved, for the per-run cost index.
func (r *Repository) ListVariantCosts(ctx context.Context, clientID string) ([]models.VariantCost, error) {
	query := `SELECT v.shopify_id, v.inventory_cost
		FROM variants v
		JOIN products p ON p.id = v.product_id
		WHERE p.client_id = $1`
	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list variant costs: %w", err)
	}
	defer rows.Close()

	var costs []models.VariantCost
	for rows.Next() {
		var vc models.VariantCost
		if err := rows.Scan(&vc.ShopifyID, &vc.InventoryCost); err != nil {
			return nil, fmt.Errorf("failed to scan variant cost: %w", err)
		}
		costs = append(costs, vc)
	}
	return costs, rows.Err()
}

func (r *Repository) CountOrders(ctx context.Context, clientID string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE client_id = $1`, clientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}
