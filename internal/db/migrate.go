package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The sync pipeline never deletes rows; reconciliation is additive/updating
// only, keyed by the remote shopify_id unique constraints below.
const schema = `
CREATE TABLE IF NOT EXISTS shopify_credentials (
	id BIGSERIAL PRIMARY KEY,
	client_id TEXT NOT NULL UNIQUE,
	store_domain TEXT NOT NULL,
	access_token TEXT NOT NULL,
	api_version TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
	id BIGSERIAL PRIMARY KEY,
	shopify_id TEXT NOT NULL UNIQUE,
	client_id TEXT NOT NULL,
	title TEXT NOT NULL,
	handle TEXT,
	vendor TEXT,
	product_type TEXT,
	status TEXT,
	remote_updated_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_products_client ON products (client_id);

CREATE TABLE IF NOT EXISTS variants (
	id BIGSERIAL PRIMARY KEY,
	shopify_id TEXT NOT NULL UNIQUE,
	product_id BIGINT NOT NULL REFERENCES products(id),
	sku TEXT,
	title TEXT,
	barcode TEXT,
	price NUMERIC,
	compare_at_price NUMERIC,
	inventory_cost NUMERIC,
	inventory_quantity INT,
	inventory_item_id TEXT,
	remote_updated_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_variants_product ON variants (product_id);

CREATE TABLE IF NOT EXISTS orders (
	id BIGSERIAL PRIMARY KEY,
	shopify_id TEXT NOT NULL UNIQUE,
	client_id TEXT NOT NULL,
	name TEXT NOT NULL,
	currency TEXT NOT NULL,
	subtotal NUMERIC NOT NULL,
	total_price NUMERIC NOT NULL,
	total_discounts NUMERIC NOT NULL,
	total_shipping NUMERIC NOT NULL,
	total_tax NUMERIC NOT NULL,
	net_payment NUMERIC NOT NULL,
	landing_cost NUMERIC NOT NULL DEFAULT 0,
	financial_status TEXT,
	fulfillment_status TEXT,
	processed_at TIMESTAMPTZ NOT NULL,
	remote_updated_at TIMESTAMPTZ NOT NULL,
	discount_codes JSONB,
	shipping_lines JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_orders_client_processed ON orders (client_id, processed_at);

CREATE TABLE IF NOT EXISTS line_items (
	id BIGSERIAL PRIMARY KEY,
	shopify_id TEXT NOT NULL UNIQUE,
	order_id BIGINT NOT NULL REFERENCES orders(id),
	product_shopify_id TEXT,
	variant_shopify_id TEXT,
	title TEXT NOT NULL,
	sku TEXT,
	quantity INT NOT NULL,
	price NUMERIC NOT NULL,
	total_discount NUMERIC NOT NULL,
	discounted_total NUMERIC,
	fulfillment_status TEXT,
	landing_cost NUMERIC NOT NULL,
	net_payment NUMERIC NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_line_items_order ON line_items (order_id);
`

// Migrate applies the idempotent schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
