package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Reporter answers read-only aggregate queries over synced rows. It never
// writes; the sync pipeline owns all writes.
type Reporter struct {
	db *pgxpool.Pool
}

func NewReporter(db *pgxpool.Pool) *Reporter {
	return &Reporter{db: db}
}

// Window bounds a report to orders processed within [Start, End). A zero
// bound means unbounded on that side.
type Window struct {
	Start time.Time
	End   time.Time
}

// clause renders the window as SQL against an orders alias, appending bind
// values after the ones already present.
func (w Window) clause(alias string, args []any) (string, []any) {
	sql := ""
	if !w.Start.IsZero() {
		args = append(args, w.Start)
		sql += fmt.Sprintf(" AND %s.processed_at >= $%d", alias, len(args))
	}
	if !w.End.IsZero() {
		args = append(args, w.End)
		sql += fmt.Sprintf(" AND %s.processed_at < $%d", alias, len(args))
	}
	return sql, args
}

// DashboardMetrics mirrors the storefront overview card.
type DashboardMetrics struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalOrders       int64           `json:"totalOrders"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	TotalProducts     int64           `json:"totalProducts"`
}

func (r *Reporter) Dashboard(ctx context.Context, clientID string, w Window) (*DashboardMetrics, error) {
	args := []any{clientID}
	cond, args := w.clause("o", args)

	m := &DashboardMetrics{}
	query := `SELECT COALESCE(SUM(o.net_payment), 0), COUNT(*)
		FROM orders o WHERE o.client_id = $1` + cond
	if err := r.db.QueryRow(ctx, query, args...).Scan(&m.TotalRevenue, &m.TotalOrders); err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE client_id = $1`, clientID,
	).Scan(&m.TotalProducts); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	if m.TotalOrders > 0 {
		m.AverageOrderValue = m.TotalRevenue.DivRound(decimal.NewFromInt(m.TotalOrders), 2)
	}
	return m, nil
}

// ProfitMetrics is the tenant-level profitability rollup.
type ProfitMetrics struct {
	Revenue   decimal.Decimal `json:"revenue"`
	Cost      decimal.Decimal `json:"cost"`
	Profit    decimal.Decimal `json:"profit"`
	MarginPct decimal.Decimal `json:"marginPct"`
}

func (r *Reporter) Profit(ctx context.Context, clientID string, w Window) (*ProfitMetrics, error) {
	args := []any{clientID}
	cond, args := w.clause("o", args)

	m := &ProfitMetrics{}
	query := `SELECT COALESCE(SUM(o.net_payment), 0), COALESCE(SUM(o.landing_cost), 0)
		FROM orders o WHERE o.client_id = $1` + cond
	if err := r.db.QueryRow(ctx, query, args...).Scan(&m.Revenue, &m.Cost); err != nil {
		return nil, fmt.Errorf("failed to aggregate profitability: %w", err)
	}

	m.Profit = m.Revenue.Sub(m.Cost)
	if !m.Revenue.IsZero() {
		m.MarginPct = m.Profit.Mul(decimal.NewFromInt(100)).DivRound(m.Revenue, 2)
	}
	return m, nil
}

// SKUPerformance is one product's contribution, ordered by profit.
type SKUPerformance struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitsSold int64           `json:"unitsSold"`
	Revenue   decimal.Decimal `json:"revenue"`
	Cost      decimal.Decimal `json:"cost"`
	Profit    decimal.Decimal `json:"profit"`
	MarginPct decimal.Decimal `json:"marginPct"`
}

func (r *Reporter) SKUPerformance(ctx context.Context, clientID string, w Window, limit int) ([]SKUPerformance, error) {
	if limit <= 0 {
		limit = 50
	}
	args := []any{clientID}
	cond, args := w.clause("o", args)
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT
			COALESCE(li.product_shopify_id, ''),
			MAX(li.title),
			COALESCE(SUM(li.quantity), 0),
			COALESCE(SUM(li.net_payment), 0),
			COALESCE(SUM(li.landing_cost), 0)
		FROM line_items li
		JOIN orders o ON o.id = li.order_id
		WHERE o.client_id = $1%s
		GROUP BY li.product_shopify_id
		ORDER BY COALESCE(SUM(li.net_payment), 0) - COALESCE(SUM(li.landing_cost), 0) DESC
		LIMIT $%d`, cond, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sku performance: %w", err)
	}
	defer rows.Close()

	var out []SKUPerformance
	for rows.Next() {
		var s SKUPerformance
		if err := rows.Scan(&s.ProductID, &s.Name, &s.UnitsSold, &s.Revenue, &s.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan sku row: %w", err)
		}
		s.Profit = s.Revenue.Sub(s.Cost)
		if !s.Revenue.IsZero() {
			s.MarginPct = s.Profit.Mul(decimal.NewFromInt(100)).DivRound(s.Revenue, 2)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sku rows: %w", err)
	}
	return out, nil
}

// SalesPoint is one day of the sales chart.
type SalesPoint struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int64           `json:"orders"`
}

func (r *Reporter) DailySales(ctx context.Context, clientID string, w Window) ([]SalesPoint, error) {
	args := []any{clientID}
	cond, args := w.clause("o", args)

	query := `SELECT
			TO_CHAR(DATE_TRUNC('day', o.processed_at), 'YYYY-MM-DD'),
			COALESCE(SUM(o.net_payment), 0),
			COUNT(*)
		FROM orders o WHERE o.client_id = $1` + cond + `
		GROUP BY 1 ORDER BY 1`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily sales: %w", err)
	}
	defer rows.Close()

	var out []SalesPoint
	for rows.Next() {
		var p SalesPoint
		if err := rows.Scan(&p.Date, &p.Revenue, &p.Orders); err != nil {
			return nil, fmt.Errorf("failed to scan sales row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read daily sales: %w", err)
	}
	return out, nil
}
