package syncer

import (
	"context"
	"fmt"

	"github.com/profitpeek/shopsync/internal/domain"
	"github.com/shopspring/decimal"
)

// CostIndex is a per-run, read-only snapshot of variant remote ID → unit
// cost. It is built once before the order phase starts and never shared
// across runs or tenants.
type CostIndex struct {
	costs map[string]decimal.Decimal
}

// BuildCostIndex reads all stored variants for the tenant. Variants with an
// unknown (null) cost enter the index as zero; that defaulting happens only
// here, at the lookup boundary, never at storage time.
func BuildCostIndex(ctx context.Context, store Store, clientID string) (*CostIndex, error) {
	rows, err := store.ListVariantCosts(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list variant costs: %w", err)
	}

	idx := &CostIndex{costs: make(map[string]decimal.Decimal, len(rows))}
	for _, row := range rows {
		idx.costs[row.ShopifyID] = domain.ZeroIfNull(row.InventoryCost)
	}
	return idx, nil
}

// UnitCost returns the known cost for a variant. Unknown variants cost zero.
func (ci *CostIndex) UnitCost(variantID string) decimal.Decimal {
	if c, ok := ci.costs[variantID]; ok {
		return c
	}
	return decimal.Zero
}

// Len reports how many variants the snapshot covers.
func (ci *CostIndex) Len() int {
	return len(ci.costs)
}
