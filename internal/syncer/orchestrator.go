package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/profitpeek/shopsync/internal/observability"
	"github.com/profitpeek/shopsync/internal/repository"
	"go.uber.org/zap"
)

// Run phases, in order. Failed is reachable from any of them.
const (
	phaseHealthCheck = "health_check"
	phaseProducts    = "products"
	phaseOrders      = "orders"
	phaseFull        = "full"
)

// Result is the non-throwing summary every sync run produces. Callers never
// observe a raw error; the scheduler can log-and-continue unconditionally.
type Result struct {
	OK         bool    `json:"ok"`
	Message    string  `json:"message"`
	Products   int     `json:"products"`
	Variants   int     `json:"variants"`
	Orders     int     `json:"orders"`
	LineItems  int     `json:"lineItems"`
	LastCursor *string `json:"lastCursor,omitempty"`
	HasMore    *bool   `json:"hasMore,omitempty"`
}

func failure(message string) Result {
	return Result{OK: false, Message: message}
}

// Orchestrator sequences one tenant's sync: credential lookup, pre-flight
// health check, catalog phase, order phase, post-run sanity check. Phases are
// strictly sequential because the order phase depends on a fully refreshed
// cost index.
type Orchestrator struct {
	store    Store
	remote   Remote
	products *ProductReconciler
	orders   *OrderReconciler
}

func NewOrchestrator(store Store, remote Remote) *Orchestrator {
	return &Orchestrator{
		store:    store,
		remote:   remote,
		products: NewProductReconciler(store, remote),
		orders:   NewOrderReconciler(store, remote),
	}
}

// Run executes one full sync for a tenant. Upserts committed before a failure
// stay committed; the idempotent upsert design makes re-running safe.
func (o *Orchestrator) Run(ctx context.Context, clientID, startDate, endDate string) Result {
	log := zap.L().With(zap.String("client_id", clientID))

	cred, err := o.store.GetCredential(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return failure("no credential stored for client")
		}
		return failure(fmt.Sprintf("load credential: %v", err))
	}

	// Pre-flight probe: an unreachable or degraded API must fail the run
	// before any local row is touched, so a broken remote can never look
	// like a successful-but-empty sync.
	if _, err := o.remote.ShopInfo(ctx, cred); err != nil {
		observability.IncrementSyncPhase(phaseHealthCheck, "failed")
		log.Warn("sync health check failed", zap.Error(err))
		return failure(fmt.Sprintf("health check failed, existing data untouched: %v", err))
	}
	observability.IncrementSyncPhase(phaseHealthCheck, "success")

	ordersBefore, countErr := o.store.CountOrders(ctx, clientID)
	if countErr != nil {
		log.Warn("pre-sync order count failed", zap.Error(countErr))
	}

	productStats, err := o.products.SyncAll(ctx, cred)
	if err != nil {
		observability.IncrementSyncPhase(phaseProducts, "failed")
		log.Error("product sync failed", zap.Error(err))
		return failure(fmt.Sprintf("product sync failed, already committed upserts preserved: %v", err))
	}
	observability.IncrementSyncPhase(phaseProducts, "success")

	orderStats, err := o.orders.SyncAll(ctx, cred, startDate, endDate)
	if err != nil {
		observability.IncrementSyncPhase(phaseOrders, "failed")
		log.Error("order sync failed", zap.Error(err))
		return failure(fmt.Sprintf("order sync failed, already committed upserts preserved: %v", err))
	}
	observability.IncrementSyncPhase(phaseOrders, "success")

	// Upsert-only reconciliation makes true data loss structurally unlikely,
	// but a non-zero-to-zero order count is still worth an operator's eyes.
	if countErr == nil && ordersBefore > 0 {
		if ordersAfter, err := o.store.CountOrders(ctx, clientID); err == nil && ordersAfter == 0 {
			observability.IncrementOrderCountDrop()
			log.Warn("order count dropped to zero after sync",
				zap.Int64("orders_before", ordersBefore))
		}
	}

	observability.IncrementSyncPhase(phaseFull, "success")
	log.Info("sync completed",
		zap.Int("products", productStats.Products),
		zap.Int("variants", productStats.Variants),
		zap.Int("orders", orderStats.Orders),
		zap.Int("line_items", orderStats.LineItems),
		zap.Bool("has_more", orderStats.HasMore),
	)

	hasMore := orderStats.HasMore
	return Result{
		OK:         true,
		Message:    "sync completed",
		Products:   productStats.Products,
		Variants:   productStats.Variants,
		Orders:     orderStats.Orders,
		LineItems:  orderStats.LineItems,
		LastCursor: orderStats.LastCursor,
		HasMore:    &hasMore,
	}
}
