package worker

import (
	"context"
	"sync"
	"time"

	"github.com/profitpeek/shopsync/internal/lock"
	"github.com/profitpeek/shopsync/internal/models"
	"github.com/profitpeek/shopsync/internal/observability"
	"github.com/profitpeek/shopsync/internal/syncer"
	"go.uber.org/zap"
)

// Runner executes one sync for a tenant. The orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, clientID, startDate, endDate string) syncer.Result
}

// CredentialLister enumerates the connected stores due for a sync.
type CredentialLister interface {
	ListCredentials(ctx context.Context) ([]models.Credential, error)
}

// SyncWorker runs a full sync for every connected store on a fixed interval.
// Each tenant syncs under a per-tenant lease so overlapping instances never
// run the same store twice.
type SyncWorker struct {
	runner   Runner
	creds    CredentialLister
	locker   *lock.Locker
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSyncWorker constructs a worker with a default hourly interval.
func NewSyncWorker(runner Runner, creds CredentialLister, locker *lock.Locker) *SyncWorker {
	return &SyncWorker{
		runner:   runner,
		creds:    creds,
		locker:   locker,
		interval: time.Hour,
		stopCh:   make(chan struct{}),
	}
}

// WithInterval updates the run interval.
func (w *SyncWorker) WithInterval(interval time.Duration) *SyncWorker {
	if interval > 0 {
		w.interval = interval
	}
	return w
}

// Start blocks and syncs all tenants at the configured interval.
func (w *SyncWorker) Start(ctx context.Context) {
	zap.L().Info("sync worker starting", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once immediately at startup.
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("sync worker context canceled")
			return
		case <-w.stopCh:
			zap.L().Info("sync worker stop signal received")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// Stop stops the running worker loop.
func (w *SyncWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Run starts the worker in a goroutine and returns a stop function.
func (w *SyncWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}

func (w *SyncWorker) runOnce(ctx context.Context) {
	creds, err := w.creds.ListCredentials(ctx)
	if err != nil {
		observability.IncrementWorkerRun("sync", "failed")
		zap.L().Error("list credentials for sync failed", zap.Error(err))
		return
	}

	for _, cred := range creds {
		w.syncTenant(ctx, cred.ClientID)
		if ctx.Err() != nil {
			return
		}
	}
	observability.IncrementWorkerRun("sync", "success")
}

// syncTenant runs one tenant under its lease. A failed tenant never aborts
// the sweep; the next tenant still syncs.
func (w *SyncWorker) syncTenant(ctx context.Context, clientID string) {
	log := zap.L().With(zap.String("client_id", clientID))

	lease, ok, err := w.locker.Acquire(ctx, clientID)
	if err != nil {
		log.Warn("sync lease acquire failed", zap.Error(err))
		return
	}
	if !ok {
		log.Info("sync lease held elsewhere, skipping")
		return
	}
	defer lease.Release(ctx)

	res := w.runner.Run(ctx, clientID, "", "")
	if !res.OK {
		log.Warn("scheduled sync failed", zap.String("message", res.Message))
		return
	}
	log.Info("scheduled sync completed",
		zap.Int("products", res.Products),
		zap.Int("orders", res.Orders))
}
