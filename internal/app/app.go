package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/profitpeek/shopsync/internal/api"
	"github.com/profitpeek/shopsync/internal/config"
	"github.com/profitpeek/shopsync/internal/db"
	"github.com/profitpeek/shopsync/internal/lock"
	"github.com/profitpeek/shopsync/internal/observability"
	"github.com/profitpeek/shopsync/internal/report"
	"github.com/profitpeek/shopsync/internal/repository"
	"github.com/profitpeek/shopsync/internal/shopify"
	"github.com/profitpeek/shopsync/internal/syncer"
	"github.com/profitpeek/shopsync/internal/worker"
)

// Run bootstraps the HTTP server and sync worker, blocking until shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	observability.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// Redis is optional: without it the per-tenant sync lock degrades to a
	// no-op, which is fine for single-instance deployments.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = newRedisClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
	}

	repo := repository.NewRepository(pool)
	client := shopify.NewClient()
	orchestrator := syncer.NewOrchestrator(repo, client)
	connector := syncer.NewConnector(repo, client, syncer.WithDefaultAPIVersion(cfg.ShopifyAPIVersion))
	reporter := report.NewReporter(pool)

	var redisCmd redis.Cmdable
	if redisClient != nil {
		redisCmd = redisClient
	}
	locker := lock.New(redisCmd, cfg.SyncLockTTL)

	syncWorker := worker.NewSyncWorker(orchestrator, repo, locker).
		WithInterval(cfg.SyncInterval)
	stopWorker := syncWorker.Run(ctx)
	logger.Info("sync worker started", zap.Duration("interval", cfg.SyncInterval))
	router := api.NewRouter(cfg, logger, pool, redisCmd, connector, orchestrator, reporter)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("port", cfg.HTTPPort))
		serverErr <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("stopping sync worker")
	stopWorker()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info", "":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func newRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
