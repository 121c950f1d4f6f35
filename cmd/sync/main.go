package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/profitpeek/shopsync/internal/config"
	"github.com/profitpeek/shopsync/internal/db"
	"github.com/profitpeek/shopsync/internal/observability"
	"github.com/profitpeek/shopsync/internal/repository"
	"github.com/profitpeek/shopsync/internal/shopify"
	"github.com/profitpeek/shopsync/internal/syncer"
)

// One-shot sync for a single tenant, for operators and cron jobs.
func main() {
	clientID := flag.String("client", "", "client id to sync (required)")
	startDate := flag.String("start", "", "earliest order date, YYYY-MM-DD")
	endDate := flag.String("end", "", "latest order date, inclusive, YYYY-MM-DD")
	flag.Parse()

	if *clientID == "" {
		fmt.Fprintln(os.Stderr, "usage: sync -client <id> [-start YYYY-MM-DD] [-end YYYY-MM-DD]")
		os.Exit(2)
	}

	if err := run(*clientID, *startDate, *endDate); err != nil {
		fmt.Fprintf(os.Stderr, "sync error: %v\n", err)
		os.Exit(1)
	}
}

func run(clientID, startDate, endDate string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	observability.Init()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	repo := repository.NewRepository(pool)
	orchestrator := syncer.NewOrchestrator(repo, shopify.NewClient())

	res := orchestrator.Run(ctx, clientID, startDate, endDate)
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(out))

	if !res.OK {
		return fmt.Errorf("sync failed: %s", res.Message)
	}
	return nil
}
