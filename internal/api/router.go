package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/profitpeek/shopsync/internal/api/handler"
	"github.com/profitpeek/shopsync/internal/api/middleware"
	"github.com/profitpeek/shopsync/internal/api/spec"
	"github.com/profitpeek/shopsync/internal/config"
	"github.com/profitpeek/shopsync/internal/report"
)

type Router struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *pgxpool.Pool
	redis     redis.Cmdable
	connector handler.Connector
	runner    handler.SyncRunner
	reporter  *report.Reporter
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *pgxpool.Pool,
	redisClient redis.Cmdable,
	connector handler.Connector,
	runner handler.SyncRunner,
	reporter *report.Reporter,
) *Router {
	return &Router{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		redis:     redisClient,
		connector: connector,
		runner:    runner,
		reporter:  reporter,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))

	healthHandler := handler.NewHealthHandler(api.db, api.redis)
	shopifyHandler := handler.NewShopifyHandler(api.connector, api.runner)
	reportHandler := handler.NewReportHandler(api.reporter)

	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))

		r.Post("/v1/shopify/connect", shopifyHandler.Connect)
		r.Post("/v1/shopify/sync", shopifyHandler.Sync)

		r.Get("/v1/reports/dashboard", reportHandler.Dashboard)
		r.Get("/v1/reports/profit", reportHandler.Profit)
		r.Get("/v1/reports/skus", reportHandler.SKUs)
		r.Get("/v1/reports/sales", reportHandler.Sales)
	})

	return r
}
