package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"swap-analytics/internal/aggregation"
	"swap-analytics/internal/config"
	"swap-analytics/internal/eventsource"
	"swap-analytics/internal/logging"
	"swap-analytics/internal/observability"
	"swap-analytics/internal/pricing"
	"swap-analytics/internal/server"
	"swap-analytics/internal/storage"
	chstorage "swap-analytics/internal/storage/clickhouse"
	"swap-analytics/internal/storage/memory"
	"swap-analytics/internal/storage/migrations"
	pgstorage "swap-analytics/internal/storage/postgres"
	redisstorage "swap-analytics/internal/storage/redis"
	"swap-analytics/internal/tokens"
)

func main() {
	_ = godotenv.Load()

	logger, err := logging.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.Load()
	metrics := observability.NewMetrics("")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Report archive: Postgres when configured, in-memory otherwise.
	var store storage.ReportStore
	if cfg.PostgresDSN != "" {
		pool, err := pgstorage.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("Failed to connect to Postgres", zap.Error(err))
		}
		defer pool.Close()

		if err := migrations.RunPostgres(ctx, pool); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		store = pgstorage.NewReportStore(pool)
		logger.Info("Using Postgres report archive")
	} else {
		store = memory.NewReportStore()
		logger.Info("Using in-memory report archive")
	}

	// Report cache: Redis when configured, in-memory otherwise.
	var cache storage.ReportCache
	if cfg.RedisAddr != "" {
		rc, err := redisstorage.NewReportCache(ctx, cfg.RedisAddr, cfg.RedisPassword, 0)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer rc.Close()
		cache = rc
		logger.Info("Using Redis report cache", zap.String("addr", cfg.RedisAddr))
	} else {
		cache = memory.NewReportCache()
	}

	source, cleanup, err := buildSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build event source", zap.Error(err))
	}
	defer cleanup()

	engine, err := buildEngine(source, cfg, logger, metrics)
	if err != nil {
		logger.Fatal("Failed to build aggregation engine", zap.Error(err))
	}

	hub := server.NewBroadcaster(logger)

	refresh := func() {
		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()

		report, err := engine.Run(runCtx)
		if err != nil {
			logger.Error("Scheduled aggregation failed", zap.Error(err))
			return
		}

		if err := store.Save(runCtx, report); err != nil {
			logger.Error("Failed to archive report", zap.Error(err))
		} else {
			metrics.RecordArchive()
		}
		if err := cache.Set(runCtx, report, cfg.ReportCacheTTL); err != nil {
			logger.Warn("Failed to cache report", zap.Error(err))
		}
		hub.Broadcast(report)
	}

	// Compute once at startup so the API serves immediately.
	go refresh()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.RefreshSpec, refresh); err != nil {
		logger.Fatal("Invalid refresh schedule", zap.String("spec", cfg.RefreshSpec), zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(logger, store, cache, metrics, hub, cfg.ReportCacheTTL)
	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", cfg.ListenAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
	}
}

// buildSource selects the event source: direct ClickHouse when a DSN is
// configured, otherwise the SQL-over-HTTP endpoint.
func buildSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (eventsource.Source, func(), error) {
	filter := eventsource.Filter{
		EventType:                 cfg.EventType,
		Network:                   cfg.Network,
		ExcludedAccounts:          cfg.ExcludedAccounts,
		ExcludedAccountSubstrings: cfg.ExcludedAccountSubstrings,
	}

	if cfg.ClickHouseDSN != "" {
		conn, err := chstorage.NewConn(ctx, cfg.ClickHouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		return eventsource.NewClickHouseSource(conn, filter), func() { conn.Close() }, nil
	}

	client := eventsource.NewQueryClient(cfg.EventsAPIURL, filter, logger,
		eventsource.WithAPIKey(cfg.EventsAPIKey))
	return client, func() {}, nil
}

// buildEngine wires the price resolver and the aggregation engine.
func buildEngine(source eventsource.Source, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (*aggregation.Engine, error) {
	classifier := tokens.NewClassifier(tokens.DefaultRegistry())

	resolver := pricing.NewResolver(
		pricing.NewPrimaryClient(cfg.PrimaryPriceURL),
		pricing.NewFallbackClient(cfg.FallbackPriceURL),
		pricing.NewCache(cfg.PriceCacheTTL),
		logger,
	)

	engineCfg := aggregation.DefaultConfig()
	engineCfg.SideValued = cfg.SideValued
	engineCfg.PageSize = cfg.PageSize
	engineCfg.MaxEvents = cfg.MaxEvents
	engineCfg.ThrottleEvery = cfg.ThrottleEvery
	engineCfg.ThrottleDelay = cfg.ThrottleDelay
	engineCfg.TopPairs = cfg.TopPairs
	engineCfg.TopAccounts = cfg.TopAccounts

	return aggregation.NewEngine(source, resolver, classifier, engineCfg, logger, metrics)
}
