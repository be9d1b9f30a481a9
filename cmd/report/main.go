package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"swap-analytics/internal/aggregation"
	"swap-analytics/internal/config"
	"swap-analytics/internal/eventsource"
	"swap-analytics/internal/logging"
	"swap-analytics/internal/pricing"
	chstorage "swap-analytics/internal/storage/clickhouse"
	"swap-analytics/internal/tokens"
)

func main() {
	// Parse flags, environment fills the rest
	sideValued := flag.String("side", "", "Which swap leg is valued: in or out (default from SIDE_VALUED)")
	outputPath := flag.String("output", "", "Write the report JSON to this file instead of stdout")
	maxEvents := flag.Int("max-events", -1, "Stop after processing this many events (-1 = use MAX_EVENTS)")
	flag.Parse()

	_ = godotenv.Load()

	logger, err := logging.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := config.Load()
	if *sideValued != "" {
		cfg.SideValued = *sideValued
	}
	if *maxEvents >= 0 {
		cfg.MaxEvents = *maxEvents
	}

	ctx := context.Background()

	source, cleanup, err := buildSource(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build event source", zap.Error(err))
	}
	defer cleanup()

	engine, err := buildEngine(source, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build aggregation engine", zap.Error(err))
	}

	report, err := engine.Run(ctx)
	if err != nil {
		logger.Fatal("Aggregation run failed", zap.Error(err))
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Fatal("Failed to marshal report", zap.Error(err))
	}

	if *outputPath != "" {
		if err := os.WriteFile(*outputPath, append(out, '\n'), 0o644); err != nil {
			logger.Fatal("Failed to write report file", zap.Error(err))
		}
		logger.Info("Report written", zap.String("path", *outputPath))
		return
	}

	fmt.Println(string(out))
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
func buildEngine(source eventsource.Source, cfg *config.Config, logger *zap.Logger) (*aggregation.Engine, error) {
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

	return aggregation.NewEngine(source, resolver, classifier, engineCfg, logger, nil)
}
