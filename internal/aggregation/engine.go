// Package aggregation implements the streaming fold over swap events: one
// pass over the paged event log into all-time, windowed, per-pair and
// per-account running totals, finalized into a SwapReport.
package aggregation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"swap-analytics/internal/domain"
	"swap-analytics/internal/eventsource"
	"swap-analytics/internal/observability"
	"swap-analytics/internal/pricing"
	"swap-analytics/internal/tokens"
)

// ErrInvalidSide is returned when the valued-leg selector is neither "in"
// nor "out".
var ErrInvalidSide = errors.New("side valued must be \"in\" or \"out\"")

// Config fixes the run-wide knobs of the engine.
type Config struct {
	SideValued    string        // which leg is priced, "in" or "out"
	PageSize      int           // events per source page
	MaxEvents     int           // optional processed-event ceiling, 0 = unbounded
	ThrottleEvery int           // pages between self-throttle pauses, 0 = never
	ThrottleDelay time.Duration // pause length
	TopPairs      int           // leaderboard truncation
	TopAccounts   int

	// Corrections patches historically mis-scaled tokens. Nil means
	// DefaultCorrections.
	Corrections []UnitCorrection
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		SideValued:    domain.SideIn,
		PageSize:      500,
		ThrottleEvery: 5,
		ThrottleDelay: 200 * time.Millisecond,
		TopPairs:      20,
		TopAccounts:   20,
		Corrections:   DefaultCorrections(),
	}
}

// PriceProvider supplies the immutable price table for a run.
type PriceProvider interface {
	FetchAll(ctx context.Context) (pricing.Table, error)
}

// Engine runs one aggregation at a time over the configured source. Each
// Run call owns entirely fresh state, so concurrent runs are safe by
// construction.
type Engine struct {
	source     eventsource.Source
	prices     PriceProvider
	classifier *tokens.Classifier
	cfg        Config
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewEngine creates an aggregation engine. metrics may be nil.
func NewEngine(source eventsource.Source, prices PriceProvider, classifier *tokens.Classifier,
	cfg Config, logger *zap.Logger, metrics *observability.Metrics) (*Engine, error) {

	if cfg.SideValued != domain.SideIn && cfg.SideValued != domain.SideOut {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSide, cfg.SideValued)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 500
	}
	if cfg.TopPairs <= 0 {
		cfg.TopPairs = 20
	}
	if cfg.TopAccounts <= 0 {
		cfg.TopAccounts = 20
	}
	if cfg.Corrections == nil {
		cfg.Corrections = DefaultCorrections()
	}

	return &Engine{
		source:     source,
		prices:     prices,
		classifier: classifier,
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock sets a custom clock for deterministic window boundaries in
// tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Run streams the full event log once and returns the assembled report.
// A run either completes fully or fails entirely: upstream failures after
// exhausted retries abort the run, while malformed individual events are
// recorded in the report's notes and skipped.
func (e *Engine) Run(ctx context.Context) (*domain.SwapReport, error) {
	start := e.now()

	table, err := e.prices.FetchAll(ctx)
	if err != nil {
		e.metrics.RecordRun("error", e.now().Sub(start))
		return nil, fmt.Errorf("fetch price table: %w", err)
	}

	corrections := newCorrectionTable(e.cfg.Corrections)
	state := newRunState(NewBounds(start))

	processed := 0
	pages := 0

	for offset := 0; ; {
		page, err := e.source.FetchPage(ctx, offset, e.cfg.PageSize)
		if err != nil {
			e.metrics.RecordRun("error", e.now().Sub(start))
			return nil, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}
		pages++
		e.metrics.RecordPage()

		for i := range page {
			e.foldEvent(&page[i], table, corrections, state)
			processed++
			if e.cfg.MaxEvents > 0 && processed >= e.cfg.MaxEvents {
				e.logger.Info("processed-event ceiling reached",
					zap.Int("max_events", e.cfg.MaxEvents))
				goto done
			}
		}

		if len(page) < e.cfg.PageSize {
			break // end of stream
		}
		offset += len(page)

		// Self-throttle to stay under upstream rate limits. Ordering and
		// totals are unaffected, only wall-clock duration.
		if e.cfg.ThrottleEvery > 0 && pages%e.cfg.ThrottleEvery == 0 && e.cfg.ThrottleDelay > 0 {
			select {
			case <-ctx.Done():
				e.metrics.RecordRun("error", e.now().Sub(start))
				return nil, ctx.Err()
			case <-time.After(e.cfg.ThrottleDelay):
			}
		}
	}

done:
	report := buildReport(state, e.cfg, start)
	elapsed := e.now().Sub(start)
	e.metrics.RecordRun("ok", elapsed)

	e.logger.Info("aggregation run complete",
		zap.Int("events_processed", processed),
		zap.Int("pages", pages),
		zap.Int("unique_pairs", len(state.pairList)),
		zap.Int("unique_accounts", len(state.accList)),
		zap.Int("bad_amounts", state.diag.badAmountCount),
		zap.Duration("elapsed", elapsed))

	return report, nil
}

// foldEvent classifies, prices and accumulates a single event. Recoverable
// problems mark the diagnostics and leave every accumulator untouched.
func (e *Engine) foldEvent(ev *domain.SwapEvent, table pricing.Table, corrections correctionTable, state *runState) {
	amountStr, tokenID := ev.AmountIn, ev.TokenInID
	if e.cfg.SideValued == domain.SideOut {
		amountStr, tokenID = ev.AmountOut, ev.TokenOutID
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(amountStr))
	if err != nil || amount.Sign() <= 0 {
		state.diag.badAmountCount++
		e.metrics.RecordSkip("bad_amount")
		return
	}

	priceID := e.classifier.ResolvePriceID(tokenID)
	if priceID == "" {
		state.diag.unmappedTokenIDs[tokenID] = struct{}{}
		e.metrics.RecordSkip("unmapped_token")
		return
	}

	price, ok := table[priceID]
	if !ok {
		state.diag.missingPriceIDs[priceID] = struct{}{}
		e.metrics.RecordSkip("missing_price")
		return
	}

	volumeUSD := corrections.apply(priceID, ev.Timestamp, amount.Mul(price))
	feeEligible := !e.classifier.IsEquivalentPair(ev.TokenInID, ev.TokenOutID)

	state.global.add(ev.Timestamp, volumeUSD, state.bounds)

	pair := state.pair(ev.TokenInID, ev.TokenOutID, feeEligible)
	pair.totals.add(ev.Timestamp, volumeUSD, state.bounds)

	account := state.account(ev.AccountID)
	account.totals.add(ev.Timestamp, volumeUSD, state.bounds)
	if feeEligible {
		account.fee.add(ev.Timestamp, volumeUSD, state.bounds)
	}

	e.metrics.RecordEvent()
}
