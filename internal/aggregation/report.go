package aggregation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"swap-analytics/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// growthPercent computes (current-previous)/previous*100, rounded to 2
// places. When the previous period is zero the growth is indeterminate and
// reported as nil, never as NaN/Inf or an invented magnitude.
func growthPercent(current, previous decimal.Decimal) *float64 {
	if previous.IsZero() {
		return nil
	}
	g := current.Sub(previous).Div(previous).Mul(hundred).Round(2).InexactFloat64()
	return &g
}

func growthCount(current, previous int) *float64 {
	return growthPercent(decimal.NewFromInt(int64(current)), decimal.NewFromInt(int64(previous)))
}

// money rounds an internal full-precision total to the 2-place display
// value. This is the only place precision is dropped.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func summarize(a WindowAccumulator) domain.WindowSummary {
	return domain.WindowSummary{
		SwapCount: a.SwapCount,
		VolumeUSD: money(a.VolumeUSD),
	}
}

func summarizeWithGrowth(current, previous WindowAccumulator) domain.WindowSummary {
	s := summarize(current)
	s.VolumeGrowthPercent = growthPercent(current.VolumeUSD, previous.VolumeUSD)
	s.SwapCountGrowthPercent = growthCount(current.SwapCount, previous.SwapCount)
	return s
}

// buildReport converts the final run state into the output report: growth
// derivation, leaderboard ranking and display rounding.
func buildReport(state *runState, cfg Config, generatedAt time.Time) *domain.SwapReport {
	feePairs := make([]*pairAccumulator, 0, len(state.pairList))
	for _, p := range state.pairList {
		if p.feeEligible {
			feePairs = append(feePairs, p)
		}
	}

	return &domain.SwapReport{
		GeneratedAt: generatedAt,
		SideValued:  cfg.SideValued,

		AllTime:     summarize(state.global.AllTime),
		Last24h:     summarizeWithGrowth(state.global.Cur24h, state.global.Prev24h),
		Previous24h: summarize(state.global.Prev24h),
		Last7d:      summarizeWithGrowth(state.global.Cur7d, state.global.Prev7d),
		Previous7d:  summarize(state.global.Prev7d),
		Last30d:     summarizeWithGrowth(state.global.Cur30d, state.global.Prev30d),
		Previous30d: summarize(state.global.Prev30d),

		TopTradingPairs: pairBoards(state.pairList, cfg.TopPairs),
		FeeSwaps:        pairBoards(feePairs, cfg.TopPairs),
		TopSwappers:     swapperBoards(state.accList, cfg.TopAccounts),

		Notes: domain.ReportNotes{
			UnmappedIntentTokenIDs: sortedKeys(state.diag.unmappedTokenIDs),
			PriceIDMissing:         sortedKeys(state.diag.missingPriceIDs),
			BadAmounts:             state.diag.badAmountCount,
		},
	}
}

// rankPairs returns the top-n pairs by the given window metric, descending,
// with insertion order breaking ties (stable sort over the arrival-ordered
// slice).
func rankPairs(pairs []*pairAccumulator, n int, pick func(*pairAccumulator) WindowAccumulator) []domain.PairStats {
	ranked := make([]*pairAccumulator, len(pairs))
	copy(ranked, pairs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return pick(ranked[i]).VolumeUSD.GreaterThan(pick(ranked[j]).VolumeUSD)
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]domain.PairStats, 0, len(ranked))
	for _, p := range ranked {
		acc := pick(p)
		if acc.SwapCount == 0 {
			continue // pair never traded in this window
		}
		out = append(out, domain.PairStats{
			TokenInID:  p.tokenInID,
			TokenOutID: p.tokenOutID,
			SwapCount:  acc.SwapCount,
			VolumeUSD:  money(acc.VolumeUSD),
		})
	}
	return out
}

func pairBoards(pairs []*pairAccumulator, n int) domain.PairLeaderboards {
	return domain.PairLeaderboards{
		AllTime: rankPairs(pairs, n, func(p *pairAccumulator) WindowAccumulator { return p.totals.AllTime }),
		Last24h: rankPairs(pairs, n, func(p *pairAccumulator) WindowAccumulator { return p.totals.Cur24h }),
		Last7d:  rankPairs(pairs, n, func(p *pairAccumulator) WindowAccumulator { return p.totals.Cur7d }),
		Last30d: rankPairs(pairs, n, func(p *pairAccumulator) WindowAccumulator { return p.totals.Cur30d }),
	}
}

// rankAccounts returns the top-n accounts under the given descending
// ordering, stable over insertion order.
func rankAccounts(accounts []*accountAccumulator, n int, more func(a, b *accountAccumulator) bool) []domain.AccountStats {
	ranked := make([]*accountAccumulator, len(accounts))
	copy(ranked, accounts)
	sort.SliceStable(ranked, func(i, j int) bool { return more(ranked[i], ranked[j]) })

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]domain.AccountStats, 0, len(ranked))
	for _, a := range ranked {
		out = append(out, domain.AccountStats{
			AccountID:    a.accountID,
			SwapCount:    a.totals.AllTime.SwapCount,
			VolumeUSD:    money(a.totals.AllTime.VolumeUSD),
			FeeSwapCount: a.fee.AllTime.SwapCount,
			FeeVolumeUSD: money(a.fee.AllTime.VolumeUSD),
		})
	}
	return out
}

// rankAccountsWindow ranks by a window's volume and reports that window's
// totals instead of the all-time ones.
func rankAccountsWindow(accounts []*accountAccumulator, n int,
	pick func(*accountAccumulator) WindowAccumulator,
	pickFee func(*accountAccumulator) WindowAccumulator) []domain.AccountStats {

	ranked := make([]*accountAccumulator, len(accounts))
	copy(ranked, accounts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return pick(ranked[i]).VolumeUSD.GreaterThan(pick(ranked[j]).VolumeUSD)
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]domain.AccountStats, 0, len(ranked))
	for _, a := range ranked {
		acc := pick(a)
		if acc.SwapCount == 0 {
			continue // account inactive in this window
		}
		fee := pickFee(a)
		out = append(out, domain.AccountStats{
			AccountID:    a.accountID,
			SwapCount:    acc.SwapCount,
			VolumeUSD:    money(acc.VolumeUSD),
			FeeSwapCount: fee.SwapCount,
			FeeVolumeUSD: money(fee.VolumeUSD),
		})
	}
	return out
}

func swapperBoards(accounts []*accountAccumulator, n int) domain.SwapperLeaderboards {
	return domain.SwapperLeaderboards{
		ByVolume: rankAccounts(accounts, n, func(a, b *accountAccumulator) bool {
			return a.totals.AllTime.VolumeUSD.GreaterThan(b.totals.AllTime.VolumeUSD)
		}),
		ByCount: rankAccounts(accounts, n, func(a, b *accountAccumulator) bool {
			return a.totals.AllTime.SwapCount > b.totals.AllTime.SwapCount
		}),
		ByFeeVolume: rankAccounts(accounts, n, func(a, b *accountAccumulator) bool {
			return a.fee.AllTime.VolumeUSD.GreaterThan(b.fee.AllTime.VolumeUSD)
		}),
		Last24h: rankAccountsWindow(accounts, n,
			func(a *accountAccumulator) WindowAccumulator { return a.totals.Cur24h },
			func(a *accountAccumulator) WindowAccumulator { return a.fee.Cur24h }),
		Last7d: rankAccountsWindow(accounts, n,
			func(a *accountAccumulator) WindowAccumulator { return a.totals.Cur7d },
			func(a *accountAccumulator) WindowAccumulator { return a.fee.Cur7d }),
		Last30d: rankAccountsWindow(accounts, n,
			func(a *accountAccumulator) WindowAccumulator { return a.totals.Cur30d },
			func(a *accountAccumulator) WindowAccumulator { return a.fee.Cur30d }),
		TotalUniqueAccounts: len(accounts),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
