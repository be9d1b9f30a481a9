package aggregation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrowthPercent(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		previous string
		want     *float64
	}{
		{"half up", "150", "100", ptr(50.0)},
		{"decline", "50", "100", ptr(-50.0)},
		{"flat", "100", "100", ptr(0.0)},
		{"zero previous zero current", "0", "0", nil},
		{"zero previous nonzero current", "500", "0", nil},
		{"fractional", "1", "3", ptr(-66.67)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := growthPercent(decimal.RequireFromString(tt.current), decimal.RequireFromString(tt.previous))
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func ptr(f float64) *float64 { return &f }

// Accumulation is exact; only the display value is rounded.
func TestMoneyRounding(t *testing.T) {
	var acc WindowAccumulator
	for i := 0; i < 10; i++ {
		acc.add(decimal.RequireFromString("0.1"))
	}
	assert.Equal(t, 1.0, money(acc.VolumeUSD))
	assert.Equal(t, 10, acc.SwapCount)

	assert.Equal(t, 2.35, money(decimal.RequireFromString("2.345")))
	assert.Equal(t, 0.0, money(decimal.Zero))
}

func TestRankPairs_StableTiesAndTruncation(t *testing.T) {
	state := newRunState(NewBounds(time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)))
	ten := decimal.NewFromInt(10)
	five := decimal.NewFromInt(5)

	// Insertion order: a, b, c. a and c tie on volume.
	for _, p := range []struct {
		in, out string
		vol     decimal.Decimal
	}{
		{"token-a", "usdt", ten},
		{"token-b", "usdt", five},
		{"token-c", "usdt", ten},
	} {
		acc := state.pair(p.in, p.out, true)
		acc.totals.add(state.bounds.Now, p.vol, state.bounds)
	}

	ranked := rankPairs(state.pairList, 2, func(p *pairAccumulator) WindowAccumulator {
		return p.totals.AllTime
	})

	require.Len(t, ranked, 2)
	// a ranks before c on the tie because it was observed first.
	assert.Equal(t, "token-a", ranked[0].TokenInID)
	assert.Equal(t, "token-c", ranked[1].TokenInID)
}

func TestRankPairs_DropsWindowInactivePairs(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	state := newRunState(NewBounds(now))

	// Only traded 3 days ago: present all-time, absent from 24h board.
	old := state.pair("token-a", "usdt", true)
	old.totals.add(now.Add(-72*time.Hour).UnixMilli(), decimal.NewFromInt(10), state.bounds)

	allTime := rankPairs(state.pairList, 10, func(p *pairAccumulator) WindowAccumulator {
		return p.totals.AllTime
	})
	last24 := rankPairs(state.pairList, 10, func(p *pairAccumulator) WindowAccumulator {
		return p.totals.Cur24h
	})

	assert.Len(t, allTime, 1)
	assert.Empty(t, last24)
}

func TestBuildReport_FeePairFiltering(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	state := newRunState(NewBounds(now))
	ts := now.Add(-time.Hour).UnixMilli()

	trade := state.pair("wrap.near", "usdt", true)
	trade.totals.add(ts, decimal.NewFromInt(100), state.bounds)
	deposit := state.pair("near", "wrap.near", false)
	deposit.totals.add(ts, decimal.NewFromInt(1000), state.bounds)
	state.global.add(ts, decimal.NewFromInt(1100), state.bounds)

	report := buildReport(state, DefaultConfig(), now)

	// The deposit dominates raw pair stats but is absent from fee boards.
	require.Len(t, report.TopTradingPairs.AllTime, 2)
	assert.Equal(t, "near", report.TopTradingPairs.AllTime[0].TokenInID)
	require.Len(t, report.FeeSwaps.AllTime, 1)
	assert.Equal(t, "wrap.near", report.FeeSwaps.AllTime[0].TokenInID)
}

func TestBuildReport_NotesAreSorted(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	state := newRunState(NewBounds(now))
	state.diag.unmappedTokenIDs["zeta"] = struct{}{}
	state.diag.unmappedTokenIDs["alpha"] = struct{}{}
	state.diag.missingPriceIDs["near"] = struct{}{}
	state.diag.badAmountCount = 2

	report := buildReport(state, DefaultConfig(), now)

	assert.Equal(t, []string{"alpha", "zeta"}, report.Notes.UnmappedIntentTokenIDs)
	assert.Equal(t, []string{"near"}, report.Notes.PriceIDMissing)
	assert.Equal(t, 2, report.Notes.BadAmounts)
}

func TestSwapperBoards_WindowRankingUsesWindowTotals(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	state := newRunState(NewBounds(now))
	recent := now.Add(-time.Hour).UnixMilli()
	older := now.Add(-10 * 24 * time.Hour).UnixMilli()

	// alice: huge volume, all of it long ago. bob: small but recent.
	alice := state.account("alice.near")
	alice.totals.add(older, decimal.NewFromInt(100000), state.bounds)
	alice.fee.add(older, decimal.NewFromInt(100000), state.bounds)
	bob := state.account("bob.near")
	bob.totals.add(recent, decimal.NewFromInt(50), state.bounds)
	bob.fee.add(recent, decimal.NewFromInt(50), state.bounds)

	boards := swapperBoards(state.accList, 10)

	require.NotEmpty(t, boards.ByVolume)
	assert.Equal(t, "alice.near", boards.ByVolume[0].AccountID)

	// Only bob was active in the last 24h, ranked on his window totals.
	require.Len(t, boards.Last24h, 1)
	assert.Equal(t, "bob.near", boards.Last24h[0].AccountID)
	assert.Equal(t, 50.0, boards.Last24h[0].VolumeUSD)

	assert.Equal(t, 2, boards.TotalUniqueAccounts)
}
