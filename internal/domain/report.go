package domain

import "time"

// WindowSummary aggregates swap count and USD volume for one time window.
// Growth pointers are nil on all-time and previous windows, and also on
// current windows when the previous period is zero (growth is indeterminate,
// never NaN/Inf).
type WindowSummary struct {
	SwapCount              int      `json:"swapCount"`
	VolumeUSD              float64  `json:"volumeUsd"`
	VolumeGrowthPercent    *float64 `json:"volumeGrowthPercent,omitempty"`
	SwapCountGrowthPercent *float64 `json:"swapCountGrowthPercent,omitempty"`
}

// PairStats is one row of a trading-pair leaderboard.
type PairStats struct {
	TokenInID  string  `json:"tokenInId"`
	TokenOutID string  `json:"tokenOutId"`
	SwapCount  int     `json:"swapCount"`
	VolumeUSD  float64 `json:"volumeUsd"`
}

// PairLeaderboards holds ranked pair lists per window.
type PairLeaderboards struct {
	AllTime []PairStats `json:"allTime"`
	Last24h []PairStats `json:"last24h"`
	Last7d  []PairStats `json:"last7d"`
	Last30d []PairStats `json:"last30d"`
}

// AccountStats is one row of a swapper leaderboard.
type AccountStats struct {
	AccountID    string  `json:"accountId"`
	SwapCount    int     `json:"swapCount"`
	VolumeUSD    float64 `json:"volumeUsd"`
	FeeSwapCount int     `json:"feeSwapCount"`
	FeeVolumeUSD float64 `json:"feeVolumeUsd"`
}

// SwapperLeaderboards holds ranked account lists per metric and window.
type SwapperLeaderboards struct {
	ByVolume            []AccountStats `json:"byVolume"`
	ByCount             []AccountStats `json:"byCount"`
	ByFeeVolume         []AccountStats `json:"byFeeVolume"`
	Last24h             []AccountStats `json:"last24h"`
	Last7d              []AccountStats `json:"last7d"`
	Last30d             []AccountStats `json:"last30d"`
	TotalUniqueAccounts int            `json:"totalUniqueAccounts"`
}

// ReportNotes surfaces per-event data-quality issues accumulated over the
// run. It lets consumers distinguish "zero volume because no activity" from
// "zero volume because of unmapped tokens".
type ReportNotes struct {
	UnmappedIntentTokenIDs []string `json:"unmappedIntentTokenIds"`
	PriceIDMissing         []string `json:"priceIdMissing"`
	BadAmounts             int      `json:"badAmounts"`
}

// SwapReport is the full output of one aggregation run. Monetary fields are
// rounded to 2 places for display; internal computation keeps full decimal
// precision until the final rounding step.
type SwapReport struct {
	GeneratedAt time.Time `json:"generatedAt"`
	SideValued  string    `json:"sideValued"`

	AllTime     WindowSummary `json:"allTime"`
	Last24h     WindowSummary `json:"last24h"`
	Previous24h WindowSummary `json:"previous24h"`
	Last7d      WindowSummary `json:"last7d"`
	Previous7d  WindowSummary `json:"previous7d"`
	Last30d     WindowSummary `json:"last30d"`
	Previous30d WindowSummary `json:"previous30d"`

	TopTradingPairs PairLeaderboards    `json:"topTradingPairs"`
	FeeSwaps        PairLeaderboards    `json:"feeSwaps"`
	TopSwappers     SwapperLeaderboards `json:"topSwappers"`

	Notes ReportNotes `json:"notes"`
}
