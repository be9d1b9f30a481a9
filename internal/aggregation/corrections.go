package aggregation

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnitCorrection patches tokens whose historical feed rows reported amounts
// with the wrong decimal scale. Events strictly before Cutover are
// multiplied by Multiplier; events at or after it are left alone. This is a
// data-quality patch table, not a general mechanism.
type UnitCorrection struct {
	PriceID    string
	Cutover    int64 // Unix milliseconds
	Multiplier decimal.Decimal
}

// DefaultCorrections covers the known historical decimal-reporting bugs.
func DefaultCorrections() []UnitCorrection {
	return []UnitCorrection{
		// eth.omft.near rows were emitted in wei until the bridge fix
		// landed on 2025-03-12.
		{
			PriceID:    "eth",
			Cutover:    time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC).UnixMilli(),
			Multiplier: decimal.New(1, -18),
		},
	}
}

// correctionTable indexes corrections by price id for the per-event path.
type correctionTable map[string][]UnitCorrection

func newCorrectionTable(entries []UnitCorrection) correctionTable {
	t := make(correctionTable, len(entries))
	for _, e := range entries {
		t[e.PriceID] = append(t[e.PriceID], e)
	}
	return t
}

// apply returns the corrected volume for an event of the given price id and
// timestamp.
func (t correctionTable) apply(priceID string, ts int64, volumeUSD decimal.Decimal) decimal.Decimal {
	for _, e := range t[priceID] {
		if ts < e.Cutover {
			volumeUSD = volumeUSD.Mul(e.Multiplier)
		}
	}
	return volumeUSD
}
