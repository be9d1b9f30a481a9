package aggregation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// Every event must land in at most one of {current, previous} per window
// size; events older than the previous lower bound land in neither.
func TestWindowSet_Disjointness(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	b := NewBounds(now)
	one := decimal.NewFromInt(1)

	tests := []struct {
		name    string
		age     time.Duration
		cur24   int
		prev24  int
		cur7    int
		prev7   int
		cur30   int
		prev30  int
	}{
		{"one hour old", time.Hour, 1, 0, 1, 0, 1, 0},
		{"exactly 24h boundary", 24 * time.Hour, 1, 0, 1, 0, 1, 0},
		{"30 hours old", 30 * time.Hour, 0, 1, 1, 0, 1, 0},
		{"exactly 48h boundary", 48 * time.Hour, 0, 1, 1, 0, 1, 0},
		{"3 days old", 72 * time.Hour, 0, 0, 1, 0, 1, 0},
		{"10 days old", 10 * 24 * time.Hour, 0, 0, 0, 1, 1, 0},
		{"20 days old", 20 * 24 * time.Hour, 0, 0, 0, 0, 1, 0},
		{"45 days old", 45 * 24 * time.Hour, 0, 0, 0, 0, 0, 1},
		{"90 days old", 90 * 24 * time.Hour, 0, 0, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s windowSet
			ts := now.Add(-tt.age).UnixMilli()
			s.add(ts, one, b)

			assert.Equal(t, 1, s.AllTime.SwapCount, "all-time always counts")
			assert.Equal(t, tt.cur24, s.Cur24h.SwapCount, "cur24")
			assert.Equal(t, tt.prev24, s.Prev24h.SwapCount, "prev24")
			assert.Equal(t, tt.cur7, s.Cur7d.SwapCount, "cur7")
			assert.Equal(t, tt.prev7, s.Prev7d.SwapCount, "prev7")
			assert.Equal(t, tt.cur30, s.Cur30d.SwapCount, "cur30")
			assert.Equal(t, tt.prev30, s.Prev30d.SwapCount, "prev30")

			// At most one of each current/previous pair fired.
			assert.LessOrEqual(t, tt.cur24+tt.prev24, 1)
			assert.LessOrEqual(t, tt.cur7+tt.prev7, 1)
			assert.LessOrEqual(t, tt.cur30+tt.prev30, 1)
		})
	}
}

func TestNewBounds(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	b := NewBounds(now)

	assert.Equal(t, now.UnixMilli(), b.Now)
	assert.Equal(t, now.Add(-24*time.Hour).UnixMilli(), b.H24)
	assert.Equal(t, now.Add(-48*time.Hour).UnixMilli(), b.H48)
	assert.Equal(t, now.Add(-7*24*time.Hour).UnixMilli(), b.D7)
	assert.Equal(t, now.Add(-14*24*time.Hour).UnixMilli(), b.D14)
	assert.Equal(t, now.Add(-30*24*time.Hour).UnixMilli(), b.D30)
	assert.Equal(t, now.Add(-60*24*time.Hour).UnixMilli(), b.D60)
}
