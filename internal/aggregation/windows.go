package aggregation

import "time"

// Bounds holds the six window boundary instants for one run, derived once
// from the run's start time. All values are Unix milliseconds.
type Bounds struct {
	Now int64
	H24 int64 // now - 24h
	H48 int64 // now - 48h
	D7  int64 // now - 7d
	D14 int64 // now - 14d
	D30 int64 // now - 30d
	D60 int64 // now - 60d
}

// NewBounds captures the window boundaries relative to now.
func NewBounds(now time.Time) Bounds {
	ms := now.UnixMilli()
	day := int64(24 * time.Hour / time.Millisecond)
	return Bounds{
		Now: ms,
		H24: ms - day,
		H48: ms - 2*day,
		D7:  ms - 7*day,
		D14: ms - 14*day,
		D30: ms - 30*day,
		D60: ms - 60*day,
	}
}

// inWindow reports whether ts falls inside [lower, upper). Each window size
// partitions events so that one event lands in at most one of
// {current, previous}: current is [now-w, now+inf), previous is
// [now-2w, now-w).
func inWindow(ts, lower, upper int64) bool {
	return ts >= lower && ts < upper
}
