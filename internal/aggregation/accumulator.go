package aggregation

import "github.com/shopspring/decimal"

// WindowAccumulator is a running (count, USD volume) total for one time
// window. Totals only grow; nothing is ever retracted.
type WindowAccumulator struct {
	SwapCount int
	VolumeUSD decimal.Decimal
}

func (a *WindowAccumulator) add(volumeUSD decimal.Decimal) {
	a.SwapCount++
	a.VolumeUSD = a.VolumeUSD.Add(volumeUSD)
}

// windowSet holds the all-time total plus the current/previous pair for
// every window size. One event lands in AllTime plus at most one of each
// {current, previous} pair; events older than the previous lower bound land
// only in AllTime.
type windowSet struct {
	AllTime WindowAccumulator
	Cur24h  WindowAccumulator
	Prev24h WindowAccumulator
	Cur7d   WindowAccumulator
	Prev7d  WindowAccumulator
	Cur30d  WindowAccumulator
	Prev30d WindowAccumulator
}

func (s *windowSet) add(ts int64, volumeUSD decimal.Decimal, b Bounds) {
	s.AllTime.add(volumeUSD)

	if ts >= b.H24 {
		s.Cur24h.add(volumeUSD)
	} else if inWindow(ts, b.H48, b.H24) {
		s.Prev24h.add(volumeUSD)
	}

	if ts >= b.D7 {
		s.Cur7d.add(volumeUSD)
	} else if inWindow(ts, b.D14, b.D7) {
		s.Prev7d.add(volumeUSD)
	}

	if ts >= b.D30 {
		s.Cur30d.add(volumeUSD)
	} else if inWindow(ts, b.D60, b.D30) {
		s.Prev30d.add(volumeUSD)
	}
}

// pairAccumulator tracks one ordered (tokenIn, tokenOut) pair. feeEligible
// is fixed at creation: a native/wrapped-equivalent pair never generates
// fees, so it is excluded wholesale from fee leaderboards while still
// counting in raw pair stats.
type pairAccumulator struct {
	tokenInID   string
	tokenOutID  string
	feeEligible bool
	order       int // insertion order, breaks ranking ties
	totals      windowSet
}

// accountAccumulator tracks one account. The fee set counts only swaps of
// fee-eligible pairs.
type accountAccumulator struct {
	accountID string
	order     int
	totals    windowSet
	fee       windowSet
}

// diagnostics records per-event recoverable issues for the whole run.
type diagnostics struct {
	unmappedTokenIDs map[string]struct{}
	missingPriceIDs  map[string]struct{}
	badAmountCount   int
}

func newDiagnostics() *diagnostics {
	return &diagnostics{
		unmappedTokenIDs: make(map[string]struct{}),
		missingPriceIDs:  make(map[string]struct{}),
	}
}

// runState owns every accumulator of a single run. Constructed fresh per
// invocation and never shared.
type runState struct {
	bounds   Bounds
	global   windowSet
	pairs    map[[2]string]*pairAccumulator
	pairList []*pairAccumulator // insertion order
	accounts map[string]*accountAccumulator
	accList  []*accountAccumulator
	diag     *diagnostics
}

func newRunState(bounds Bounds) *runState {
	return &runState{
		bounds:   bounds,
		pairs:    make(map[[2]string]*pairAccumulator),
		accounts: make(map[string]*accountAccumulator),
		diag:     newDiagnostics(),
	}
}

func (s *runState) pair(tokenInID, tokenOutID string, feeEligible bool) *pairAccumulator {
	key := [2]string{tokenInID, tokenOutID}
	if p, ok := s.pairs[key]; ok {
		return p
	}
	p := &pairAccumulator{
		tokenInID:   tokenInID,
		tokenOutID:  tokenOutID,
		feeEligible: feeEligible,
		order:       len(s.pairList),
	}
	s.pairs[key] = p
	s.pairList = append(s.pairList, p)
	return p
}

func (s *runState) account(accountID string) *accountAccumulator {
	if a, ok := s.accounts[accountID]; ok {
		return a
	}
	a := &accountAccumulator{
		accountID: accountID,
		order:     len(s.accList),
	}
	s.accounts[accountID] = a
	s.accList = append(s.accList, a)
	return a
}
