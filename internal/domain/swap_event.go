package domain

// SwapEvent represents one swap row streamed from the analytics store.
// Amounts are kept as the decimal strings emitted on-chain; they are parsed
// exactly at aggregation time and never pass through floating point.
type SwapEvent struct {
	ID         string // unique event id from the source
	Timestamp  int64  // Unix timestamp in milliseconds
	AccountID  string // account that signed the swap
	TokenInID  string // raw token identifier of the inbound leg
	TokenOutID string // raw token identifier of the outbound leg
	AmountIn   string // decimal string, human units
	AmountOut  string // decimal string, human units
}

// Valued leg selectors. Fixed for a whole aggregation run.
const (
	SideIn  = "in"
	SideOut = "out"
)
