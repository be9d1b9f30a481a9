// Package eventsource streams swap events page by page from the external
// analytics store.
package eventsource

import (
	"context"

	"swap-analytics/internal/domain"
)

// Source is a paged, time-ordered swap event source. Pages are ascending by
// timestamp; a page shorter than limit means the stream is exhausted.
type Source interface {
	FetchPage(ctx context.Context, offset, limit int) ([]domain.SwapEvent, error)
}

// Filter describes the server-side filtering applied to every page request.
type Filter struct {
	EventType string // event-type name, e.g. "intent_swap"
	Network   string // network tag, e.g. "mainnet"

	// Account denylists. ExcludedAccounts matches exactly;
	// ExcludedAccountSubstrings excludes any account containing the value.
	ExcludedAccounts          []string
	ExcludedAccountSubstrings []string
}
