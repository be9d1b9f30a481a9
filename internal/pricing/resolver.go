package pricing

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// PrimarySource returns the full price table in one bulk call.
type PrimarySource interface {
	FetchAll(ctx context.Context) (Table, error)
}

// FallbackSource resolves a caller-supplied list of price ids.
type FallbackSource interface {
	Fetch(ctx context.Context, ids []string) (Table, error)
}

// DefaultFallbackIDs is the short fixed list of ids the fallback source is
// consulted for when the primary feed leaves them unpriced.
var DefaultFallbackIDs = []string{"near", "eth", "btc", "sol", "usdt", "usdc"}

// Resolver produces one immutable price table per aggregation run: primary
// feed first, fallback merge for the fixed id list, optional TTL-cached
// result in between.
type Resolver struct {
	primary     PrimarySource
	fallback    FallbackSource
	fallbackIDs []string
	cache       *Cache
	logger      *zap.Logger
}

// NewResolver creates a price resolver. fallback and cache may be nil; a
// nil fallback skips the merge step, a nil cache disables caching.
func NewResolver(primary PrimarySource, fallback FallbackSource, cache *Cache, logger *zap.Logger) *Resolver {
	return &Resolver{
		primary:     primary,
		fallback:    fallback,
		fallbackIDs: DefaultFallbackIDs,
		cache:       cache,
		logger:      logger,
	}
}

// WithFallbackIDs overrides the id list consulted on the fallback source.
func (r *Resolver) WithFallbackIDs(ids []string) *Resolver {
	r.fallbackIDs = ids
	return r
}

// FetchAll returns the price table for a run. The primary source is
// authoritative: its failure fails the call. Fallback failures are logged
// and swallowed; ids that stay unresolved are simply absent from the table.
func (r *Resolver) FetchAll(ctx context.Context) (Table, error) {
	if table, ok := r.cache.Get(); ok {
		return table, nil
	}

	table, err := r.primary.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("primary price source: %w", err)
	}

	if r.fallback != nil {
		if missing := r.missingIDs(table); len(missing) > 0 {
			merged, err := r.fallback.Fetch(ctx, missing)
			if err != nil {
				r.logger.Warn("fallback price source failed",
					zap.Strings("ids", missing),
					zap.Error(err))
			} else {
				for id, price := range merged {
					table[id] = price
				}
			}
		}
	}

	r.cache.Put(table)
	return table, nil
}

// missingIDs returns the fallback-eligible ids absent from the table.
func (r *Resolver) missingIDs(table Table) []string {
	var missing []string
	for _, id := range r.fallbackIDs {
		if _, ok := table[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
