package memory

import (
	"context"
	"sync"
	"time"

	"swap-analytics/internal/domain"
	"swap-analytics/internal/storage"
)

// ReportCache is an in-memory TTL implementation of storage.ReportCache.
// Expiry is driven by the injected clock.
type ReportCache struct {
	mu        sync.Mutex
	report    *domain.SwapReport
	expiresAt time.Time
	now       func() time.Time
}

// NewReportCache creates a new in-memory report cache.
func NewReportCache() *ReportCache {
	return &ReportCache{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock sets a custom clock for deterministic tests.
func (c *ReportCache) WithClock(now func() time.Time) *ReportCache {
	c.now = now
	return c
}

// Compile-time interface check.
var _ storage.ReportCache = (*ReportCache)(nil)

// Get returns the cached report, or ErrNotFound on miss or expiry.
func (c *ReportCache) Get(_ context.Context) (*domain.SwapReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.report == nil || !c.now().Before(c.expiresAt) {
		return nil, storage.ErrNotFound
	}

	copy := *c.report
	return &copy, nil
}

// Set stores a report for the given TTL.
func (c *ReportCache) Set(_ context.Context, report *domain.SwapReport, ttl time.Duration) error {
	if report == nil || ttl <= 0 {
		return storage.ErrInvalidInput
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	copy := *report
	c.report = &copy
	c.expiresAt = c.now().Add(ttl)
	return nil
}
