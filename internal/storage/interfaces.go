package storage

import (
	"context"
	"time"

	"swap-analytics/internal/domain"
)

// ReportStore archives computed swap reports so the serving layer can
// answer without recomputing.
type ReportStore interface {
	// Save archives a computed report.
	Save(ctx context.Context, report *domain.SwapReport) error

	// Latest retrieves the most recently generated report. Returns
	// ErrNotFound when no report has been archived yet.
	Latest(ctx context.Context) (*domain.SwapReport, error)
}

// ReportCache is a TTL key-value cache in front of the archive.
type ReportCache interface {
	// Get returns the cached report. Returns ErrNotFound on miss or
	// expiry.
	Get(ctx context.Context) (*domain.SwapReport, error)

	// Set stores a report for the given TTL.
	Set(ctx context.Context, report *domain.SwapReport, ttl time.Duration) error
}
