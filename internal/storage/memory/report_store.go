// Package memory provides in-memory storage implementations, used when no
// database is configured and in tests.
package memory

import (
	"context"
	"sync"

	"swap-analytics/internal/domain"
	"swap-analytics/internal/storage"
)

// ReportStore is an in-memory implementation of storage.ReportStore.
type ReportStore struct {
	mu      sync.RWMutex
	reports []*domain.SwapReport
}

// NewReportStore creates a new in-memory report store.
func NewReportStore() *ReportStore {
	return &ReportStore{}
}

// Compile-time interface check.
var _ storage.ReportStore = (*ReportStore)(nil)

// Save archives a computed report.
func (s *ReportStore) Save(_ context.Context, report *domain.SwapReport) error {
	if report == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *report
	s.reports = append(s.reports, &copy)
	return nil
}

// Latest retrieves the most recently archived report.
func (s *ReportStore) Latest(_ context.Context) (*domain.SwapReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.reports) == 0 {
		return nil, storage.ErrNotFound
	}

	copy := *s.reports[len(s.reports)-1]
	return &copy, nil
}

// Count returns the number of archived reports.
func (s *ReportStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}
