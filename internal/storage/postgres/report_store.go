package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"swap-analytics/internal/domain"
	"swap-analytics/internal/storage"
)

// ReportStore implements storage.ReportStore using Postgres. Reports are
// archived as JSONB payloads keyed by generation time.
type ReportStore struct {
	pool *Pool
}

// NewReportStore creates a new Postgres report store.
func NewReportStore(pool *Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReportStore = (*ReportStore)(nil)

// Save archives a computed report.
func (s *ReportStore) Save(ctx context.Context, report *domain.SwapReport) error {
	if report == nil {
		return storage.ErrInvalidInput
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO swap_reports (generated_at, side_valued, payload)
		VALUES ($1, $2, $3)
	`, report.GeneratedAt, report.SideValued, payload)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Latest retrieves the most recently generated report.
func (s *ReportStore) Latest(ctx context.Context) (*domain.SwapReport, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT payload FROM swap_reports
		ORDER BY generated_at DESC, id DESC
		LIMIT 1
	`).Scan(&payload)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("query latest report: %w", err)
	}

	var report domain.SwapReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}
