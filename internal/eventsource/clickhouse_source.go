package eventsource

import (
	"context"
	"fmt"
	"strings"

	"swap-analytics/internal/domain"
	chstorage "swap-analytics/internal/storage/clickhouse"
)

// ClickHouseSource implements Source by querying the analytics store's
// swap_events table directly, bypassing the HTTP query gateway. Same
// contract: ascending timestamps, server-side filtering, offset paging.
type ClickHouseSource struct {
	conn   *chstorage.Conn
	table  string
	filter Filter
}

// NewClickHouseSource creates a direct ClickHouse swap event source.
func NewClickHouseSource(conn *chstorage.Conn, filter Filter) *ClickHouseSource {
	return &ClickHouseSource{conn: conn, table: "swap_events", filter: filter}
}

// Compile-time interface check.
var _ Source = (*ClickHouseSource)(nil)

// FetchPage returns one page of swap events ascending by timestamp.
func (s *ClickHouseSource) FetchPage(ctx context.Context, offset, limit int) ([]domain.SwapEvent, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("invalid page spec: offset=%d limit=%d", offset, limit)
	}

	var b strings.Builder
	args := []any{s.filter.EventType, s.filter.Network}

	b.WriteString(`
		SELECT event_id, timestamp_ms, account_id,
		       token_in_id, token_out_id, amount_in, amount_out
		FROM `)
	b.WriteString(s.table)
	b.WriteString(" WHERE event_type = ? AND network = ?")

	for _, account := range s.filter.ExcludedAccounts {
		b.WriteString(" AND account_id != ?")
		args = append(args, account)
	}
	for _, sub := range s.filter.ExcludedAccountSubstrings {
		b.WriteString(" AND account_id NOT LIKE ?")
		args = append(args, "%"+sub+"%")
	}

	b.WriteString(" ORDER BY timestamp_ms ASC LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := s.conn.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query swap events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.SwapEvent, 0, limit)
	for rows.Next() {
		var (
			ev   domain.SwapEvent
			tsMs uint64
		)
		err := rows.Scan(&ev.ID, &tsMs, &ev.AccountID,
			&ev.TokenInID, &ev.TokenOutID, &ev.AmountIn, &ev.AmountOut)
		if err != nil {
			return nil, fmt.Errorf("scan swap event: %w", err)
		}
		ev.Timestamp = int64(tsMs)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap events: %w", err)
	}
	return events, nil
}
