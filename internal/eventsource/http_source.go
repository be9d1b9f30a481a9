package eventsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"swap-analytics/internal/domain"
)

// Default configuration values for the query client.
const (
	defaultQueryTimeout = 30 * time.Second
)

// queryColumns is the exact select list sent to the analytics store. Result
// rows are positional; mapRow is the only place aware of this ordering.
var queryColumns = []string{
	"event_id", "timestamp_ms", "account_id",
	"token_in_id", "token_out_id", "amount_in", "amount_out",
}

// QueryClient implements Source against the SQL-over-HTTP analytics
// endpoint. One HTTP POST per page, retried per the shared policy.
type QueryClient struct {
	endpoint string
	apiKey   string
	table    string
	filter   Filter
	client   *http.Client
	policy   RetryPolicy
	logger   *zap.Logger
}

// QueryOption configures QueryClient.
type QueryOption func(*QueryClient)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) QueryOption {
	return func(c *QueryClient) {
		c.client = client
	}
}

// WithRetryPolicy overrides the retry policy.
func WithRetryPolicy(p RetryPolicy) QueryOption {
	return func(c *QueryClient) {
		c.policy = p
	}
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) QueryOption {
	return func(c *QueryClient) {
		c.apiKey = key
	}
}

// WithTable overrides the queried table name.
func WithTable(table string) QueryOption {
	return func(c *QueryClient) {
		c.table = table
	}
}

// NewQueryClient creates a paged swap event client for the analytics store.
func NewQueryClient(endpoint string, filter Filter, logger *zap.Logger, opts ...QueryOption) *QueryClient {
	c := &QueryClient{
		endpoint: endpoint,
		table:    "swap_events",
		filter:   filter,
		client:   &http.Client{Timeout: defaultQueryTimeout},
		policy:   DefaultRetryPolicy(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// queryRequest is the analytics store request payload.
type queryRequest struct {
	Query string `json:"query"`
}

// queryResponse carries positional result rows.
type queryResponse struct {
	Rows [][]json.RawMessage `json:"rows"`
}

// FetchPage returns one page of swap events ascending by timestamp.
// Transient failures are retried; exhausted retries propagate to the
// caller, which must treat them as fatal to the run.
func (c *QueryClient) FetchPage(ctx context.Context, offset, limit int) ([]domain.SwapEvent, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("invalid page spec: offset=%d limit=%d", offset, limit)
	}

	query := c.buildQuery(offset, limit)

	var events []domain.SwapEvent
	err := c.policy.Do(ctx, c.logger, "fetch swap page", func() error {
		rows, err := c.execute(ctx, query)
		if err != nil {
			return err
		}
		events, err = mapRows(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// buildQuery renders the filtered, ordered, paged select statement.
func (c *QueryClient) buildQuery(offset, limit int) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(queryColumns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(c.table)
	b.WriteString(" WHERE event_type = '")
	b.WriteString(escape(c.filter.EventType))
	b.WriteString("' AND network = '")
	b.WriteString(escape(c.filter.Network))
	b.WriteString("'")

	for _, account := range c.filter.ExcludedAccounts {
		b.WriteString(" AND account_id != '")
		b.WriteString(escape(account))
		b.WriteString("'")
	}
	for _, sub := range c.filter.ExcludedAccountSubstrings {
		b.WriteString(" AND account_id NOT LIKE '%")
		b.WriteString(escape(sub))
		b.WriteString("%'")
	}

	b.WriteString(" ORDER BY timestamp_ms ASC")
	b.WriteString(" LIMIT ")
	b.WriteString(strconv.Itoa(limit))
	b.WriteString(" OFFSET ")
	b.WriteString(strconv.Itoa(offset))
	return b.String()
}

// execute POSTs the query and decodes the positional row payload.
func (c *QueryClient) execute(ctx context.Context, query string) ([][]json.RawMessage, error) {
	body, err := json.Marshal(queryRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RetryAfterError{Delay: retryAfterDelay(resp)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(respBody), 200)}
	}

	var parsed queryResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal rows: %w", err)
	}
	return parsed.Rows, nil
}

// retryAfterDelay reads the server-provided pause, defaulting to the
// initial backoff delay when the header is absent or malformed.
func retryAfterDelay(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return DefaultInitialDelay
}

// mapRows converts positional rows into typed SwapEvents. This is the only
// translation point for the store's row shape.
func mapRows(rows [][]json.RawMessage) ([]domain.SwapEvent, error) {
	events := make([]domain.SwapEvent, 0, len(rows))
	for i, row := range rows {
		ev, err := mapRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func mapRow(row []json.RawMessage) (domain.SwapEvent, error) {
	if len(row) != len(queryColumns) {
		return domain.SwapEvent{}, fmt.Errorf("expected %d columns, got %d", len(queryColumns), len(row))
	}

	var ev domain.SwapEvent
	fields := []struct {
		name string
		dst  *string
	}{
		{"event_id", &ev.ID},
		{"account_id", &ev.AccountID},
		{"token_in_id", &ev.TokenInID},
		{"token_out_id", &ev.TokenOutID},
		{"amount_in", &ev.AmountIn},
		{"amount_out", &ev.AmountOut},
	}
	// Column 1 is the timestamp; everything else is a string.
	stringCols := []int{0, 2, 3, 4, 5, 6}
	for i, col := range stringCols {
		if err := json.Unmarshal(row[col], fields[i].dst); err != nil {
			return domain.SwapEvent{}, fmt.Errorf("column %s: %w", fields[i].name, err)
		}
	}

	var ts json.Number
	if err := json.Unmarshal(row[1], &ts); err != nil {
		return domain.SwapEvent{}, fmt.Errorf("column timestamp_ms: %w", err)
	}
	tsMs, err := ts.Int64()
	if err != nil {
		return domain.SwapEvent{}, fmt.Errorf("column timestamp_ms: %w", err)
	}
	ev.Timestamp = tsMs

	return ev, nil
}

// escape doubles single quotes for safe literal embedding.
func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
