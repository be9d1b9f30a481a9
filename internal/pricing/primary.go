package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Default configuration values for the primary price client.
const (
	defaultPriceTimeout = 15 * time.Second
)

// PrimaryClient fetches the full price table from the internal price feed.
// The feed returns every id it knows about in one bulk response.
type PrimaryClient struct {
	url    string
	client *http.Client
}

// PrimaryOption configures PrimaryClient.
type PrimaryOption func(*PrimaryClient)

// WithPrimaryHTTPClient sets a custom http.Client.
func WithPrimaryHTTPClient(client *http.Client) PrimaryOption {
	return func(c *PrimaryClient) {
		c.client = client
	}
}

// NewPrimaryClient creates a client for the internal price feed.
func NewPrimaryClient(url string, opts ...PrimaryOption) *PrimaryClient {
	c := &PrimaryClient{
		url:    url,
		client: &http.Client{Timeout: defaultPriceTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// primaryResponse is the bulk feed payload: {"prices": {"near": "2.53", ...}}.
// Prices arrive as decimal strings and are parsed exactly.
type primaryResponse struct {
	Prices map[string]string `json:"prices"`
}

// FetchAll returns the full price table from the feed.
func (c *PrimaryClient) FetchAll(ctx context.Context) (Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed primaryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal prices: %w", err)
	}

	table := make(Table, len(parsed.Prices))
	for id, raw := range parsed.Prices {
		price, err := decimal.NewFromString(raw)
		if err != nil || price.Sign() <= 0 {
			// Bad feed rows are dropped; the id simply stays unpriced.
			continue
		}
		table[id] = price
	}
	return table, nil
}
