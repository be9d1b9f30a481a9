package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// coingeckoIDs maps canonical price ids to CoinGecko asset ids for the
// short fixed list of tokens the fallback may resolve.
var coingeckoIDs = map[string]string{
	"near": "near",
	"eth":  "ethereum",
	"btc":  "bitcoin",
	"sol":  "solana",
	"usdt": "tether",
	"usdc": "usd-coin",
	"xrp":  "ripple",
	"doge": "dogecoin",
}

// FallbackClient resolves a caller-supplied id list against the public
// CoinGecko simple-price endpoint. Used only for ids the primary feed did
// not return; failures here are never fatal to a run.
type FallbackClient struct {
	url    string
	client *http.Client
}

// NewFallbackClient creates a client for the public fallback source.
func NewFallbackClient(rawURL string) *FallbackClient {
	return &FallbackClient{
		url:    rawURL,
		client: &http.Client{Timeout: defaultPriceTimeout},
	}
}

// Fetch returns USD prices for the requested price ids. Ids without a
// CoinGecko mapping, or absent from the response, are left out of the
// result.
func (c *FallbackClient) Fetch(ctx context.Context, ids []string) (Table, error) {
	assetIDs := make([]string, 0, len(ids))
	byAsset := make(map[string]string, len(ids)) // coingecko id -> price id
	for _, id := range ids {
		if asset, ok := coingeckoIDs[id]; ok {
			assetIDs = append(assetIDs, asset)
			byAsset[asset] = id
		}
	}
	if len(assetIDs) == 0 {
		return Table{}, nil
	}

	q := url.Values{}
	q.Set("ids", strings.Join(assetIDs, ","))
	q.Set("vs_currencies", "usd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch fallback prices: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	// {"near": {"usd": 2.53}, ...}
	var parsed map[string]map[string]json.Number
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal fallback prices: %w", err)
	}

	table := make(Table, len(parsed))
	for asset, quotes := range parsed {
		priceID, ok := byAsset[asset]
		if !ok {
			continue
		}
		raw, ok := quotes["usd"]
		if !ok {
			continue
		}
		price, err := decimal.NewFromString(raw.String())
		if err != nil || price.Sign() <= 0 {
			continue
		}
		table[priceID] = price
	}
	return table, nil
}
