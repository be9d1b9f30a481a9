// Package tokens maps raw on-chain token identifiers to canonical
// price-lookup ids and detects native/wrapped equivalent pairs.
package tokens

import "strings"

// IntentPrefix is the namespace prefix carried by intent token identifiers.
const IntentPrefix = "nep141:"

// omftSuffix is the suffix convention for dynamically-named bridged tokens.
// Such names embed a base symbol: "eth.omft.near",
// "arb-0x912ce59144191c1204e64559fe8253a0e49e6548.omft.near".
const omftSuffix = ".omft.near"

// Classifier resolves raw token identifiers against a fixed registry.
// All methods are pure and never fail; absence is expressed as "".
type Classifier struct {
	registry   *Registry
	equivalent map[string]string // symmetric native<->wrapped lookup
}

// NewClassifier builds a classifier from the given registry. The
// native/wrapped equivalence table is the symmetric closure of
// registry.NativeToWrapped, built once here.
func NewClassifier(registry *Registry) *Classifier {
	eq := make(map[string]string, 2*len(registry.NativeToWrapped))
	for native, wrapped := range registry.NativeToWrapped {
		eq[native] = wrapped
		eq[wrapped] = native
	}
	return &Classifier{registry: registry, equivalent: eq}
}

// ResolvePriceID maps a raw token identifier to its canonical price-lookup
// id. Returns "" when no rule matches; callers count that as an unmapped
// token, not an error.
func (c *Classifier) ResolvePriceID(raw string) string {
	id := normalize(raw)
	if id == "" {
		return ""
	}

	if priceID, ok := c.registry.PriceIDs[id]; ok {
		return priceID
	}

	// Dynamic omft tokens embed a base symbol in the first name segment.
	if symbol, ok := omftSymbol(id); ok {
		if _, known := c.registry.KnownSymbols[symbol]; known {
			return symbol
		}
	}

	return ""
}

// IsEquivalentPair reports whether the ordered pair represents a native
// token deposit into its wrapped form or a withdrawal back to native form.
// Such swaps are internal transfers, not economic trades, and are excluded
// from fee and volume-leader calculations.
func (c *Classifier) IsEquivalentPair(tokenIn, tokenOut string) bool {
	in := normalize(tokenIn)
	out := normalize(tokenOut)
	if in == "" || out == "" {
		return false
	}
	return c.equivalent[in] == out
}

// normalize strips the intent namespace prefix, trims whitespace and
// lower-cases the identifier.
func normalize(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	return strings.TrimPrefix(id, IntentPrefix)
}

// omftSymbol extracts the embedded base symbol from a dynamically-named
// omft token id. The first name segment is the symbol, optionally followed
// by a dash and the origin-chain contract address.
func omftSymbol(id string) (string, bool) {
	base, ok := strings.CutSuffix(id, omftSuffix)
	if !ok || base == "" {
		return "", false
	}
	if i := strings.IndexByte(base, '-'); i >= 0 {
		base = base[:i]
	}
	if base == "" {
		return "", false
	}
	return base, true
}
