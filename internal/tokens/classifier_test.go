package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePriceID_Direct(t *testing.T) {
	c := NewClassifier(DefaultRegistry())

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"wrapped native", "nep141:wrap.near", "near"},
		{"native without prefix", "near", "near"},
		{"stablecoin contract", "nep141:usdt.tether-token.near", "usdt"},
		{"bridged erc20", "nep141:a0b86991c6218b36c1d19d4a2e9eb0ce3606eb48.factory.bridge.near", "usdc"},
		{"upper case", "NEP141:WRAP.NEAR", "near"},
		{"surrounding whitespace", "  nep141:wrap.near \n", "near"},
		{"empty input", "", ""},
		{"whitespace only", "   ", ""},
		{"unknown contract", "nep141:mystery-token.near", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ResolvePriceID(tt.raw))
		})
	}
}

func TestResolvePriceID_OmftPattern(t *testing.T) {
	c := NewClassifier(DefaultRegistry())

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain symbol", "nep141:eth.omft.near", "eth"},
		{"symbol with origin address", "nep141:arb-0x912ce59144191c1204e64559fe8253a0e49e6548.omft.near", "arb"},
		{"unknown symbol", "nep141:wat.omft.near", ""},
		{"bare suffix", "nep141:.omft.near", ""},
		{"dash before symbol", "nep141:-0xdead.omft.near", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ResolvePriceID(tt.raw))
		})
	}
}

// Classification must be deterministic with no side effects.
func TestResolvePriceID_Idempotent(t *testing.T) {
	c := NewClassifier(DefaultRegistry())

	inputs := []string{
		"nep141:wrap.near",
		"nep141:eth.omft.near",
		"nep141:mystery-token.near",
		"",
	}
	for _, raw := range inputs {
		first := c.ResolvePriceID(raw)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, c.ResolvePriceID(raw), "input %q", raw)
		}
	}
}

func TestIsEquivalentPair(t *testing.T) {
	c := NewClassifier(DefaultRegistry())

	// Deposit and withdrawal directions are both equivalent.
	assert.True(t, c.IsEquivalentPair("near", "nep141:wrap.near"))
	assert.True(t, c.IsEquivalentPair("nep141:wrap.near", "near"))

	// Real trades are not.
	assert.False(t, c.IsEquivalentPair("nep141:wrap.near", "nep141:usdt.tether-token.near"))
	assert.False(t, c.IsEquivalentPair("near", "near"))
	assert.False(t, c.IsEquivalentPair("", "nep141:wrap.near"))
	assert.False(t, c.IsEquivalentPair("near", ""))
}
