package tokens

// Registry defines the token identifier tables used by the Classifier.
// All keys are lower-case, prefix-stripped identifiers.
type Registry struct {
	// PriceIDs maps known token contract identifiers to canonical
	// price-lookup ids.
	PriceIDs map[string]string

	// KnownSymbols is the set of base symbols that the dynamic omft-token
	// rule may resolve to. Symbols extracted from a dynamic name that are
	// not in this set stay unmapped.
	KnownSymbols map[string]struct{}

	// NativeToWrapped maps a native token identifier to its wrapped
	// contract. The equivalence relation is the symmetric closure of this
	// map.
	NativeToWrapped map[string]string
}

// DefaultRegistry returns the registry for the intents DEX deployment.
// Dynamically-named bridged tokens ("eth.omft.near",
// "arb-0x912ce....omft.near") are handled by the suffix rule in the
// Classifier, not listed here.
func DefaultRegistry() *Registry {
	return &Registry{
		PriceIDs: map[string]string{
			"near":                    "near",
			"wrap.near":               "near",
			"usdt.tether-token.near":  "usdt",
			"token.v2.ref-finance.near": "ref",
			"meta-pool.near":          "stnear",
			"linear-protocol.near":    "linear",
			"aurora":                  "eth",
			"dac17f958d2ee523a2206206994597c13d831ec7.factory.bridge.near": "usdt",
			"a0b86991c6218b36c1d19d4a2e9eb0ce3606eb48.factory.bridge.near": "usdc",
			"2260fac5e5542a773aa44fbcfedf7c193bc2c599.factory.bridge.near": "btc",
			"c02aaa39b223fe8d0a0e5c4f27ead9083c756cc2.factory.bridge.near": "eth",
		},
		KnownSymbols: map[string]struct{}{
			"near": {}, "eth": {}, "btc": {}, "sol": {}, "xrp": {},
			"doge": {}, "arb": {}, "base": {}, "usdt": {}, "usdc": {},
			"pepe": {}, "shib": {}, "link": {}, "uni": {}, "aave": {},
			"ton": {}, "trx": {}, "sui": {}, "bera": {}, "zec": {},
		},
		NativeToWrapped: map[string]string{
			"near": "wrap.near",
		},
	}
}
