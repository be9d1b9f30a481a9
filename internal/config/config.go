// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime setting consumed by the binaries. DSNs that
// stay empty disable the corresponding backend (the mains fall back to
// in-memory implementations).
type Config struct {
	// Event source
	EventsAPIURL  string // SQL-over-HTTP analytics endpoint
	EventsAPIKey  string
	ClickHouseDSN string // direct analytics-store access, used when set
	EventType     string
	Network       string
	SideValued    string // "in" or "out", fixed per run
	PageSize      int
	MaxEvents     int // 0 = unbounded
	ThrottleEvery int // pages between self-throttle pauses
	ThrottleDelay time.Duration

	// Account exclusion rules
	ExcludedAccounts          []string // exact match
	ExcludedAccountSubstrings []string

	// Pricing
	PrimaryPriceURL  string
	FallbackPriceURL string
	PriceCacheTTL    time.Duration

	// Report persistence / serving
	PostgresDSN    string
	RedisAddr      string
	RedisPassword  string
	ReportCacheTTL time.Duration
	ListenAddr     string
	RefreshSpec    string // cron spec for scheduled recomputation

	// Leaderboards
	TopPairs    int
	TopAccounts int
}

// Load reads the configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		EventsAPIURL:  Env("EVENTS_API_URL", "http://localhost:8123/api/query"),
		EventsAPIKey:  Env("EVENTS_API_KEY", ""),
		ClickHouseDSN: Env("CLICKHOUSE_DSN", ""),
		EventType:     Env("EVENT_TYPE", "intent_swap"),
		Network:       Env("NETWORK", "mainnet"),
		SideValued:    Env("SIDE_VALUED", "in"),
		PageSize:      EnvInt("PAGE_SIZE", 500),
		MaxEvents:     EnvInt("MAX_EVENTS", 0),
		ThrottleEvery: EnvInt("THROTTLE_EVERY_PAGES", 5),
		ThrottleDelay: EnvDuration("THROTTLE_DELAY", 200*time.Millisecond),

		ExcludedAccounts:          EnvList("EXCLUDED_ACCOUNTS", nil),
		ExcludedAccountSubstrings: EnvList("EXCLUDED_ACCOUNT_SUBSTRINGS", []string{"-relayer."}),

		PrimaryPriceURL:  Env("PRIMARY_PRICE_URL", "http://localhost:8080/api/token-prices"),
		FallbackPriceURL: Env("FALLBACK_PRICE_URL", "https://api.coingecko.com/api/v3/simple/price"),
		PriceCacheTTL:    EnvDuration("PRICE_CACHE_TTL", 5*time.Minute),

		PostgresDSN:    Env("POSTGRES_DSN", ""),
		RedisAddr:      Env("REDIS_ADDR", ""),
		RedisPassword:  Env("REDIS_PASSWORD", ""),
		ReportCacheTTL: EnvDuration("REPORT_CACHE_TTL", 10*time.Minute),
		ListenAddr:     Env("LISTEN_ADDR", ":8090"),
		RefreshSpec:    Env("REFRESH_CRON", "@every 15m"),

		TopPairs:    EnvInt("TOP_PAIRS", 20),
		TopAccounts: EnvInt("TOP_ACCOUNTS", 20),
	}
}

// Env returns the environment value for key, or def when unset or empty.
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvInt returns the integer environment value for key, or def when unset
// or not a positive integer.
func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// EnvDuration returns the duration environment value for key, or def.
func EnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
	}
	return def
}

// EnvList returns a comma-separated environment value for key as a slice,
// or def when unset. Empty items are dropped.
func EnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
