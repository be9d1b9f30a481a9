// Package redis provides the Redis-backed report cache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"swap-analytics/internal/domain"
	"swap-analytics/internal/storage"
)

const reportKey = "swap-analytics:report:latest"

// ReportCache implements storage.ReportCache backed by Redis. The report is
// stored as a JSON blob under a single key with a TTL, so a restart of the
// server picks up the last computed report without re-running aggregation.
type ReportCache struct {
	client *redis.Client
}

// NewReportCache connects to Redis and verifies the connection.
func NewReportCache(ctx context.Context, addr, password string, db int) (*ReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &ReportCache{client: client}, nil
}

// Compile-time interface check.
var _ storage.ReportCache = (*ReportCache)(nil)

// Get returns the cached report, or storage.ErrNotFound when the key is
// missing or expired.
func (c *ReportCache) Get(ctx context.Context) (*domain.SwapReport, error) {
	data, err := c.client.Get(ctx, reportKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get cached report: %w", err)
	}

	var report domain.SwapReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshal cached report: %w", err)
	}
	return &report, nil
}

// Set caches the report with the given TTL.
func (c *ReportCache) Set(ctx context.Context, report *domain.SwapReport, ttl time.Duration) error {
	if report == nil {
		return storage.ErrInvalidInput
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := c.client.Set(ctx, reportKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("set cached report: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *ReportCache) Close() error {
	return c.client.Close()
}
