package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spotdeck/spotdeck/internal/domain"
)

// DepthCache implements domain.DepthCache using Redis string keys with TTL.
// Summaries are stored as JSON at "depth:{exchange}:{symbol}".
type DepthCache struct {
	rdb *redis.Client
}

// NewDepthCache creates a DepthCache backed by the given Client.
func NewDepthCache(c *Client) *DepthCache {
	return &DepthCache{rdb: c.Underlying()}
}

func depthKey(exchange domain.Exchange, symbol string) string {
	return "depth:" + string(exchange) + ":" + symbol
}

// Set stores a depth summary with the given TTL.
func (dc *DepthCache) Set(ctx context.Context, summary domain.DepthSummary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("redis: marshal depth summary: %w", err)
	}
	key := depthKey(summary.Exchange, summary.Symbol)
	if err := dc.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set depth %s: %w", key, err)
	}
	return nil
}

// Get retrieves a cached depth summary. It returns domain.ErrNotFound when
// the key does not exist or has expired.
func (dc *DepthCache) Get(ctx context.Context, exchange domain.Exchange, symbol string) (domain.DepthSummary, error) {
	key := depthKey(exchange, symbol)
	data, err := dc.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.DepthSummary{}, domain.ErrNotFound
		}
		return domain.DepthSummary{}, fmt.Errorf("redis: get depth %s: %w", key, err)
	}

	var summary domain.DepthSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return domain.DepthSummary{}, fmt.Errorf("redis: unmarshal depth %s: %w", key, err)
	}
	return summary, nil
}

// Compile-time interface check.
var _ domain.DepthCache = (*DepthCache)(nil)
