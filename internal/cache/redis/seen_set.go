package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spotdeck/spotdeck/internal/domain"
)

// seenSetKey holds the identifiers the depth prefetcher has already visited.
const seenSetKey = "depth:seen"

// SeenSet implements domain.SeenSet using a Redis set, so deduplication
// survives process restarts and is shared between poller replicas.
type SeenSet struct {
	rdb *redis.Client
}

// NewSeenSet creates a SeenSet backed by the given Client.
func NewSeenSet(c *Client) *SeenSet {
	return &SeenSet{rdb: c.Underlying()}
}

// MarkSeen adds id to the set and reports whether it was newly added.
func (ss *SeenSet) MarkSeen(ctx context.Context, id string) (bool, error) {
	added, err := ss.rdb.SAdd(ctx, seenSetKey, id).Result()
	if err != nil {
		return false, fmt.Errorf("redis: mark seen %s: %w", id, err)
	}
	return added > 0, nil
}

// Reset clears the set so every identifier becomes fetchable again.
func (ss *SeenSet) Reset(ctx context.Context) error {
	if err := ss.rdb.Del(ctx, seenSetKey).Err(); err != nil {
		return fmt.Errorf("redis: reset seen set: %w", err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SeenSet = (*SeenSet)(nil)
