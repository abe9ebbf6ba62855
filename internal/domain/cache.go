package domain

import (
	"context"
	"time"
)

// DepthCache stores precomputed top-of-book depth summaries keyed by
// exchange and symbol, with a TTL so stale summaries age out between polls.
type DepthCache interface {
	Set(ctx context.Context, summary DepthSummary, ttl time.Duration) error
	// Get returns ErrNotFound when no summary is cached.
	Get(ctx context.Context, exchange Exchange, symbol string) (DepthSummary, error)
}

// SeenSet deduplicates background depth look-ups: an identifier that was
// already marked is not fetched again until the set is reset.
type SeenSet interface {
	// MarkSeen records id and reports whether it was newly added.
	MarkSeen(ctx context.Context, id string) (bool, error)
	Reset(ctx context.Context) error
}

// SignalBus is a fire-and-forget pub/sub channel used to tell interested
// parties (the WebSocket hub) that fresh data is available.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}
