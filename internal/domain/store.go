package domain

import "context"

// TickerStore persists polled ticker snapshots.
type TickerStore interface {
	// ReplaceForExchange atomically replaces every row for one exchange
	// with the given batch.
	ReplaceForExchange(ctx context.Context, exchange Exchange, snapshots []TickerSnapshot) error

	// List returns the full cross-exchange snapshot set; view filtering
	// happens after the symbol index is built from it.
	List(ctx context.Context) ([]TickerSnapshot, error)
	CountByExchange(ctx context.Context, exchange Exchange) (int, error)
}

// FetchLogStore persists per-poll outcome rows.
type FetchLogStore interface {
	Insert(ctx context.Context, log FetchLog) error
	LastByExchange(ctx context.Context, exchange Exchange) (FetchLog, error)
	ListRecent(ctx context.Context, limit int) ([]FetchLog, error)
}

// MarketListStore persists watch/block list membership.
type MarketListStore interface {
	// Toggle flips membership of (exchange, symbol) in the given list and
	// reports whether the entry was added (true) or removed (false).
	Toggle(ctx context.Context, exchange Exchange, symbol string, list ListType) (added bool, err error)
	MembershipFor(ctx context.Context, exchange Exchange) (map[string]ListMembership, error)
	Counts(ctx context.Context, exchange Exchange) (ListCounts, error)
}
