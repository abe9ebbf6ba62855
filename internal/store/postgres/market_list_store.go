package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spotdeck/spotdeck/internal/domain"
)

// MarketListStore implements domain.MarketListStore using PostgreSQL.
type MarketListStore struct {
	pool *pgxpool.Pool
}

// NewMarketListStore creates a MarketListStore backed by the given pool.
func NewMarketListStore(pool *pgxpool.Pool) *MarketListStore {
	return &MarketListStore{pool: pool}
}

// Toggle flips membership of (exchange, symbol) in the given list. It first
// tries to insert; a conflict means the entry already existed, in which case
// it is deleted instead.
func (s *MarketListStore) Toggle(ctx context.Context, exchange domain.Exchange, symbol string, list domain.ListType) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO market_lists (exchange, symbol, list_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (exchange, symbol, list_type) DO NOTHING`,
		exchange, symbol, list,
	)
	if err != nil {
		return false, fmt.Errorf("postgres: toggle %s insert: %w", list, err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	if _, err := s.pool.Exec(ctx, `
		DELETE FROM market_lists
		WHERE exchange = $1 AND symbol = $2 AND list_type = $3`,
		exchange, symbol, list,
	); err != nil {
		return false, fmt.Errorf("postgres: toggle %s delete: %w", list, err)
	}
	return false, nil
}

// MembershipFor returns list flags keyed by symbol for one exchange.
func (s *MarketListStore) MembershipFor(ctx context.Context, exchange domain.Exchange) (map[string]domain.ListMembership, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT symbol, list_type
		FROM market_lists
		WHERE exchange = $1`,
		exchange,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: membership for %s: %w", exchange, err)
	}
	defer rows.Close()

	out := make(map[string]domain.ListMembership)
	for rows.Next() {
		var (
			symbol string
			list   domain.ListType
		)
		if err := rows.Scan(&symbol, &list); err != nil {
			return nil, fmt.Errorf("postgres: scan membership: %w", err)
		}
		m := out[symbol]
		switch list {
		case domain.ListBlacklist:
			m.Blacklisted = true
		case domain.ListWhitelist:
			m.Whitelisted = true
		case domain.ListWalletLock:
			m.WalletLocked = true
		}
		out[symbol] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: membership rows: %w", err)
	}
	return out, nil
}

// Counts returns per-list membership totals for one exchange.
func (s *MarketListStore) Counts(ctx context.Context, exchange domain.Exchange) (domain.ListCounts, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT list_type, COUNT(*)
		FROM market_lists
		WHERE exchange = $1
		GROUP BY list_type`,
		exchange,
	)
	if err != nil {
		return domain.ListCounts{}, fmt.Errorf("postgres: list counts for %s: %w", exchange, err)
	}
	defer rows.Close()

	var counts domain.ListCounts
	for rows.Next() {
		var (
			list domain.ListType
			n    int
		)
		if err := rows.Scan(&list, &n); err != nil {
			return domain.ListCounts{}, fmt.Errorf("postgres: scan list count: %w", err)
		}
		switch list {
		case domain.ListBlacklist:
			counts.Blacklist = n
		case domain.ListWhitelist:
			counts.Whitelist = n
		case domain.ListWalletLock:
			counts.WalletLock = n
		}
	}
	if err := rows.Err(); err != nil {
		return domain.ListCounts{}, fmt.Errorf("postgres: list count rows: %w", err)
	}
	return counts, nil
}
