package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spotdeck/spotdeck/internal/domain"
)

// TickerStore implements domain.TickerStore using PostgreSQL.
type TickerStore struct {
	pool *pgxpool.Pool
}

// NewTickerStore creates a TickerStore backed by the given connection pool.
func NewTickerStore(pool *pgxpool.Pool) *TickerStore {
	return &TickerStore{pool: pool}
}

// ReplaceForExchange deletes every row for one exchange and inserts the new
// batch in a single transaction, so readers never observe a half-applied
// poll.
func (s *TickerStore) ReplaceForExchange(ctx context.Context, exchange domain.Exchange, snapshots []domain.TickerSnapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin replace tickers: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM spot_tickers WHERE exchange = $1", exchange); err != nil {
		return fmt.Errorf("postgres: clear tickers for %s: %w", exchange, err)
	}

	if len(snapshots) > 0 {
		const query = `
			INSERT INTO spot_tickers (
				exchange, symbol, base_currency, quote_currency,
				price, volume_24h, high_24h, low_24h,
				change_24h, turnover_24h, fetched_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

		batch := &pgx.Batch{}
		for _, t := range snapshots {
			batch.Queue(query,
				t.Exchange, t.Symbol, t.BaseCurrency, t.QuoteCurrency,
				t.Price, t.Volume24h, t.High24h, t.Low24h,
				t.Change24h, t.Turnover24h, t.FetchedAt,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for i := range snapshots {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("postgres: insert ticker batch item %d: %w", i, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("postgres: close ticker batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit replace tickers for %s: %w", exchange, err)
	}
	return nil
}

// List returns every stored snapshot decorated with its list membership
// flags, ordered by exchange then symbol. Callers always need the full
// cross-exchange set: peer comparison and prefetch targeting are computed
// over the symbol index, so row filtering happens after it is built.
func (s *TickerStore) List(ctx context.Context) ([]domain.TickerSnapshot, error) {
	query := `
		SELECT
			t.exchange, t.symbol, t.base_currency, t.quote_currency,
			t.price, t.volume_24h, t.high_24h, t.low_24h,
			t.change_24h, t.turnover_24h, t.fetched_at,
			EXISTS(SELECT 1 FROM market_lists m WHERE m.exchange = t.exchange AND m.symbol = t.symbol AND m.list_type = 'blacklist'),
			EXISTS(SELECT 1 FROM market_lists m WHERE m.exchange = t.exchange AND m.symbol = t.symbol AND m.list_type = 'whitelist'),
			EXISTS(SELECT 1 FROM market_lists m WHERE m.exchange = t.exchange AND m.symbol = t.symbol AND m.list_type = 'wallet_lock')
		FROM spot_tickers t
		ORDER BY t.exchange, t.symbol`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list tickers: %w", err)
	}
	defer rows.Close()

	var out []domain.TickerSnapshot
	for rows.Next() {
		var t domain.TickerSnapshot
		err := rows.Scan(
			&t.Exchange, &t.Symbol, &t.BaseCurrency, &t.QuoteCurrency,
			&t.Price, &t.Volume24h, &t.High24h, &t.Low24h,
			&t.Change24h, &t.Turnover24h, &t.FetchedAt,
			&t.Blacklisted, &t.Whitelisted, &t.WalletLocked,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan ticker: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list tickers rows: %w", err)
	}
	return out, nil
}

// CountByExchange reports how many pairs are stored for one exchange.
func (s *TickerStore) CountByExchange(ctx context.Context, exchange domain.Exchange) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM spot_tickers WHERE exchange = $1", exchange,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count tickers for %s: %w", exchange, err)
	}
	return n, nil
}
