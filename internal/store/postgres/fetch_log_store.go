package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spotdeck/spotdeck/internal/domain"
)

// FetchLogStore implements domain.FetchLogStore using PostgreSQL.
type FetchLogStore struct {
	pool *pgxpool.Pool
}

// NewFetchLogStore creates a FetchLogStore backed by the given pool.
func NewFetchLogStore(pool *pgxpool.Pool) *FetchLogStore {
	return &FetchLogStore{pool: pool}
}

// Insert records one poll outcome. A missing ID is assigned here.
func (s *FetchLogStore) Insert(ctx context.Context, log domain.FetchLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fetch_logs (id, exchange, status, pairs_count, error_message, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		log.ID, log.Exchange, log.Status, log.PairsCount, nullableString(log.ErrorMessage), log.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert fetch log: %w", err)
	}
	return nil
}

// LastByExchange returns the most recent log row for one exchange, or
// domain.ErrNotFound when the exchange has never been polled.
func (s *FetchLogStore) LastByExchange(ctx context.Context, exchange domain.Exchange) (domain.FetchLog, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, exchange, status, pairs_count, COALESCE(error_message, ''), fetched_at
		FROM fetch_logs
		WHERE exchange = $1
		ORDER BY fetched_at DESC
		LIMIT 1`,
		exchange,
	)
	log, err := scanFetchLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FetchLog{}, domain.ErrNotFound
		}
		return domain.FetchLog{}, fmt.Errorf("postgres: last fetch log for %s: %w", exchange, err)
	}
	return log, nil
}

// ListRecent returns the newest log rows across all exchanges, newest first.
func (s *FetchLogStore) ListRecent(ctx context.Context, limit int) ([]domain.FetchLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, exchange, status, pairs_count, COALESCE(error_message, ''), fetched_at
		FROM fetch_logs
		ORDER BY fetched_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list fetch logs: %w", err)
	}
	defer rows.Close()

	var out []domain.FetchLog
	for rows.Next() {
		log, err := scanFetchLog(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan fetch log: %w", err)
		}
		out = append(out, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list fetch logs rows: %w", err)
	}
	return out, nil
}

func scanFetchLog(row pgx.Row) (domain.FetchLog, error) {
	var log domain.FetchLog
	err := row.Scan(&log.ID, &log.Exchange, &log.Status, &log.PairsCount, &log.ErrorMessage, &log.FetchedAt)
	return log, err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
