package poller

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/spotdeck/spotdeck/internal/aggregate"
	"github.com/spotdeck/spotdeck/internal/book"
	"github.com/spotdeck/spotdeck/internal/domain"
	"github.com/spotdeck/spotdeck/internal/exchange"
)

const (
	// prefetchBatchSize bounds how many depth look-ups run concurrently.
	prefetchBatchSize = 3

	// prefetchBatchPause is the idle gap between batches, keeping the
	// background sweep gentle on upstream rate limits.
	prefetchBatchPause = 200 * time.Millisecond
)

// DepthPrefetcher sweeps the symbols listed on more than one exchange and
// warms the depth summary cache ahead of user requests. Look-ups already
// recorded in the seen set are skipped; failed look-ups are logged and
// dropped, never retried.
type DepthPrefetcher struct {
	registry *exchange.Registry
	tickers  domain.TickerStore
	cache    domain.DepthCache
	seen     domain.SeenSet
	depth    int
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
}

// NewDepthPrefetcher creates a DepthPrefetcher sweeping every interval and
// caching summaries for ttl.
func NewDepthPrefetcher(
	registry *exchange.Registry,
	tickers domain.TickerStore,
	cache domain.DepthCache,
	seen domain.SeenSet,
	depth int,
	ttl time.Duration,
	interval time.Duration,
	logger *slog.Logger,
) *DepthPrefetcher {
	if depth <= 0 {
		depth = book.CompactDepth
	}
	return &DepthPrefetcher{
		registry: registry,
		tickers:  tickers,
		cache:    cache,
		seen:     seen,
		depth:    depth,
		ttl:      ttl,
		interval: interval,
		logger:   logger.With(slog.String("component", "depth_prefetcher")),
	}
}

// Run sweeps on a repeating interval until the context is cancelled. The
// first sweep starts immediately.
func (dp *DepthPrefetcher) Run(ctx context.Context) error {
	if err := dp.Sweep(ctx); err != nil {
		dp.logger.Error("sweep failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(dp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := dp.Sweep(ctx); err != nil {
				dp.logger.Error("sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// target is one pending depth look-up.
type target struct {
	exchange domain.Exchange
	symbol   string
}

// Sweep runs one full pass: reset the seen set, collect every
// (exchange, symbol) pair whose symbol trades on more than one exchange, and
// warm the cache in small concurrent batches.
func (dp *DepthPrefetcher) Sweep(ctx context.Context) error {
	if err := dp.seen.Reset(ctx); err != nil {
		return err
	}

	targets, err := dp.collectTargets(ctx)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return nil
	}

	started := time.Now()
	warmed := 0
	for i := 0; i < len(targets); i += prefetchBatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := i + prefetchBatchSize
		if end > len(targets) {
			end = len(targets)
		}
		warmed += dp.runBatch(ctx, targets[i:end])

		if end < len(targets) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(prefetchBatchPause):
			}
		}
	}

	dp.logger.Info("depth sweep complete",
		slog.Int("targets", len(targets)),
		slog.Int("warmed", warmed),
		slog.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// collectTargets lists every stored snapshot and keeps the pairs whose
// symbol is carried by more than one exchange, ordered by symbol so related
// look-ups land close together.
func (dp *DepthPrefetcher) collectTargets(ctx context.Context) ([]target, error) {
	snapshots, err := dp.tickers.List(ctx)
	if err != nil {
		return nil, err
	}

	idx := aggregate.BuildIndex(snapshots)
	var targets []target
	for _, s := range snapshots {
		if idx.ExchangeCount(s.Symbol) < 2 {
			continue
		}
		targets = append(targets, target{exchange: s.Exchange, symbol: s.Symbol})
	}

	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].symbol < targets[j].symbol
	})
	return targets, nil
}

// runBatch fetches one batch concurrently and reports how many summaries
// were cached. Individual failures only log.
func (dp *DepthPrefetcher) runBatch(ctx context.Context, batch []target) int {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		warmed int
	)
	for _, t := range batch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if dp.warm(ctx, t) {
				mu.Lock()
				warmed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return warmed
}

// warm performs one depth look-up and caches the summary. Returns false when
// the target was already seen or the look-up failed.
func (dp *DepthPrefetcher) warm(ctx context.Context, t target) bool {
	fresh, err := dp.seen.MarkSeen(ctx, string(t.exchange)+":"+t.symbol)
	if err != nil {
		dp.logger.Warn("seen set check failed",
			slog.String("exchange", string(t.exchange)),
			slog.String("symbol", t.symbol),
			slog.String("error", err.Error()),
		)
		return false
	}
	if !fresh {
		return false
	}

	adapter, err := dp.registry.Get(t.exchange)
	if err != nil {
		return false
	}

	raw, err := adapter.FetchOrderBook(ctx, t.symbol, dp.depth)
	if err != nil {
		dp.logger.Warn("depth fetch failed",
			slog.String("exchange", string(t.exchange)),
			slog.String("symbol", t.symbol),
			slog.String("error", err.Error()),
		)
		return false
	}

	summary := book.Summarize(raw, dp.depth)
	if err := dp.cache.Set(ctx, summary, dp.ttl); err != nil {
		dp.logger.Warn("depth cache write failed",
			slog.String("exchange", string(t.exchange)),
			slog.String("symbol", t.symbol),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}
