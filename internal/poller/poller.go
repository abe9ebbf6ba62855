// Package poller drives the periodic exchange polling loops and the
// background depth prefetcher. Each exchange is polled on its own goroutine;
// one failed cycle logs an error row and alerts, it never stops the loop.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spotdeck/spotdeck/internal/domain"
	"github.com/spotdeck/spotdeck/internal/exchange"
	"github.com/spotdeck/spotdeck/internal/notify"
)

// RefreshChannel is the signal bus channel the poller publishes to after
// each successful cycle. The WebSocket hub subscribes to it.
const RefreshChannel = "tickers"

// Poller fetches ticker batches from every registered exchange on a fixed
// interval and replaces the stored rows wholesale.
type Poller struct {
	registry *exchange.Registry
	tickers  domain.TickerStore
	logs     domain.FetchLogStore
	lists    domain.MarketListStore
	bus      domain.SignalBus
	notifier *notify.Notifier
	interval time.Duration
	logger   *slog.Logger
}

// New creates a Poller. The notifier may be nil when alerting is disabled.
func New(
	registry *exchange.Registry,
	tickers domain.TickerStore,
	logs domain.FetchLogStore,
	lists domain.MarketListStore,
	bus domain.SignalBus,
	notifier *notify.Notifier,
	interval time.Duration,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		registry: registry,
		tickers:  tickers,
		logs:     logs,
		lists:    lists,
		bus:      bus,
		notifier: notifier,
		interval: interval,
		logger:   logger.With(slog.String("component", "poller")),
	}
}

// Run starts one polling loop per registered exchange and blocks until the
// context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller starting",
		slog.Duration("interval", p.interval),
		slog.Int("exchanges", len(p.registry.Names())),
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, adapter := range p.registry.All() {
		g.Go(func() error {
			err := p.runLoop(ctx, adapter)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("poll loop %s: %w", adapter.Name(), err)
		})
	}

	err := g.Wait()
	if err != nil {
		p.logger.Error("poller stopped with error", slog.String("error", err.Error()))
		return err
	}
	p.logger.Info("poller stopped cleanly")
	return nil
}

// runLoop polls one exchange on a repeating interval until the context is
// cancelled. Polls immediately on start.
func (p *Poller) runLoop(ctx context.Context, adapter exchange.Adapter) error {
	if _, err := p.PollExchange(ctx, adapter.Name()); err != nil {
		p.logger.Error("poll failed",
			slog.String("exchange", string(adapter.Name())),
			slog.String("error", err.Error()),
		)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.PollExchange(ctx, adapter.Name()); err != nil {
				p.logger.Error("poll failed",
					slog.String("exchange", string(adapter.Name())),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// PollExchange runs a single poll cycle for one exchange: fetch, decorate
// with list membership, replace the stored batch, record the outcome, and
// publish a refresh signal. It returns the number of pairs stored.
//
// A fetch or store failure is recorded as an error fetch-log row and alerted,
// then returned.
func (p *Poller) PollExchange(ctx context.Context, name domain.Exchange) (int, error) {
	adapter, err := p.registry.Get(name)
	if err != nil {
		return 0, err
	}

	started := time.Now().UTC()
	snapshots, err := adapter.FetchTickers(ctx)
	if err != nil {
		p.recordFailure(ctx, name, started, err)
		return 0, fmt.Errorf("poller: fetch %s: %w", name, err)
	}

	p.decorate(ctx, name, snapshots)

	if err := p.tickers.ReplaceForExchange(ctx, name, snapshots); err != nil {
		p.recordFailure(ctx, name, started, err)
		return 0, fmt.Errorf("poller: store %s: %w", name, err)
	}

	p.recordSuccess(ctx, name, started, len(snapshots))
	p.publishRefresh(ctx, name, len(snapshots))

	p.logger.Info("poll cycle complete",
		slog.String("exchange", string(name)),
		slog.Int("pairs", len(snapshots)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return len(snapshots), nil
}

// decorate stamps list membership flags onto a fetched batch. Membership
// lookup failures leave the flags unset rather than failing the poll.
func (p *Poller) decorate(ctx context.Context, name domain.Exchange, snapshots []domain.TickerSnapshot) {
	membership, err := p.lists.MembershipFor(ctx, name)
	if err != nil {
		p.logger.Warn("list membership lookup failed",
			slog.String("exchange", string(name)),
			slog.String("error", err.Error()),
		)
		return
	}
	if len(membership) == 0 {
		return
	}
	for i := range snapshots {
		m, ok := membership[snapshots[i].Symbol]
		if !ok {
			continue
		}
		snapshots[i].Blacklisted = m.Blacklisted
		snapshots[i].Whitelisted = m.Whitelisted
		snapshots[i].WalletLocked = m.WalletLocked
	}
}

func (p *Poller) recordSuccess(ctx context.Context, name domain.Exchange, at time.Time, pairs int) {
	log := domain.FetchLog{
		Exchange:   name,
		Status:     domain.FetchStatusSuccess,
		PairsCount: pairs,
		FetchedAt:  at,
	}
	if err := p.logs.Insert(ctx, log); err != nil {
		p.logger.Error("fetch log insert failed",
			slog.String("exchange", string(name)),
			slog.String("error", err.Error()),
		)
	}
	if p.notifier != nil {
		if err := p.notifier.FetchRecovered(ctx, name, pairs); err != nil {
			p.logger.Warn("recovery alert failed", slog.String("error", err.Error()))
		}
	}
}

func (p *Poller) recordFailure(ctx context.Context, name domain.Exchange, at time.Time, cause error) {
	log := domain.FetchLog{
		Exchange:     name,
		Status:       domain.FetchStatusError,
		ErrorMessage: cause.Error(),
		FetchedAt:    at,
	}
	if err := p.logs.Insert(ctx, log); err != nil {
		p.logger.Error("fetch log insert failed",
			slog.String("exchange", string(name)),
			slog.String("error", err.Error()),
		)
	}
	if p.notifier != nil {
		if err := p.notifier.FetchFailed(ctx, name, cause); err != nil {
			p.logger.Warn("failure alert failed", slog.String("error", err.Error()))
		}
	}
}

// publishRefresh tells subscribers fresh rows are available. Best-effort.
func (p *Poller) publishRefresh(ctx context.Context, name domain.Exchange, pairs int) {
	if p.bus == nil {
		return
	}
	payload := fmt.Sprintf(`{"event":"tickers_updated","exchange":%q,"pairs":%d}`, name, pairs)
	if err := p.bus.Publish(ctx, RefreshChannel, []byte(payload)); err != nil {
		p.logger.Warn("refresh publish failed",
			slog.String("exchange", string(name)),
			slog.String("error", err.Error()),
		)
	}
}
