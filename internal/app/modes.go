package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spotdeck/spotdeck/internal/poller"
	"github.com/spotdeck/spotdeck/internal/server"
	"github.com/spotdeck/spotdeck/internal/server/handler"
	"github.com/spotdeck/spotdeck/internal/server/ws"
)

// ServeMode runs the HTTP API and WebSocket hub without any background
// polling. Manual fetches via POST /api/fetch/{exchange} still work.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// PollMode runs the exchange pollers, the depth prefetcher, and the snapshot
// archiver, with no HTTP surface.
func (a *App) PollMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting poll mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startPollers(ctx, g, deps)
	return g.Wait()
}

// FullMode runs everything: pollers, depth prefetcher, archiver, and the
// HTTP API with the WebSocket hub.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startPollers(ctx, g, deps)
	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps)
	}
	return g.Wait()
}

// startPollers adds the per-exchange poll loops, the depth prefetcher, and
// (when wired) the archiver loop to the given errgroup.
func (a *App) startPollers(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	p := a.newPoller(deps)
	g.Go(func() error {
		return p.Run(ctx)
	})

	prefetcher := poller.NewDepthPrefetcher(
		deps.Registry,
		deps.Tickers,
		deps.Depths,
		deps.Seen,
		a.cfg.Poller.DepthLevels,
		a.cfg.DepthTTL(),
		a.cfg.DepthInterval(),
		a.logger,
	)
	g.Go(func() error {
		return prefetcher.Run(ctx)
	})

	if deps.Archiver != nil {
		g.Go(func() error {
			return a.runArchiver(ctx, deps)
		})
	}
}

// runArchiver uploads daily ticker and fetch-log snapshots to object storage
// on the configured interval. Upload failures are logged and retried on the
// next tick.
func (a *App) runArchiver(ctx context.Context, deps *Dependencies) error {
	interval := a.cfg.ArchiveInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			day := time.Now().UTC()
			if n, err := deps.Archiver.ArchiveTickers(ctx, day); err != nil {
				a.logger.WarnContext(ctx, "ticker archive failed", slog.String("error", err.Error()))
			} else {
				a.logger.InfoContext(ctx, "archived tickers", slog.Int("records", n))
			}
			if n, err := deps.Archiver.ArchiveFetchLogs(ctx, day); err != nil {
				a.logger.WarnContext(ctx, "fetch log archive failed", slog.String("error", err.Error()))
			} else {
				a.logger.InfoContext(ctx, "archived fetch logs", slog.Int("records", n))
			}
		}
	}
}

// startHTTPServer adds the HTTP server and WebSocket hub goroutines to the
// given errgroup. The server is shut down gracefully when the context is
// cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	hub := ws.NewHub(deps.Bus, poller.RefreshChannel, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	handlers := server.Handlers{
		Health:     handler.NewHealthHandler(),
		Tickers:    handler.NewTickerHandler(deps.Tickers, a.logger),
		Status:     handler.NewStatusHandler(deps.Registry.Names(), deps.Logs, deps.Tickers, deps.Lists, a.logger),
		Logs:       handler.NewLogsHandler(deps.Logs, a.logger),
		Fetch:      handler.NewFetchHandler(a.newPoller(deps), a.logger),
		OrderBooks: handler.NewOrderBookHandler(deps.Registry, deps.Depths, a.logger),
		Lists:      handler.NewMarketListHandler(deps.Lists, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:           a.cfg.Server.Port,
		CORSOrigins:    a.cfg.Server.CORSOrigins,
		APIKey:         a.cfg.Server.APIKey,
		RateLimitRPS:   a.cfg.Server.RateLimitRPS,
		RateLimitBurst: a.cfg.Server.RateLimitBurst,
	}, handlers, hub, a.logger)

	g.Go(func() error {
		a.logger.InfoContext(ctx, "HTTP server listening",
			slog.Int("port", a.cfg.Server.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", a.cfg.Server.Port)),
		)
		return srv.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.logger.InfoContext(ctx, "HTTP server shutting down")
		return srv.Shutdown(shutCtx)
	})
}

func (a *App) newPoller(deps *Dependencies) *poller.Poller {
	return poller.New(
		deps.Registry,
		deps.Tickers,
		deps.Logs,
		deps.Lists,
		deps.Bus,
		deps.Notifier,
		a.cfg.PollInterval(),
		a.logger,
	)
}
