package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	s3blob "github.com/spotdeck/spotdeck/internal/blob/s3"
	"github.com/spotdeck/spotdeck/internal/cache/redis"
	"github.com/spotdeck/spotdeck/internal/config"
	"github.com/spotdeck/spotdeck/internal/domain"
	"github.com/spotdeck/spotdeck/internal/exchange"
	"github.com/spotdeck/spotdeck/internal/exchange/gateio"
	"github.com/spotdeck/spotdeck/internal/exchange/hashkey"
	"github.com/spotdeck/spotdeck/internal/exchange/lbank"
	"github.com/spotdeck/spotdeck/internal/exchange/poloniex"
	"github.com/spotdeck/spotdeck/internal/notify"
	"github.com/spotdeck/spotdeck/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Stores
	Tickers domain.TickerStore
	Logs    domain.FetchLogStore
	Lists   domain.MarketListStore

	// Caches
	Depths domain.DepthCache
	Seen   domain.SeenSet
	Bus    domain.SignalBus

	// Exchange adapters
	Registry *exchange.Registry

	// Blob storage. Nil unless S3 is enabled and the mode runs the
	// archiver.
	Archiver *s3blob.Archiver

	// Notifications
	Notifier *notify.Notifier
}

// needsArchiver returns true for modes that run the daily snapshot archiver.
func needsArchiver(mode string) bool {
	switch mode {
	case "poll", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{
		Registry: buildRegistry(cfg.Poller.Exchanges),
	}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.Tickers = postgres.NewTickerStore(pool)
	deps.Logs = postgres.NewFetchLogStore(pool)
	deps.Lists = postgres.NewMarketListStore(pool)

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.Depths = redis.NewDepthCache(redisClient)
	deps.Seen = redis.NewSeenSet(redisClient)
	deps.Bus = redis.NewSignalBus(redisClient)

	// --- S3 blob storage (archiver modes only) ---
	if cfg.S3.Enabled && needsArchiver(strings.ToLower(cfg.Mode)) {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.Archiver = s3blob.NewArchiver(s3blob.NewWriter(s3Client), deps.Tickers, deps.Logs)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.AlertCooldown(), slog.Default())

	return deps, cleanup, nil
}

// buildRegistry registers one adapter per supported exchange, restricted to
// the configured subset when one is given.
func buildRegistry(enabled []string) *exchange.Registry {
	all := []exchange.Adapter{
		lbank.New(),
		hashkey.New(),
		gateio.New(),
		poloniex.New(),
	}
	if len(enabled) == 0 {
		return exchange.NewRegistry(all...)
	}

	want := make(map[domain.Exchange]bool, len(enabled))
	for _, name := range enabled {
		want[strings.ToUpper(strings.TrimSpace(name))] = true
	}
	var picked []exchange.Adapter
	for _, a := range all {
		if want[a.Name()] {
			picked = append(picked, a)
		}
	}
	return exchange.NewRegistry(picked...)
}
