package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SPOTDECK_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SPOTDECK_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators inject secrets at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// --- Postgres ---
	setStr(&cfg.Postgres.DSN, "SPOTDECK_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "SPOTDECK_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SPOTDECK_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SPOTDECK_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SPOTDECK_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SPOTDECK_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SPOTDECK_POSTGRES_SSLMODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SPOTDECK_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SPOTDECK_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SPOTDECK_POSTGRES_RUN_MIGRATIONS")

	// --- Redis ---
	setStr(&cfg.Redis.Addr, "SPOTDECK_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SPOTDECK_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SPOTDECK_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SPOTDECK_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SPOTDECK_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SPOTDECK_REDIS_TLS_ENABLED")

	// --- S3 ---
	setBool(&cfg.S3.Enabled, "SPOTDECK_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "SPOTDECK_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SPOTDECK_S3_REGION")
	setStr(&cfg.S3.Bucket, "SPOTDECK_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SPOTDECK_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SPOTDECK_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SPOTDECK_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SPOTDECK_S3_FORCE_PATH_STYLE")
	setDuration(&cfg.S3.ArchiveInterval, "SPOTDECK_S3_ARCHIVE_INTERVAL")

	// --- Poller ---
	setStringSlice(&cfg.Poller.Exchanges, "SPOTDECK_POLLER_EXCHANGES")
	setDuration(&cfg.Poller.Interval, "SPOTDECK_POLLER_INTERVAL")
	setInt(&cfg.Poller.DepthLevels, "SPOTDECK_POLLER_DEPTH_LEVELS")
	setDuration(&cfg.Poller.DepthTTL, "SPOTDECK_POLLER_DEPTH_TTL")
	setDuration(&cfg.Poller.DepthInterval, "SPOTDECK_POLLER_DEPTH_INTERVAL")

	// --- Server ---
	setBool(&cfg.Server.Enabled, "SPOTDECK_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SPOTDECK_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SPOTDECK_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "SPOTDECK_SERVER_API_KEY")
	setFloat64(&cfg.Server.RateLimitRPS, "SPOTDECK_SERVER_RATE_LIMIT_RPS")
	setInt(&cfg.Server.RateLimitBurst, "SPOTDECK_SERVER_RATE_LIMIT_BURST")

	// --- Notify ---
	setStr(&cfg.Notify.TelegramToken, "SPOTDECK_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SPOTDECK_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SPOTDECK_NOTIFY_DISCORD_WEBHOOK_URL")
	setDuration(&cfg.Notify.AlertCooldown, "SPOTDECK_NOTIFY_ALERT_COOLDOWN")

	// --- Top-level ---
	setStr(&cfg.Mode, "SPOTDECK_MODE")
	setStr(&cfg.LogLevel, "SPOTDECK_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
