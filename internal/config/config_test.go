package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad mode", func(c *Config) { c.Mode = "daemon" }, "unknown mode"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "unknown log_level"},
		{"missing postgres host", func(c *Config) { c.Postgres.Host = "" }, "postgres: host"},
		{"bad postgres port", func(c *Config) { c.Postgres.Port = 70000 }, "postgres: port"},
		{"pool bounds", func(c *Config) { c.Postgres.PoolMinConns = 20 }, "pool_min_conns"},
		{"missing redis addr", func(c *Config) { c.Redis.Addr = "" }, "redis: addr"},
		{"s3 enabled without bucket", func(c *Config) { c.S3.Enabled = true; c.S3.Bucket = "" }, "s3: bucket"},
		{"zero poll interval", func(c *Config) { c.Poller.Interval.Duration = 0 }, "poller: interval"},
		{"unknown exchange", func(c *Config) { c.Poller.Exchanges = []string{"BINANCE"} }, "unknown exchange"},
		{"bad server port", func(c *Config) { c.Server.Port = 0 }, "server: port"},
		{"telegram half-configured", func(c *Config) { c.Notify.TelegramToken = "tok" }, "telegram"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateDSNSkipsHostChecks(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.DSN = "postgres://u:p@db:5432/spotdeck"
	cfg.Postgres.Host = ""
	cfg.Postgres.Database = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DSN should satisfy connection checks: %v", err)
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
mode = "serve"
log_level = "debug"

[poller]
interval = "30s"

[server]
port = 9000
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SPOTDECK_SERVER_PORT", "9100")
	t.Setenv("SPOTDECK_REDIS_ADDR", "redis:6379")
	t.Setenv("SPOTDECK_POLLER_EXCHANGES", "lbank, gateio")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "serve" {
		t.Errorf("mode = %q, want serve from file", cfg.Mode)
	}
	if cfg.PollInterval() != 30*time.Second {
		t.Errorf("interval = %v, want 30s from file", cfg.PollInterval())
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want env override 9100", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("redis addr = %q, want env override", cfg.Redis.Addr)
	}
	if len(cfg.Poller.Exchanges) != 2 || cfg.Poller.Exchanges[0] != "lbank" {
		t.Errorf("exchanges = %v, want [lbank gateio]", cfg.Poller.Exchanges)
	}
	// Untouched fields keep their defaults.
	if cfg.Postgres.Database != "spotdeck" {
		t.Errorf("database = %q, want default", cfg.Postgres.Database)
	}
}

func TestRedactedConfigMasksSecrets(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.Password = "hunter2"
	cfg.Redis.Password = "hunter2"
	cfg.S3.SecretKey = "hunter2"
	cfg.Server.APIKey = "hunter2"
	cfg.Notify.TelegramToken = "123:abc"

	red := RedactedConfig(&cfg)

	for name, got := range map[string]string{
		"postgres password": red.Postgres.Password,
		"redis password":    red.Redis.Password,
		"s3 secret":         red.S3.SecretKey,
		"api key":           red.Server.APIKey,
		"telegram token":    red.Notify.TelegramToken,
	} {
		if got != "***" {
			t.Errorf("%s = %q, want ***", name, got)
		}
	}

	if cfg.Postgres.Password != "hunter2" {
		t.Error("redaction must not mutate the original")
	}
}
