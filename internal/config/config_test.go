package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "KAFKA_BROKERS", "CACHE_BACKEND", "REDIS_ADDR", "SCAN_WORKERS"} {
		t.Setenv(k, "")
	}
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "6mo", cfg.Scan.Lookback)
	assert.Equal(t, []string{".NS", ".BO"}, cfg.Scan.Suffixes)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, 30*time.Second, cfg.Scan.FetchTimeout)
	assert.Equal(t, 9, cfg.Strategy.FastSpan)
	assert.Equal(t, 20, cfg.Strategy.SlowSpan)
	assert.Equal(t, 14, cfg.Strategy.VolumeSpan)
	assert.Equal(t, 60, cfg.Strategy.MaxSignalAge)
	assert.Equal(t, "sqlite", cfg.Cache.Backend)
	assert.False(t, cfg.TelegramEnabled())
	assert.False(t, cfg.KafkaEnabled())
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
scan:
  workers: 8
  fetch_timeout: 5s
  suffixes: [".NS"]
  watchlist: [RELIANCE, TCS]
strategy:
  max_signal_age: 30
cache:
  backend: none
log:
  level: debug
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SCAN_WORKERS", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2, cfg.Scan.Workers)
	assert.Equal(t, 5*time.Second, cfg.Scan.FetchTimeout)
	assert.Equal(t, []string{".NS"}, cfg.Scan.Suffixes)
	assert.Equal(t, []string{"RELIANCE", "TCS"}, cfg.Scan.Watchlist)
	assert.Equal(t, 30, cfg.Strategy.MaxSignalAge)
	assert.Equal(t, "none", cfg.Cache.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.KafkaEnabled())
}

func TestLoad_ExplicitZeroIsKept(t *testing.T) {
	t.Setenv("SCAN_WORKERS", "")
	path := writeConfig(t, `
scan:
  retries: 0
  fetch_timeout: 0s
  retry_backoff: 0s
strategy:
  max_signal_age: 0
cache:
  ttl: 0s
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0, cfg.Scan.Retries)
	assert.Equal(t, time.Duration(0), cfg.Scan.FetchTimeout)
	assert.Equal(t, time.Duration(0), cfg.Scan.RetryBackoff)
	assert.Equal(t, 0, cfg.Strategy.MaxSignalAge)
	assert.Equal(t, time.Duration(0), cfg.Cache.TTL)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, 9, cfg.Strategy.FastSpan)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "scan: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"fast not shorter than slow", func(c *Config) { c.Strategy.FastSpan = 20 }, "must be shorter"},
		{"no workers", func(c *Config) { c.Scan.Workers = -1 }, "scan.workers"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis" }, "redis_addr"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, "unknown cache.backend"},
		{"telegram half configured", func(c *Config) { c.Telegram.BotToken = "x" }, "set together"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
