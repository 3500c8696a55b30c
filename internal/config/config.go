package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Scan struct {
		Lookback      string        `yaml:"lookback"`
		Suffixes      []string      `yaml:"suffixes"`
		Workers       int           `yaml:"workers"`
		FetchTimeout  time.Duration `yaml:"fetch_timeout"`
		Retries       int           `yaml:"retries"`
		RetryBackoff  time.Duration `yaml:"retry_backoff"`
		Watchlist     []string      `yaml:"watchlist"`
		WatchlistFile string        `yaml:"watchlist_file"`
	} `yaml:"scan"`
	Strategy struct {
		FastSpan     int `yaml:"fast_span"`
		SlowSpan     int `yaml:"slow_span"`
		VolumeSpan   int `yaml:"volume_span"`
		MaxSignalAge int `yaml:"max_signal_age"`
	} `yaml:"strategy"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"data_source"`
	Cache struct {
		Backend       string        `yaml:"backend"` // sqlite, redis or none
		SQLitePath    string        `yaml:"sqlite_path"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		TTL           time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env (if present) and the YAML file at path, then applies
// environment variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := newDefault()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

// newDefault returns a Config holding the numeric defaults. They are set
// before the YAML is decoded so that an explicit 0 in the file is kept.
func newDefault() *Config {
	cfg := &Config{}
	cfg.Scan.Workers = 4
	cfg.Scan.FetchTimeout = 30 * time.Second
	cfg.Scan.Retries = 2
	cfg.Scan.RetryBackoff = time.Second
	cfg.Strategy.FastSpan = 9
	cfg.Strategy.SlowSpan = 20
	cfg.Strategy.VolumeSpan = 14
	cfg.Strategy.MaxSignalAge = 60
	cfg.Cache.TTL = 6 * time.Hour
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
		if cfg.Cache.Backend == "" {
			cfg.Cache.Backend = "redis"
		}
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		cfg.Schedule.ScanCron = v
	}
	if v := os.Getenv("SCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scan.Workers = n
		}
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Scan.Lookback == "" {
		cfg.Scan.Lookback = "6mo"
	}
	if len(cfg.Scan.Suffixes) == 0 {
		cfg.Scan.Suffixes = []string{".NS", ".BO"}
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "sqlite"
	}
	if cfg.Cache.SQLitePath == "" {
		cfg.Cache.SQLitePath = "data/bar_cache.db"
	}
	if cfg.Schedule.ScanCron == "" {
		cfg.Schedule.ScanCron = "0 45 15 * * 1-5"
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "signal-results"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks that all settings are usable.
func (c *Config) Validate() error {
	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be at least 1")
	}
	if c.Scan.Retries < 0 {
		return fmt.Errorf("scan.retries must not be negative")
	}
	if c.Strategy.FastSpan <= 0 || c.Strategy.SlowSpan <= 0 || c.Strategy.VolumeSpan <= 0 {
		return fmt.Errorf("strategy spans must be positive")
	}
	if c.Strategy.FastSpan >= c.Strategy.SlowSpan {
		return fmt.Errorf("strategy.fast_span (%d) must be shorter than strategy.slow_span (%d)",
			c.Strategy.FastSpan, c.Strategy.SlowSpan)
	}
	if c.Strategy.MaxSignalAge < 0 {
		return fmt.Errorf("strategy.max_signal_age must not be negative")
	}
	switch c.Cache.Backend {
	case "sqlite", "none":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether Telegram delivery is configured.
func (c *Config) TelegramEnabled() bool { return c.Telegram.BotToken != "" }

// KafkaEnabled reports whether result publishing is configured.
func (c *Config) KafkaEnabled() bool { return len(c.Kafka.Brokers) > 0 && c.Kafka.Brokers[0] != "" }
