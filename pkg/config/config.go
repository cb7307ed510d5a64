package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address         string        `yaml:"address"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	// Limits bound the guard layer: stream shape and amount magnitude.
	Limits struct {
		MaxAmount      uint64        `yaml:"max_amount"`
		MaxDuration    time.Duration `yaml:"max_duration"`
		MaxStartBehind time.Duration `yaml:"max_start_behind"`
		MaxStartAhead  time.Duration `yaml:"max_start_ahead"`
	} `yaml:"limits"`

	Ledger struct {
		// Backend is "memory" or "http".
		Backend        string        `yaml:"backend"`
		BaseURL        string        `yaml:"base_url"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		// CustodyAccount holds streamed funds between creation and payout.
		CustodyAccount string `yaml:"custody_account"`
	} `yaml:"ledger"`

	Storage struct {
		// Backend is "memory", "redis" or "postgres".
		Backend string `yaml:"backend"`
		// CacheTTL enables the read-through stream cache when positive.
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"storage"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	Events struct {
		// Feed enables the websocket event feed for indexers.
		Feed        bool   `yaml:"feed"`
		FeedAddress string `yaml:"feed_address"`
		// Channel is the redis pub/sub channel when storage.backend=redis.
		Channel string `yaml:"channel"`
	} `yaml:"events"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		JaegerURL   string  `yaml:"jaeger_url"`
		ServiceName string  `yaml:"service_name"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Auth struct {
		JWTSecret      string        `yaml:"jwt_secret"`
		AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
	} `yaml:"auth"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limiting"`

	Backup struct {
		Enabled       bool          `yaml:"enabled"`
		Dir           string        `yaml:"dir"`
		Interval      time.Duration `yaml:"interval"`
		RetentionDays int           `yaml:"retention_days"`
	} `yaml:"backup"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be > 0")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be > 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}

	if c.Limits.MaxAmount == 0 {
		return fmt.Errorf("limits.max_amount must be > 0")
	}
	if c.Limits.MaxDuration <= 0 {
		return fmt.Errorf("limits.max_duration must be > 0")
	}
	if c.Limits.MaxStartBehind < 0 || c.Limits.MaxStartAhead < 0 {
		return fmt.Errorf("limits start skew bounds must be >= 0")
	}

	switch c.Ledger.Backend {
	case "memory":
	case "http":
		if c.Ledger.BaseURL == "" {
			return fmt.Errorf("ledger.base_url must not be empty when ledger.backend=http")
		}
		if c.Ledger.RequestTimeout <= 0 {
			return fmt.Errorf("ledger.request_timeout must be > 0 when ledger.backend=http")
		}
	default:
		return fmt.Errorf("ledger.backend must be memory or http, got %q", c.Ledger.Backend)
	}
	if c.Ledger.CustodyAccount == "" {
		return fmt.Errorf("ledger.custody_account must not be empty")
	}

	switch c.Storage.Backend {
	case "memory":
	case "redis":
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when storage.backend=redis")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when storage.backend=redis")
		}
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn must not be empty when storage.backend=postgres")
		}
	default:
		return fmt.Errorf("storage.backend must be memory, redis or postgres, got %q", c.Storage.Backend)
	}

	if c.Events.Feed && c.Events.FeedAddress == "" {
		return fmt.Errorf("events.feed_address must not be empty when events.feed=true")
	}

	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort <= 0 {
		return fmt.Errorf("monitoring.prometheus_port must be > 0 when prometheus_enabled=true")
	}

	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be within [0, 1]")
		}
	}

	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be > 0")
	}

	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
	}

	if c.Backup.Enabled {
		if c.Backup.Dir == "" {
			return fmt.Errorf("backup.dir must not be empty when backup is enabled")
		}
		if c.Backup.Interval <= 0 {
			return fmt.Errorf("backup.interval must be > 0 when backup is enabled")
		}
		if c.Backup.RetentionDays <= 0 {
			return fmt.Errorf("backup.retention_days must be > 0 when backup is enabled")
		}
	}

	return nil
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 30 * time.Second

	// 1e18 base units bounds the 128-bit intermediate comfortably.
	cfg.Limits.MaxAmount = 1_000_000_000_000_000_000
	cfg.Limits.MaxDuration = 4 * 365 * 24 * time.Hour
	cfg.Limits.MaxStartBehind = 24 * time.Hour
	cfg.Limits.MaxStartAhead = 365 * 24 * time.Hour

	cfg.Ledger.Backend = "memory"
	cfg.Ledger.RequestTimeout = 5 * time.Second
	cfg.Ledger.CustodyAccount = "paystream:custody"

	cfg.Storage.Backend = "memory"
	cfg.Storage.CacheTTL = 30 * time.Second

	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	cfg.Events.Feed = false
	cfg.Events.FeedAddress = ":8081"
	cfg.Events.Channel = "paystream:events"

	cfg.Monitoring.PrometheusEnabled = true
	cfg.Monitoring.PrometheusPort = 9090

	cfg.Tracing.Enabled = false
	cfg.Tracing.ServiceName = "paystream"
	cfg.Tracing.SampleRate = 0.1

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Auth.JWTSecret = "change-me-in-production"
	cfg.Auth.AccessTokenTTL = 15 * time.Minute

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 50
	cfg.RateLimiting.Burst = 100

	cfg.Backup.Enabled = false
	cfg.Backup.Dir = "backups"
	cfg.Backup.Interval = 6 * time.Hour
	cfg.Backup.RetentionDays = 14

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("PAYSTREAM_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if level := os.Getenv("PAYSTREAM_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if secret := os.Getenv("PAYSTREAM_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if backend := os.Getenv("PAYSTREAM_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if addr := os.Getenv("PAYSTREAM_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}
	if dsn := os.Getenv("PAYSTREAM_POSTGRES_DSN"); dsn != "" {
		c.Postgres.DSN = dsn
	}
	if max := os.Getenv("PAYSTREAM_MAX_AMOUNT"); max != "" {
		if v, err := strconv.ParseUint(max, 10, 64); err == nil && v > 0 {
			c.Limits.MaxAmount = v
		}
	}
}
