package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got error: %v", err)
	}
}

func TestValidate_InvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "empty server address",
			mutate: func(c *Config) { c.Server.Address = "" },
		},
		{
			name:   "zero max amount",
			mutate: func(c *Config) { c.Limits.MaxAmount = 0 },
		},
		{
			name:   "non-positive max duration",
			mutate: func(c *Config) { c.Limits.MaxDuration = 0 },
		},
		{
			name:   "unknown storage backend",
			mutate: func(c *Config) { c.Storage.Backend = "etcd" },
		},
		{
			name: "redis backend without address",
			mutate: func(c *Config) {
				c.Storage.Backend = "redis"
				c.Redis.Address = ""
			},
		},
		{
			name: "postgres backend without dsn",
			mutate: func(c *Config) {
				c.Storage.Backend = "postgres"
				c.Postgres.DSN = ""
			},
		},
		{
			name: "http ledger without base url",
			mutate: func(c *Config) {
				c.Ledger.Backend = "http"
				c.Ledger.BaseURL = ""
			},
		},
		{
			name:   "empty custody account",
			mutate: func(c *Config) { c.Ledger.CustodyAccount = "" },
		},
		{
			name:   "empty jwt secret",
			mutate: func(c *Config) { c.Auth.JWTSecret = "" },
		},
		{
			name: "rate limiting enabled with zero rps",
			mutate: func(c *Config) {
				c.RateLimiting.Enabled = true
				c.RateLimiting.RequestsPerSecond = 0
			},
		},
		{
			name: "tracing sample rate out of range",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.JaegerURL = "http://localhost:14268/api/traces"
				c.Tracing.SampleRate = 2
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error, got nil")
			}
		})
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got error: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("expected default server address, got %s", cfg.Server.Address)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  address: \":9999\"\nlimits:\n  max_duration: 24h\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Address != ":9999" {
		t.Errorf("expected overridden address, got %s", cfg.Server.Address)
	}
	if cfg.Limits.MaxDuration != 24*time.Hour {
		t.Errorf("expected overridden max duration, got %s", cfg.Limits.MaxDuration)
	}
	// untouched sections keep defaults
	if cfg.Storage.Backend != "memory" {
		t.Errorf("expected default storage backend, got %s", cfg.Storage.Backend)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PAYSTREAM_LOG_LEVEL", "debug")
	t.Setenv("PAYSTREAM_MAX_AMOUNT", "12345")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env log level, got %s", cfg.Logging.Level)
	}
	if cfg.Limits.MaxAmount != 12345 {
		t.Errorf("expected env max amount, got %d", cfg.Limits.MaxAmount)
	}
}
