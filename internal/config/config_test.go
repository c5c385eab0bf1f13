package config

import (
	"os"
	"testing"
	"time"
)

func TestConfigLoad_Defaults(t *testing.T) {
	_ = os.Unsetenv("CORKBOARD_DB_DRIVER")
	_ = os.Unsetenv("CORKBOARD_POSTGRES_DSN")
	_ = os.Unsetenv("CORKBOARD_HTTP_PORT")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Fatalf("unexpected default port: %d", cfg.HTTPPort)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("auto driver without DSN should resolve to sqlite, got %s", cfg.DBDriver)
	}
	if cfg.GuestbookRateLimit != 5 || cfg.GuestbookRateWindow != time.Hour {
		t.Fatalf("unexpected rate limit defaults: %d / %s", cfg.GuestbookRateLimit, cfg.GuestbookRateWindow)
	}
	if cfg.HistoryDepth != 40 {
		t.Fatalf("unexpected default history depth: %d", cfg.HistoryDepth)
	}
	if len(cfg.AudioAllowedHosts) != 4 {
		t.Fatalf("unexpected default audio hosts: %v", cfg.AudioAllowedHosts)
	}
}

func TestConfigLoad_PostgresAuto(t *testing.T) {
	_ = os.Setenv("CORKBOARD_POSTGRES_DSN", "postgres://localhost/corkboard")
	defer func() { _ = os.Unsetenv("CORKBOARD_POSTGRES_DSN") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("auto driver with DSN should resolve to postgres, got %s", cfg.DBDriver)
	}
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	_ = os.Setenv("CORKBOARD_HTTP_PORT", "9191")
	defer func() { _ = os.Unsetenv("CORKBOARD_HTTP_PORT") }()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 9191 {
		t.Fatalf("port env override failed, got %d", cfg.HTTPPort)
	}
}

func TestResolveDefaults_Rejections(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.DBDriver = "mongodb" }},
		{"postgres without dsn", func(c *Config) { c.DBDriver = "postgres"; c.PostgresDSN = "" }},
		{"sqlite without path", func(c *Config) { c.DBDriver = "sqlite"; c.SQLitePath = "" }},
		{"zero rate limit", func(c *Config) { c.GuestbookRateLimit = 0 }},
		{"zero history depth", func(c *Config) { c.HistoryDepth = 0 }},
	}
	for _, tc := range cases {
		cfg := NewForTesting()
		tc.mut(cfg)
		if err := cfg.ResolveDefaults(); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
