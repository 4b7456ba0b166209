package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadAPIFromEnv(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STARDOM_STORE", "")
	cfg, err := LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Store.Driver != "file" {
		t.Fatalf("defaults = %+v", cfg)
	}

	t.Setenv("PORT", "9000")
	t.Setenv("STARDOM_STORE", "SQLite")
	t.Setenv("STARDOM_STORE_DSN", "/tmp/saves.db")
	t.Setenv("STARDOM_SEED", "42")
	cfg, err = LoadAPIFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.Store.Driver != "sqlite" || cfg.Seed != 42 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadAPIFromEnvRejectsBadStore(t *testing.T) {
	tests := []struct {
		name, driver, dsn string
	}{
		{"unknown driver", "mongo", "x"},
		{"postgres without dsn", "postgres", ""},
	}
	for _, tc := range tests {
		t.Setenv("STARDOM_STORE", tc.driver)
		t.Setenv("STARDOM_STORE_DSN", tc.dsn)
		if _, err := LoadAPIFromEnv(); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestLoadWorkerFromEnv(t *testing.T) {
	t.Setenv("STARDOM_STORE", "file")
	t.Setenv("STARDOM_WEEK_EVERY", "30s")
	t.Setenv("STARDOM_WORKER_RUN_ONCE", "true")
	cfg, err := LoadWorkerFromEnv()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WeekEvery != 30*time.Second || !cfg.RunOnce || cfg.MetricsAddr != ":9090" {
		t.Fatalf("cfg = %+v", cfg)
	}

	t.Setenv("STARDOM_DISCORD_TOKEN", "token")
	if _, err := LoadWorkerFromEnv(); err == nil {
		t.Fatalf("discord token without channel should fail")
	}
	t.Setenv("STARDOM_DISCORD_CHANNEL", "123")
	if _, err := LoadWorkerFromEnv(); err != nil {
		t.Fatalf("discord pair: %v", err)
	}

	t.Setenv("STARDOM_WEEK_EVERY", "nope")
	if _, err := LoadWorkerFromEnv(); err == nil {
		t.Fatalf("bad duration should fail")
	}
}

func TestLoadCLIFromEnv(t *testing.T) {
	t.Setenv("STARDOM_API_BASE_URL", "https://stardom.example/ ")
	if got := LoadCLIFromEnv().APIBaseURL; got != "https://stardom.example" {
		t.Fatalf("base url %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v want %v", in, got, want)
		}
	}
}
