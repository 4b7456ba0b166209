package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type StoreConfig struct {
	Driver string `env:"STARDOM_STORE" envDefault:"file"`
	DSN    string `env:"STARDOM_STORE_DSN"`
}

type APIConfig struct {
	Addr       string `env:"STARDOM_API_ADDR" envDefault:":8080"`
	Store      StoreConfig
	TuningPath string `env:"STARDOM_TUNING_FILE"`
	Seed       int64  `env:"STARDOM_SEED"`
	LogLevel   string `env:"STARDOM_LOG_LEVEL" envDefault:"info"`
}

type WorkerConfig struct {
	Store       StoreConfig
	TuningPath  string        `env:"STARDOM_TUNING_FILE"`
	Seed        int64         `env:"STARDOM_SEED"`
	LogLevel    string        `env:"STARDOM_LOG_LEVEL" envDefault:"info"`
	WeekEvery   time.Duration `env:"STARDOM_WEEK_EVERY" envDefault:"10m"`
	RunOnce     bool          `env:"STARDOM_WORKER_RUN_ONCE"`
	MetricsAddr string        `env:"STARDOM_METRICS_ADDR" envDefault:":9090"`

	DiscordToken   string `env:"STARDOM_DISCORD_TOKEN"`
	DiscordChannel string `env:"STARDOM_DISCORD_CHANNEL"`
	WhatsAppDB     string `env:"STARDOM_WHATSAPP_DB"`
	WhatsAppTo     string `env:"STARDOM_WHATSAPP_TO"`
}

type CLIConfig struct {
	APIBaseURL string `env:"STARDOM_API_BASE_URL" envDefault:"http://localhost:8080"`
}

func LoadAPIFromEnv() (APIConfig, error) {
	var cfg APIConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Addr = port
	}
	if err := cfg.Store.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	var cfg WorkerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Store.validate(); err != nil {
		return cfg, err
	}
	if cfg.WeekEvery <= 0 {
		return cfg, fmt.Errorf("STARDOM_WEEK_EVERY must be positive")
	}
	if (cfg.DiscordToken == "") != (cfg.DiscordChannel == "") {
		return cfg, fmt.Errorf("STARDOM_DISCORD_TOKEN and STARDOM_DISCORD_CHANNEL must be set together")
	}
	if (cfg.WhatsAppDB == "") != (cfg.WhatsAppTo == "") {
		return cfg, fmt.Errorf("STARDOM_WHATSAPP_DB and STARDOM_WHATSAPP_TO must be set together")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	var cfg CLIConfig
	if err := env.Parse(&cfg); err != nil {
		cfg.APIBaseURL = "http://localhost:8080"
	}
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	return cfg
}

func (s *StoreConfig) validate() error {
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	s.DSN = strings.TrimSpace(s.DSN)
	switch s.Driver {
	case "file":
	case "sqlite", "postgres":
		if s.DSN == "" {
			return fmt.Errorf("STARDOM_STORE_DSN is required for the %s store", s.Driver)
		}
	default:
		return fmt.Errorf("STARDOM_STORE must be file, sqlite or postgres, got %q", s.Driver)
	}
	return nil
}

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
