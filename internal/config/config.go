package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	// Service names the binary in log lines. Set by each main.
	Service string `env:"-"`
	LogLevel    slog.Level
	RawLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	RedisURL string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	DataDir  string        `env:"DATA_DIR" envDefault:"./data"`
	SheetTTL time.Duration `env:"SHEET_TTL" envDefault:"720h"`

	AutomatedWillpower bool  `env:"AUTOMATED_WILLPOWER" envDefault:"true"`
	SortAbilities      bool  `env:"SORT_ABILITIES" envDefault:"false"`
	RageThresholds     []int `env:"RAGE_THRESHOLDS" envSeparator:"," envDefault:"2"`

	WorkerID string `env:"WORKER_ID"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.RawLevel)
	return &cfg, nil
}

// RedisAddr returns the host:port form expected by redis.Options.Addr.
func (c *Config) RedisAddr() string {
	return strings.TrimPrefix(c.RedisURL, "redis://")
}

// RedisURI returns the redis:// form expected by redis.ParseURL.
func (c *Config) RedisURI() string {
	if strings.HasPrefix(c.RedisURL, "redis://") || strings.HasPrefix(c.RedisURL, "rediss://") {
		return c.RedisURL
	}
	return "redis://" + c.RedisURL
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
