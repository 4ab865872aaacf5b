// Package config reads server settings from the environment, after loading
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/DoyleJ11/lol-draft-series/internal/timer"
)

type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StorePostgres StoreKind = "postgres"
	StoreSQLite   StoreKind = "sqlite"
	StoreRedis    StoreKind = "redis"
)

type Config struct {
	HTTPAddr string

	Store       StoreKind
	DatabaseURL string
	RedisURL    string

	// ChampionsFile overrides the embedded champion data when set.
	ChampionsFile string

	Timer timer.Durations

	CleanupInterval time.Duration
	SessionMaxAge   time.Duration

	LogLevel  string
	LogFormat string
}

func Default() Config {
	return Config{
		HTTPAddr:        ":8080",
		Store:           StoreMemory,
		DatabaseURL:     "draft.db",
		Timer:           timer.Default(),
		CleanupInterval: time.Hour,
		SessionMaxAge:   24 * time.Hour,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// Load reads .env (if present) and then the process environment on top of
// Default. Every malformed variable is reported, not just the first.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	seconds := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				errs = multierr.Append(errs, fmt.Errorf("%s: want a positive number of seconds, got %q", key, v))
				return
			}
			*dst = time.Duration(n) * time.Second
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				errs = multierr.Append(errs, fmt.Errorf("%s: want a positive duration, got %q", key, v))
				return
			}
			*dst = d
		}
	}

	str("DRAFT_HTTP_ADDR", &cfg.HTTPAddr)
	var store string
	str("DRAFT_STORE", &store)
	if store != "" {
		cfg.Store = StoreKind(store)
	}
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("REDIS_URL", &cfg.RedisURL)
	str("DRAFT_CHAMPIONS_FILE", &cfg.ChampionsFile)
	seconds("DRAFT_BAN_SECONDS", &cfg.Timer.Ban)
	seconds("DRAFT_PICK_SECONDS", &cfg.Timer.Pick)
	seconds("DRAFT_FINALIZATION_SECONDS", &cfg.Timer.Finalization)
	if v, ok := lookup("DRAFT_TICK_MS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("DRAFT_TICK_MS: want a positive integer, got %q", v))
		} else {
			cfg.Timer.Interval = time.Duration(n) * time.Millisecond
		}
	}
	if v, ok := lookup("DRAFT_OVERTIME_TICKS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = multierr.Append(errs, fmt.Errorf("DRAFT_OVERTIME_TICKS: want a non-negative integer, got %q", v))
		} else {
			cfg.Timer.OvertimeTicks = n
		}
	}
	duration("DRAFT_CLEANUP_INTERVAL", &cfg.CleanupInterval)
	duration("DRAFT_SESSION_MAX_AGE", &cfg.SessionMaxAge)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)

	if errs != nil {
		return Config{}, errs
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs error
	switch c.Store {
	case StoreMemory:
	case StorePostgres, StoreSQLite:
		if c.DatabaseURL == "" {
			errs = multierr.Append(errs, fmt.Errorf("DATABASE_URL is required for the %s store", c.Store))
		}
	case StoreRedis:
		if c.RedisURL == "" {
			errs = multierr.Append(errs, errors.New("REDIS_URL is required for the redis store"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("DRAFT_STORE: unknown store %q", c.Store))
	}
	if err := c.Timer.Validate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = multierr.Append(errs, fmt.Errorf("LOG_FORMAT: want json or console, got %q", c.LogFormat))
	}
	return errs
}
