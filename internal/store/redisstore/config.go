package redisstore

import "time"

// Config holds Redis connection and retention settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL string

	PoolSize     int
	MinIdleConns int

	// SessionTTL is refreshed on every save. Zero keeps sessions until the
	// janitor deletes them.
	SessionTTL time.Duration
	// ResultTTL applies to recorded game results.
	ResultTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		SessionTTL:   72 * time.Hour,
		ResultTTL:    30 * 24 * time.Hour,
	}
}
