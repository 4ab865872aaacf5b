package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func envOf(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 27*time.Second, cfg.Timer.Ban)
	assert.Equal(t, 59*time.Second, cfg.Timer.Finalization)
	assert.Equal(t, 10, cfg.Timer.OvertimeTicks)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"DRAFT_HTTP_ADDR":            ":9000",
		"DRAFT_STORE":                "redis",
		"REDIS_URL":                  "redis://cache:6379/1",
		"DRAFT_BAN_SECONDS":          "30",
		"DRAFT_PICK_SECONDS":         "25",
		"DRAFT_FINALIZATION_SECONDS": "45",
		"DRAFT_TICK_MS":              "500",
		"DRAFT_OVERTIME_TICKS":       "0",
		"DRAFT_CLEANUP_INTERVAL":     "15m",
		"DRAFT_SESSION_MAX_AGE":      "48h",
		"LOG_LEVEL":                  "debug",
		"LOG_FORMAT":                 "console",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.Timer.Ban)
	assert.Equal(t, 25*time.Second, cfg.Timer.Pick)
	assert.Equal(t, 45*time.Second, cfg.Timer.Finalization)
	assert.Equal(t, 500*time.Millisecond, cfg.Timer.Interval)
	assert.Equal(t, 0, cfg.Timer.OvertimeTicks)
	assert.Equal(t, 15*time.Minute, cfg.CleanupInterval)
	assert.Equal(t, 48*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestFromEnv_ReportsEveryBadValue(t *testing.T) {
	_, err := FromEnv(envOf(map[string]string{
		"DRAFT_BAN_SECONDS":     "soon",
		"DRAFT_TICK_MS":         "-1",
		"DRAFT_SESSION_MAX_AGE": "forever",
	}))
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default", mutate: func(*Config) {}},
		{name: "unknown store", mutate: func(c *Config) { c.Store = "mongo" }, wantErr: true},
		{name: "redis without url", mutate: func(c *Config) { c.Store = StoreRedis }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Store = StorePostgres; c.DatabaseURL = "" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
		{name: "zero interval", mutate: func(c *Config) { c.Timer.Interval = 0 }, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}

func TestLoad_ReadsProcessEnv(t *testing.T) {
	t.Setenv("DRAFT_HTTP_ADDR", ":7777")
	t.Setenv("DRAFT_STORE", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.HTTPAddr)
}
