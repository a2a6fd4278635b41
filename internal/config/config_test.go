package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("REWARD_TOKEN_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 5, cfg.ViewRateLimit)
	require.Equal(t, int64(5000), cfg.PayoutMinCoins)
	require.Equal(t, int64(1), cfg.CoinsToPaise)
	require.Equal(t, "reelspay.db", cfg.DBPath)
	require.Equal(t, 3600.0, cfg.ViewDedupWindow.Seconds())
	require.Equal(t, 10*time.Second, cfg.DBTimeout)
	require.Equal(t, 15*time.Second, cfg.RequestTimeout)
	require.Equal(t, 5*time.Minute, cfg.HTTPReadTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid sqlite", func(c *Config) {}, false},
		{"missing secret", func(c *Config) { c.RewardTokenSecret = " " }, true},
		{"mysql without host", func(c *Config) { c.DBDriver = "mysql"; c.DBUser = "u"; c.DBName = "n" }, true},
		{"mysql via cloud sql", func(c *Config) {
			c.DBDriver = "mysql"
			c.DBUser = "u"
			c.DBName = "n"
			c.InstanceConnectionName = "proj:region:inst"
		}, false},
		{"unknown driver", func(c *Config) { c.DBDriver = "oracle" }, true},
		{"zero rate limit", func(c *Config) { c.ViewRateLimit = 0 }, true},
		{"zero conversion", func(c *Config) { c.CoinsToPaise = 0 }, true},
		{"unbounded database", func(c *Config) { c.DBTimeout = 0 }, true},
		{"unbounded requests", func(c *Config) { c.RequestTimeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validSQLite()
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func validSQLite() Config {
	return Config{
		DBDriver:          "sqlite",
		DBPath:            "test.db",
		DBTimeout:         10 * time.Second,
		RequestTimeout:    15 * time.Second,
		RewardTokenSecret: "secret",
		RewardTokenTTL:    time.Minute,
		RewardBucket:      time.Hour,
		ViewRateLimit:     5,
		ViewRateWindow:    time.Minute,
		ViewDedupWindow:   time.Hour,
		PayoutMinCoins:    5000,
		CoinsToPaise:      1,
	}
}
