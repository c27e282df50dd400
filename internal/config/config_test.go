package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	assert.Equal(t, 900*time.Second, cfg.Cache.TTL)
	assert.Equal(t, time.Duration(0), cfg.Cache.SweepInterval)
	assert.Equal(t, "GBP", cfg.Resolver.DefaultTarget)
	assert.True(t, cfg.Resolver.Coalesce)

	assert.Equal(t, DefaultPrimaryBaseURL, cfg.Primary.BaseURL)
	assert.Equal(t, 8*time.Second, cfg.Primary.Timeout)
	assert.Equal(t, 1, cfg.Primary.MaxRetries)
	assert.Equal(t, DefaultFallbackBaseURL, cfg.Fallback.BaseURL)
	assert.Equal(t, 8*time.Second, cfg.Fallback.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CACHE_TTL", "60s")
	t.Setenv("DEFAULT_TARGET_CURRENCY", " usd ")
	t.Setenv("RESOLVER_COALESCE", "false")
	t.Setenv("PRIMARY_BASE_URL", "http://primary.local")
	t.Setenv("PRIMARY_TIMEOUT", "2s")
	t.Setenv("FALLBACK_API_KEY", "secret")
	t.Setenv("FALLBACK_MAX_RETRIES", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "USD", cfg.Resolver.DefaultTarget)
	assert.False(t, cfg.Resolver.Coalesce)
	assert.Equal(t, "http://primary.local", cfg.Primary.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Primary.Timeout)
	assert.Equal(t, "secret", cfg.Fallback.APIKey)
	assert.Equal(t, 0, cfg.Fallback.MaxRetries)
	assert.Empty(t, cfg.Primary.APIKey)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 7000
cache:
  ttl: 5m
resolver:
  default_target: EUR
fallback:
  base_url: http://fallback.local
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "7001")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "EUR", cfg.Resolver.DefaultTarget)
	assert.Equal(t, "http://fallback.local", cfg.Fallback.BaseURL)
	assert.Equal(t, DefaultPrimaryBaseURL, cfg.Primary.BaseURL)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 5000},
			Cache:    CacheConfig{TTL: time.Minute},
			Resolver: ResolverConfig{DefaultTarget: "GBP"},
			Primary:  ProviderConfig{Timeout: time.Second, RateLimit: 1, RateBurst: 1},
			Fallback: ProviderConfig{Timeout: time.Second},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero ttl", mutate: func(c *Config) { c.Cache.TTL = 0 }, wantErr: "cache ttl"},
		{name: "negative sweep", mutate: func(c *Config) { c.Cache.SweepInterval = -time.Second }, wantErr: "sweep interval"},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "port"},
		{name: "empty target", mutate: func(c *Config) { c.Resolver.DefaultTarget = "" }, wantErr: "default target"},
		{name: "zero primary timeout", mutate: func(c *Config) { c.Primary.Timeout = 0 }, wantErr: "primary timeout"},
		{name: "negative fallback retries", mutate: func(c *Config) { c.Fallback.MaxRetries = -1 }, wantErr: "fallback max retries"},
		{name: "burst without limit is fine", mutate: func(c *Config) { c.Fallback.RateBurst = 0 }},
		{name: "limit without burst", mutate: func(c *Config) { c.Primary.RateBurst = 0 }, wantErr: "primary rate burst"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
