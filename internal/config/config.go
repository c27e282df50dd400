package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Cache    CacheConfig    `yaml:"cache"`
	Resolver ResolverConfig `yaml:"resolver"`
	Primary  ProviderConfig `yaml:"primary" env-prefix:"PRIMARY_"`
	Fallback ProviderConfig `yaml:"fallback" env-prefix:"FALLBACK_"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"SERVER_PORT" env-default:"5000"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"900s"`
	// Zero disables the background sweep; expiry then happens only on lookup.
	SweepInterval time.Duration `yaml:"sweep_interval" env:"CACHE_SWEEP_INTERVAL" env-default:"0s"`
}

type ResolverConfig struct {
	DefaultTarget string `yaml:"default_target" env:"DEFAULT_TARGET_CURRENCY" env-default:"GBP"`
	Coalesce      bool   `yaml:"coalesce" env:"RESOLVER_COALESCE" env-default:"true"`
}

// ProviderConfig is shared by both upstreams; the primary and fallback
// variables differ only by their PRIMARY_ / FALLBACK_ prefix.
type ProviderConfig struct {
	BaseURL    string        `yaml:"base_url" env:"BASE_URL"`
	APIKey     string        `yaml:"api_key" env:"API_KEY"`
	Timeout    time.Duration `yaml:"timeout" env:"TIMEOUT" env-default:"8s"`
	MaxRetries int           `yaml:"max_retries" env:"MAX_RETRIES" env-default:"1"`
	RateLimit  float64       `yaml:"rate_limit" env:"RATE_LIMIT" env-default:"10"`
	RateBurst  int           `yaml:"rate_burst" env:"RATE_BURST" env-default:"10"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
}

const (
	DefaultPrimaryBaseURL  = "https://api.frankfurter.dev"
	DefaultFallbackBaseURL = "https://api.exchangerate.host"
)

// LoadConfig reads the YAML file named by CONFIG_PATH, if set, and then
// applies environment variables on top.
func LoadConfig() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if cfg.Primary.BaseURL == "" {
		cfg.Primary.BaseURL = DefaultPrimaryBaseURL
	}
	if cfg.Fallback.BaseURL == "" {
		cfg.Fallback.BaseURL = DefaultFallbackBaseURL
	}
	cfg.Resolver.DefaultTarget = strings.ToUpper(strings.TrimSpace(cfg.Resolver.DefaultTarget))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port out of range: %d", c.Server.Port))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL))
	}
	if c.Cache.SweepInterval < 0 {
		errs = append(errs, fmt.Errorf("cache sweep interval must not be negative, got %s", c.Cache.SweepInterval))
	}
	if c.Resolver.DefaultTarget == "" {
		errs = append(errs, errors.New("default target currency must not be empty"))
	}
	errs = append(errs, c.Primary.validate("primary")...)
	errs = append(errs, c.Fallback.validate("fallback")...)

	return errors.Join(errs...)
}

func (p ProviderConfig) validate(name string) []error {
	var errs []error
	if p.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s timeout must be positive, got %s", name, p.Timeout))
	}
	if p.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%s max retries must not be negative, got %d", name, p.MaxRetries))
	}
	if p.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("%s rate limit must not be negative, got %v", name, p.RateLimit))
	}
	if p.RateLimit > 0 && p.RateBurst <= 0 {
		errs = append(errs, fmt.Errorf("%s rate burst must be positive when rate limiting, got %d", name, p.RateBurst))
	}
	return errs
}
