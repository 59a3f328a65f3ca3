// Package config loads the matchmaker server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/matchmaker/internal/model"
)

// Storage backends
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Config holds everything the server needs at startup
type Config struct {
	StorageType     string        `env:"MATCHMAKER_STORAGE_TYPE"     envDefault:"memory"`
	RedisURL        string        `env:"MATCHMAKER_REDIS_URL"`
	SQLitePath      string        `env:"MATCHMAKER_SQLITE_PATH"`
	HTTPPort        int           `env:"MATCHMAKER_HTTP_PORT"        envDefault:"8080"`
	PairingInterval time.Duration `env:"MATCHMAKER_PAIRING_INTERVAL" envDefault:"1s"`
	LockTTL         time.Duration `env:"MATCHMAKER_LOCK_TTL"         envDefault:"5s"`
	LogLevel        slog.Level    `env:"MATCHMAKER_LOG_LEVEL"        envDefault:"INFO"`
	Modes           []string      `env:"MATCHMAKER_MODES"            envDefault:"registered,guest" envSeparator:","`
}

// ParseEnv loads configuration from environment variables and validates it
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the combinations env tags cannot express
func (c Config) Validate() error {
	switch c.StorageType {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("MATCHMAKER_REDIS_URL required when storage type is %q", StorageTypeRedis)
		}
	default:
		return fmt.Errorf("invalid storage type %q: must be %q or %q", c.StorageType, StorageTypeMemory, StorageTypeRedis)
	}
	if c.PairingInterval <= 0 {
		return fmt.Errorf("pairing interval must be positive, got %s", c.PairingInterval)
	}
	if c.LockTTL <= 0 {
		return fmt.Errorf("lock TTL must be positive, got %s", c.LockTTL)
	}
	if _, err := c.ParsedModes(); err != nil {
		return err
	}
	return nil
}

// ParsedModes returns the queues the scheduler drains, in configured order
func (c Config) ParsedModes() ([]model.Mode, error) {
	if len(c.Modes) == 0 {
		return nil, errors.New("at least one mode is required")
	}
	modes := make([]model.Mode, 0, len(c.Modes))
	for _, raw := range c.Modes {
		mode, err := model.ParseMode(raw)
		if err != nil {
			return nil, err
		}
		modes = append(modes, mode)
	}
	return modes, nil
}
