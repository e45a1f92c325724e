package config

import (
	"fmt"
	"time"

	"github.com/expertteam/expert/internal/env"
)

// Integration test defaults.
const (
	DefaultTestPostgresImage    = "postgres:16-alpine"
	DefaultTestContainerTimeout = 3 * time.Minute
)

// TestConfig holds settings for integration tests. An empty DSN means the
// tests provision a disposable PostgreSQL container from PostgresImage.
type TestConfig struct {
	DSN              string        `env:"EXPERT_DB_DSN,file"`
	PostgresImage    string        `env:"EXPERT_TEST_POSTGRES_IMAGE"`
	ContainerTimeout time.Duration `env:"EXPERT_TEST_CONTAINER_TIMEOUT"`
}

// HasDatabase reports whether an external database was supplied.
func (c *TestConfig) HasDatabase() bool {
	return c.DSN != ""
}

// LoadTestConfig reads test settings from the environment and fills defaults.
func LoadTestConfig() (*TestConfig, error) {
	cfg := &TestConfig{}
	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load test config: %w", err)
	}

	if cfg.PostgresImage == "" {
		cfg.PostgresImage = DefaultTestPostgresImage
	}
	if cfg.ContainerTimeout <= 0 {
		cfg.ContainerTimeout = DefaultTestContainerTimeout
	}
	return cfg, nil
}
