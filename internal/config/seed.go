package config

import (
	"fmt"

	"github.com/expertteam/expert/internal/env"
)

// SeedConfig holds all configuration for the seed binary.
type SeedConfig struct {
	Database  DatabaseConfig
	Users     int `env:"EXPERT_SEED_USERS"`
	BatchSize int `env:"EXPERT_SEED_BATCH_SIZE"`
}

// LoadSeedConfig loads and validates seed configuration from environment.
func LoadSeedConfig() (*SeedConfig, error) {
	cfg := &SeedConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load seed config: %w", err)
	}

	return cfg, nil
}
