package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from the environment. A .env file in the working
// directory is honored first so that local runs and the deployed sweep share
// the same variable names.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if cfg.Storage.UploadBatchSize <= 0 {
		cfg.Storage.UploadBatchSize = 100
	}
	if cfg.Storage.UploadConcurrency <= 0 {
		cfg.Storage.UploadConcurrency = 1
	}
	return &cfg, nil
}
