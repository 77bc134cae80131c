package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads configuration from an optional YAML file and environment
// variables. Priority: ENV > YAML > defaults (via env-default tags).
// The file path comes from LUMA_CONFIG_PATH; when unset, a missing
// ./luma.yaml is not an error.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("LUMA_CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./luma.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}
