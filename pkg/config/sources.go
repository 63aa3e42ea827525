package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML configuration file, layers it over the defaults, applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	config := GetDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML from %s: %w", path, err)
		}
	}

	applyEnvironment(config)

	validator, err := NewValidator()
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Environment variables recognized as overrides. Kept deliberately small:
// the knobs an operator flips between runs without editing the config file.
const (
	envLogLevel    = "CURRICULA_LOG_LEVEL"
	envStorePath   = "CURRICULA_STORE_PATH"
	envCachePath   = "CURRICULA_CACHE_PATH"
	envWarmupSteps = "CURRICULA_WARMUP_STEPS"
)

func applyEnvironment(config *Config) {
	if v := os.Getenv(envLogLevel); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv(envStorePath); v != "" {
		config.Store.Path = v
	}
	if v := os.Getenv(envCachePath); v != "" {
		config.Store.CachePath = v
		config.Store.CacheType = "sqlite"
	}
	if v := os.Getenv(envWarmupSteps); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			config.Curriculum.WarmupSteps = n
		}
	}
}
