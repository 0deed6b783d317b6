package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultTarget is the square size offered when none is given.
const DefaultTarget = 2000

type Config struct {
	Target      int    `yaml:"target"`
	Background  string `yaml:"background"`
	Workers     int    `yaml:"workers"`
	MaxBytes    int64  `yaml:"max_bytes"`
	JournalPath string `yaml:"journal"`
	ServerAddr  string `yaml:"server_addr"`
	RateLimit   int    `yaml:"rate_limit"`
}

// Load builds the configuration from the environment, falling back to
// defaults for unset variables.
func Load() *Config {
	return &Config{
		Target:      getEnvInt("SQUAREFIT_TARGET", DefaultTarget),
		Background:  getEnv("SQUAREFIT_BACKGROUND", "#ffffff"),
		Workers:     getEnvInt("SQUAREFIT_WORKERS", 1),
		MaxBytes:    int64(getEnvInt("SQUAREFIT_MAX_BYTES", 200<<20)),
		JournalPath: getEnv("SQUAREFIT_JOURNAL", ""),
		ServerAddr:  getEnv("SERVER_ADDR", ":8080"),
		RateLimit:   getEnvInt("SQUAREFIT_RATE_LIMIT", 30),
	}
}

// LoadFile starts from Load and overlays the YAML file at path. A missing
// file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields that have a restricted range.
func (c *Config) Validate() error {
	if err := ValidateTarget(c.Target); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := ParseColor(c.Background); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
