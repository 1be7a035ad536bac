// Package config loads optional run defaults from a JSON file. Command-line
// flags always win over file values.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config represents run defaults for the ripper
type Config struct {
	Directory     string `json:"directory,omitempty"`
	Depth         int    `json:"depth,omitempty"`
	Workers       int    `json:"workers,omitempty"`
	RetryAttempts int    `json:"retry_attempts,omitempty"`
	LFS           bool   `json:"lfs"`
	Sync          bool   `json:"sync"`
}

// DefaultConfig provides default configuration values
func DefaultConfig() *Config {
	return &Config{
		Workers:       32,
		RetryAttempts: 3,
	}
}

// LoadConfig loads configuration from a file. The path is always given
// explicitly, so a missing file is an error rather than a silent fallback
// to defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.MergeDefaults()
	return cfg, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeDefaults merges default values for unset fields
func (c *Config) MergeDefaults() {
	if c.Workers == 0 {
		c.Workers = DefaultConfig().Workers
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = DefaultConfig().RetryAttempts
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}
	if c.Depth < 0 {
		return fmt.Errorf("depth cannot be negative")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry attempts must be at least 1")
	}
	return nil
}
