// Package config holds ragdesk configuration: a YAML file in the state
// directory with defaults and environment overrides layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all ragdesk configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	History HistoryConfig `yaml:"history"`
}

// ServerConfig points at the RAG study service.
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// LoggingConfig configures the category file logger. Read again by
// internal/logging with its own minimal struct to avoid an import cycle.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
}

// HistoryConfig configures the local assessment history.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled"`
	Limit   int  `yaml:"limit"` // entries shown on the Assess screen
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:8000",
			Timeout: "60s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		History: HistoryConfig{
			Enabled: true,
			Limit:   10,
		},
	}
}

// StateDir resolves the ragdesk state directory: $RAGDESK_HOME when set,
// otherwise ~/.ragdesk.
func StateDir() (string, error) {
	if dir := os.Getenv("RAGDESK_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ragdesk"), nil
}

// Load loads configuration from a YAML file. A missing file returns the
// defaults; environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("RAGDESK_SERVER_URL"); url != "" {
		c.Server.BaseURL = url
	}
	if timeout := os.Getenv("RAGDESK_TIMEOUT"); timeout != "" {
		c.Server.Timeout = timeout
	}
}

// ServerTimeout returns the request timeout as a duration.
func (c *Config) ServerTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}
