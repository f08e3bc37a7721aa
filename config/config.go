package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Built-in defaults, used when neither file nor environment says otherwise.
const (
	DefaultBaseURL        = "http://localhost:8000"
	DefaultTimeoutSeconds = 180
	DefaultMaxTurns       = 20
)

var globalConfig *Config

// Load reads the configuration file
func Load(configPath string) (*Config, error) {
	// If path is empty, use default
	if configPath == "" {
		configPath = DefaultPath()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	globalConfig = &cfg
	return &cfg, nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		// Return default config if not loaded
		cfg := &Config{}
		applyDefaults(cfg)
		applyEnvOverrides(cfg)
		return cfg
	}
	return globalConfig
}

// DefaultPath returns the default config file location, ~/.aiwrap/config.yaml
func DefaultPath() string {
	return filepath.Join(baseDir(), "config.yaml")
}

// Timeout returns the configured request deadline as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// HistoryEnabled reports whether the transcript store should run.
// An unset value counts as enabled.
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

func applyDefaults(cfg *Config) {
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = DefaultBaseURL
	}
	if cfg.Server.TimeoutSeconds <= 0 {
		cfg.Server.TimeoutSeconds = DefaultTimeoutSeconds
	}

	if cfg.History.Enabled == nil {
		enabled := true
		cfg.History.Enabled = &enabled
	}
	if cfg.History.DBPath == "" {
		cfg.History.DBPath = filepath.Join(baseDir(), "history.db")
	} else {
		// Expand ~ to user home directory if present
		cfg.History.DBPath = expandHomePath(cfg.History.DBPath)
	}
	if cfg.History.MaxTurns <= 0 {
		cfg.History.MaxTurns = DefaultMaxTurns
	}

	if cfg.Audit.LogPath == "" {
		cfg.Audit.LogPath = filepath.Join(baseDir(), "requests.log")
	} else {
		cfg.Audit.LogPath = expandHomePath(cfg.Audit.LogPath)
	}
}

// applyEnvOverrides lets the environment take precedence over the file:
// AI_WRAPPER_URL, AI_WRAPPER_TIMEOUT (seconds), AI_WRAPPER_PROJECT.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AI_WRAPPER_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("AI_WRAPPER_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Server.TimeoutSeconds = secs
		}
	}
	if v := os.Getenv("AI_WRAPPER_PROJECT"); v != "" {
		cfg.Defaults.ProjectURL = v
	}
}

// baseDir returns the directory holding config and data files
func baseDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, keep everything local
		return ".aiwrap"
	}
	return filepath.Join(homeDir, ".aiwrap")
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if len(path) == 0 {
		return path
	}

	// Handle ~ at the beginning of the path
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path // Return unchanged if we can't get home dir
		}

		if len(path) == 1 {
			return homeDir
		}

		// Handle ~/something
		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}
	}

	return path
}
