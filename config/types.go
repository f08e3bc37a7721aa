package config

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Defaults DefaultsConfig `yaml:"defaults"`
	History  HistoryConfig  `yaml:"history"`
	Audit    AuditConfig    `yaml:"audit"`
}

// ServerConfig addresses the wrapper API instance
type ServerConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// DefaultsConfig holds per-session defaults applied before flags
type DefaultsConfig struct {
	ProjectURL string `yaml:"project_url,omitempty"`
}

// HistoryConfig defines persistent transcript settings
type HistoryConfig struct {
	Enabled  *bool  `yaml:"enabled"` // nil when the file omits it; unset means enabled
	DBPath   string `yaml:"db_path"`
	MaxTurns int    `yaml:"max_turns"` // In-memory turns kept per session
}

// AuditConfig defines request logging settings
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	LogPath string `yaml:"log_path"`
}
