package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration. Crypto parameters and the
// auto-lock, lockout and clipboard timings are fixed constants of the
// engine and deliberately absent here.
type Config struct {
	// Vault file location
	Vault VaultConfig `json:"vault" mapstructure:"vault"`

	// Logging
	Log LogConfig `json:"log" mapstructure:"log"`
}

// VaultConfig for the persisted vault file.
type VaultConfig struct {
	// Path to the encrypted vault file.
	Path string `json:"path" mapstructure:"path"`
	// BackupDir is the default destination directory for exports.
	BackupDir string `json:"backup_dir" mapstructure:"backup_dir"`
}

// LogConfig for logging behavior.
type LogConfig struct {
	Level  string `json:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `json:"format" mapstructure:"format"` // text, json
	File   string `json:"file" mapstructure:"file"`     // empty = stderr
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() *Config {
	dataDir := ".lockbox"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".lockbox")
	}

	return &Config{
		Vault: VaultConfig{
			Path:      filepath.Join(dataDir, "vault.dat"),
			BackupDir: filepath.Join(dataDir, "backups"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration for usability.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Vault.Path) == "" {
		return fmt.Errorf("vault path is required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %q", c.Log.Format)
	}

	return nil
}
