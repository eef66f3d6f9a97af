// Package config locates the configuration directory and loads the
// settings every diskmeta command runs with.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"diskmeta/internal/artifacts"
)

const (
	// EnvConfigDir overrides the configuration directory.
	EnvConfigDir = "DISKMETA_CONFIG_DIR"
	// EnvBackend overrides the backend from the settings file.
	EnvBackend = "DISKMETA_BACKEND"
	// EnvLogLevel overrides the log level from the settings file.
	EnvLogLevel = "DISKMETA_LOG_LEVEL"

	settingsFile = "settings.yaml"
	lockFile     = "diskmeta.lock"
	sqliteFile   = "diskmeta.db"
	badgerDir    = "badger"
)

// DefaultDir returns the configuration directory.
// Uses DISKMETA_CONFIG_DIR if set, otherwise defaults to ~/.diskmeta.
// Computed on every call so tests can isolate themselves via the env var.
func DefaultDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".diskmeta")
}

// SettingsPath returns the settings file inside dir.
func SettingsPath(dir string) string {
	return filepath.Join(dir, settingsFile)
}

// LockPath returns the lock file serializing mutating commands.
func LockPath(dir string) string {
	return filepath.Join(dir, lockFile)
}

// DefaultSQLitePath returns the database file used when sqlite.path is unset.
func DefaultSQLitePath(dir string) string {
	return filepath.Join(dir, sqliteFile)
}

// DefaultBadgerDir returns the database directory used when badger.dir is unset.
func DefaultBadgerDir(dir string) string {
	return filepath.Join(dir, badgerDir)
}

// EnsureDir creates dir if it doesn't exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0700)
}

// InitDir creates dir and writes the default settings file unless one
// already exists.
func InitDir(dir string) error {
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	path := SettingsPath(dir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, artifacts.GlobalSettings, 0600); err != nil {
			return fmt.Errorf("failed to create default settings: %w", err)
		}
	}
	return nil
}
