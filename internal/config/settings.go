package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"diskmeta/internal/artifacts"
	"diskmeta/internal/storage"
)

// Backend names accepted in settings.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// DefaultOpTimeout bounds a single CLI command when op_timeout is unset.
const DefaultOpTimeout = 30 * time.Second

// SQLiteSettings configures the sqlite backend.
type SQLiteSettings struct {
	Path        string `yaml:"path"`
	BusyTimeout int    `yaml:"busy_timeout" validate:"gte=0"` // ms, 0 = use default
}

// BadgerSettings configures the badger backend.
type BadgerSettings struct {
	Dir      string `yaml:"dir"`
	InMemory bool   `yaml:"in_memory"`
}

// Settings is the content of <config_dir>/settings.yaml.
type Settings struct {
	Backend    string         `yaml:"backend" validate:"required,oneof=sqlite badger memory"`
	Collection string         `yaml:"collection" validate:"required,collection"`
	SQLite     SQLiteSettings `yaml:"sqlite"`
	Badger     BadgerSettings `yaml:"badger"`
	LogLevel   string         `yaml:"log_level" validate:"omitempty,oneof=off error warn info debug trace"`
	OpTimeout  time.Duration  `yaml:"op_timeout" validate:"gte=0"`
}

// ApplyDefaults fills zero-value fields with their defaults. Relative
// store locations are resolved against dir.
func (s *Settings) ApplyDefaults(dir string) {
	if s.Backend == "" {
		s.Backend = BackendSQLite
	}
	s.Backend = strings.ToLower(s.Backend)
	if s.Collection == "" {
		s.Collection = storage.DefaultCollection
	}
	s.LogLevel = strings.ToLower(s.LogLevel)
	if s.LogLevel == "" {
		s.LogLevel = "off"
	}
	if s.OpTimeout == 0 {
		s.OpTimeout = DefaultOpTimeout
	}

	if s.SQLite.Path == "" {
		s.SQLite.Path = DefaultSQLitePath(dir)
	} else if !filepath.IsAbs(s.SQLite.Path) {
		s.SQLite.Path = filepath.Join(dir, s.SQLite.Path)
	}
	if s.Badger.Dir == "" {
		s.Badger.Dir = DefaultBadgerDir(dir)
	} else if !filepath.IsAbs(s.Badger.Dir) {
		s.Badger.Dir = filepath.Join(dir, s.Badger.Dir)
	}
}

// ApplyEnv applies DISKMETA_BACKEND and DISKMETA_LOG_LEVEL.
func (s *Settings) ApplyEnv() {
	if v := os.Getenv(EnvBackend); v != "" {
		s.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = strings.ToLower(v)
	}
}

// defaultSettings parses the embedded settings artifact.
func defaultSettings() Settings {
	var s Settings
	if err := yaml.Unmarshal(artifacts.GlobalSettings, &s); err != nil {
		panic("failed to parse embedded settings: " + err.Error())
	}
	return s
}

// Load reads the settings of dir, falling back to the embedded defaults
// when the file doesn't exist. Environment overrides and defaults are
// applied and the result is validated.
func Load(dir string) (*Settings, error) {
	var settings Settings

	data, err := os.ReadFile(SettingsPath(dir))
	switch {
	case os.IsNotExist(err):
		settings = defaultSettings()
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", SettingsPath(dir), err)
		}
	}

	settings.ApplyEnv()
	settings.ApplyDefaults(dir)
	if err := Validate(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}
