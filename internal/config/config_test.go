package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diskmeta/internal/artifacts"
	"diskmeta/internal/common"
	"diskmeta/internal/storage"
)

func TestDefaultDir(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "")
		dir := DefaultDir()
		assert.NotEmpty(t, dir)
		assert.True(t, strings.HasSuffix(dir, ".diskmeta"), "should end with .diskmeta")
	})

	t.Run("override with DISKMETA_CONFIG_DIR", func(t *testing.T) {
		t.Setenv(EnvConfigDir, "/tmp/test-diskmeta-config")
		assert.Equal(t, "/tmp/test-diskmeta-config", DefaultDir())
	})
}

func TestPathFunctions(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tests := []struct {
		name   string
		fn     func(string) string
		suffix string
	}{
		{"SettingsPath", SettingsPath, "settings.yaml"},
		{"LockPath", LockPath, "diskmeta.lock"},
		{"DefaultSQLitePath", DefaultSQLitePath, "diskmeta.db"},
		{"DefaultBadgerDir", DefaultBadgerDir, "badger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.fn(dir)
			assert.Equal(t, filepath.Join(dir, tt.suffix), path)
		})
	}
}

func TestInitDir(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "nested", "cfg")

	require.NoError(t, InitDir(dir))
	data, err := os.ReadFile(SettingsPath(dir))
	require.NoError(t, err)
	assert.Equal(t, artifacts.GlobalSettings, data)

	// An existing settings file is left alone
	require.NoError(t, os.WriteFile(SettingsPath(dir), []byte("backend: badger\n"), 0600))
	require.NoError(t, InitDir(dir))
	data, err = os.ReadFile(SettingsPath(dir))
	require.NoError(t, err)
	assert.Equal(t, "backend: badger\n", string(data))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvBackend, "")
	t.Setenv(EnvLogLevel, "")
	dir := t.TempDir()

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, s.Backend)
	assert.Equal(t, storage.DefaultCollection, s.Collection)
	assert.Equal(t, "off", s.LogLevel)
	assert.Equal(t, 30*time.Second, s.OpTimeout)
	assert.Equal(t, DefaultSQLitePath(dir), s.SQLite.Path)
	assert.Equal(t, DefaultBadgerDir(dir), s.Badger.Dir)
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv(EnvBackend, "")
	t.Setenv(EnvLogLevel, "")
	dir := t.TempDir()
	content := `backend: Badger
collection: nodes
sqlite:
  path: meta/other.db
  busy_timeout: 500
badger:
  dir: /var/lib/diskmeta
log_level: DEBUG
op_timeout: 2m
`
	require.NoError(t, os.WriteFile(SettingsPath(dir), []byte(content), 0600))

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, BackendBadger, s.Backend)
	assert.Equal(t, "nodes", s.Collection)
	assert.Equal(t, filepath.Join(dir, "meta", "other.db"), s.SQLite.Path)
	assert.Equal(t, 500, s.SQLite.BusyTimeout)
	assert.Equal(t, "/var/lib/diskmeta", s.Badger.Dir)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, 2*time.Minute, s.OpTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, InitDir(dir))
	t.Setenv(EnvBackend, "MEMORY")
	t.Setenv(EnvLogLevel, "trace")

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, s.Backend)
	assert.Equal(t, "trace", s.LogLevel)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv(EnvBackend, "")
	t.Setenv(EnvLogLevel, "")

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown backend", "backend: mongo\n", "Settings.Backend"},
		{"bad collection", "collection: \"1bad name\"\n", "Settings.Collection"},
		{"bad log level", "log_level: loud\n", "Settings.LogLevel"},
		{"negative busy timeout", "sqlite:\n  busy_timeout: -1\n", "Settings.SQLite.BusyTimeout"},
		{"not yaml", "backend: [\n", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(SettingsPath(dir), []byte(tt.content), 0600))
			_, err := Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  logrus.Level
		logs  bool
	}{
		{"trace", logrus.TraceLevel, true},
		{"DEBUG", logrus.DebugLevel, true},
		{"info", logrus.InfoLevel, true},
		{"warn", logrus.WarnLevel, true},
		{"error", logrus.ErrorLevel, true},
		{"off", logrus.InfoLevel, false},
		{"", logrus.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)
			assert.Equal(t, tt.want, logger.GetLevel())
			logger.Error("boom")
			assert.Equal(t, tt.logs, buf.Len() > 0)
		})
	}
}

func TestOpenStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	for _, backend := range []string{BackendSQLite, BackendBadger, BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			s := &Settings{Backend: backend}
			s.ApplyDefaults(filepath.Join(dir, backend))
			require.NoError(t, Validate(s))

			store, err := OpenStore(ctx, s, nil)
			require.NoError(t, err)
			defer store.Close()

			_, err = store.Save(ctx, storage.NewRoot())
			require.NoError(t, err)
			root, err := store.FindByPath(ctx, "/")
			require.NoError(t, err)
			require.NotNil(t, root)
		})
	}

	t.Run("unknown backend", func(t *testing.T) {
		_, err := OpenCollection(ctx, &Settings{Backend: "mongo"}, nil)
		assert.ErrorContains(t, err, "unknown backend")
	})

	t.Run("unreachable badger", func(t *testing.T) {
		file := filepath.Join(dir, "not-a-dir")
		require.NoError(t, os.WriteFile(file, nil, 0600))
		s := &Settings{Backend: BackendBadger, Badger: BadgerSettings{Dir: filepath.Join(file, "db")}}
		s.ApplyDefaults(dir)
		_, err := OpenStore(ctx, s, nil)
		assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	})
}
