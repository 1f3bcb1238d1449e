package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadFrom(t *testing.T) {
	path := writeConfig(t, `
allowed_directories:
  - ~/projects
  - /srv/data
max_depth: 10
max_read_bytes: 1048576
read_concurrency: 4
version: "1.0"
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"~/projects", "/srv/data"}, cfg.AllowedDirectories)
	assert.Equal(t, 10, cfg.MaxDepth)
	assert.EqualValues(t, 1048576, cfg.MaxReadBytes)
	assert.Equal(t, 4, cfg.ReadConcurrency)
	assert.Equal(t, "1.0", cfg.Version)
}

func TestLoadFromAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "allowed_directories: [/tmp]\n")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, DefaultReadConcurrency, cfg.ReadConcurrency)
	assert.Equal(t, CurrentVersion, cfg.Version)
}

func TestLoadFromErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := LoadFrom(writeConfig(t, "storage_dir: /tmp\n"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadFrom(writeConfig(t, "allowed_directories: [unterminated\n"))
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		cfg, err := LoadFrom(writeConfig(t, ""))
		require.NoError(t, err)
		assert.Empty(t, cfg.AllowedDirectories)
	})
}

func TestLoadLayering(t *testing.T) {
	path := writeConfig(t, `
allowed_directories: [/from/file]
max_depth: 5
read_concurrency: 2
`)

	t.Setenv("FSGUARD_MAX_DEPTH", "7")
	t.Setenv("FSGUARD_ALLOWED_DIRS", "/env/one,/env/two")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"/env/one", "/env/two"}, cfg.AllowedDirectories)
	assert.Equal(t, 7, cfg.MaxDepth, "env overrides the file")
	assert.Equal(t, 2, cfg.ReadConcurrency, "unset env keeps the file value")
}

func TestLoadExplicitMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadWithoutFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("XDG_CONFIG_HOME is not consulted on Windows")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("FSGUARD_READ_CONCURRENCY", "3")
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, 3, cfg.ReadConcurrency)
}

func TestLoadInvalidEnv(t *testing.T) {
	path := writeConfig(t, "allowed_directories: [/tmp]\n")
	t.Setenv("FSGUARD_MAX_DEPTH", "deep")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"no directories", func(c *Config) { c.AllowedDirectories = nil }, true},
		{"empty directory", func(c *Config) { c.AllowedDirectories = []string{""} }, true},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, true},
		{"negative read limit", func(c *Config) { c.MaxReadBytes = -1 }, true},
		{"negative concurrency", func(c *Config) { c.ReadConcurrency = -2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.AllowedDirectories = []string{"/srv/data"}
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.AllowedDirectories = []string{"~/work"}
	require.NoError(t, cfg.SaveTo(path))

	assert.NotZero(t, cfg.InitTime, "first save records the init time")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.AllowedDirectories, loaded.AllowedDirectories)
	assert.Equal(t, cfg.InitTime, loaded.InitTime)
}

func TestCreateNewConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	got, err := CreateNewConfig(path, []string{"/srv/data"})
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = CreateNewConfig(path, []string{"/other"})
	assert.Error(t, err, "existing config must not be overwritten")

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/data"}, loaded.AllowedDirectories)

	_, err = CreateNewConfig(filepath.Join(t.TempDir(), "c.yaml"), nil)
	assert.Error(t, err, "empty allow-list is rejected")
}

func TestConfigPathExpandsHome(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("HOME is not consulted on Windows")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	path, err := CreateNewConfig("~/fsguard.yaml", []string{"/srv/data"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "fsguard.yaml"), path)

	found, exists := FindConfigFile("~/fsguard.yaml")
	assert.True(t, exists)
	assert.Equal(t, path, found)

	cfg, err := Load("~/fsguard.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/data"}, cfg.AllowedDirectories)
}
