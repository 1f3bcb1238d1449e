package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"fsguard/internal/logging"
	"fsguard/pkg/fileops"
)

const APP_NAME = "fsguard" // application name used for config directory

// EnvPrefix prefixes every environment override, e.g. FSGUARD_MAX_DEPTH.
const EnvPrefix = "FSGUARD"

const (
	DefaultMaxDepth        = 64
	DefaultReadConcurrency = 8
	CurrentVersion         = "1.0"
)

// Config holds user configuration for fsguard.
type Config struct {
	// AllowedDirectories is the ordered allow-list. Entries may start with "~".
	AllowedDirectories []string `yaml:"allowed_directories" envconfig:"ALLOWED_DIRS"`
	// MaxDepth bounds directory_tree and search_files walks.
	MaxDepth int `yaml:"max_depth" envconfig:"MAX_DEPTH"`
	// MaxReadBytes rejects larger files in read operations. Zero disables it.
	MaxReadBytes int64 `yaml:"max_read_bytes" envconfig:"MAX_READ_BYTES"`
	// ReadConcurrency bounds parallel reads in read_multiple_files.
	ReadConcurrency int    `yaml:"read_concurrency" envconfig:"READ_CONCURRENCY"`
	Version         string `yaml:"version" ignored:"true"`   // Track config version
	InitTime        int64  `yaml:"init_time" ignored:"true"` // Unix timestamp of first save
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() string {
	configPath := filepath.Join(xdg.ConfigHome, APP_NAME, "config.yaml")
	logging.Debug("Determined config path", "path", configPath)
	return configPath
}

// FindConfigFile returns the path to the config file, and whether it exists.
// An explicit path takes precedence over the standard location; a leading
// "~" in it is expanded.
func FindConfigFile(explicit string) (string, bool) {
	path := fileops.ExpandPath(explicit)
	if path == "" {
		path = ConfigPath()
	}

	if _, err := os.Stat(path); err == nil {
		logging.Debug("Config found", "path", path)
		return path, true
	}
	return path, false
}

// Load builds the effective configuration: defaults, then the config file if
// present, then FSGUARD_* environment overrides. An explicitly named file
// must exist; a missing file at the standard location is not an error.
// The result is not validated, so callers may still override fields.
func Load(explicit string) (*Config, error) {
	defer logging.LogPerformance("config.Load", time.Now())

	path, exists := FindConfigFile(explicit)

	cfg := DefaultConfig()
	switch {
	case exists:
		loaded, err := LoadFrom(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	case explicit != "":
		return nil, fmt.Errorf("config file not found: %s", explicit)
	default:
		logging.Debug("No config file, using defaults", "path", path)
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadFrom loads config from a specific path
func LoadFrom(path string) (*Config, error) {
	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// ApplyEnv overrides fields from FSGUARD_* environment variables. Variables
// that are unset leave the current value untouched.
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxDepth:        DefaultMaxDepth,
		ReadConcurrency: DefaultReadConcurrency,
		Version:         CurrentVersion,
	}
}

func (c *Config) applyDefaults() {
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.ReadConcurrency == 0 {
		c.ReadConcurrency = DefaultReadConcurrency
	}
	if c.Version == "" {
		c.Version = CurrentVersion
	}
}

// Validate checks the configuration without touching the filesystem. Whether
// each directory exists is checked when the path guard is built.
func (c *Config) Validate() error {
	if len(c.AllowedDirectories) == 0 {
		return fmt.Errorf("no allowed directories configured")
	}
	for i, dir := range c.AllowedDirectories {
		if dir == "" {
			return fmt.Errorf("allowed directory %d is empty", i)
		}
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative: %d", c.MaxDepth)
	}
	if c.MaxReadBytes < 0 {
		return fmt.Errorf("max_read_bytes must not be negative: %d", c.MaxReadBytes)
	}
	if c.ReadConcurrency < 0 {
		return fmt.Errorf("read_concurrency must not be negative: %d", c.ReadConcurrency)
	}
	return nil
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Set init time if this is the first save
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600) for security
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	logging.Info("Configuration saved", "path", path)
	return nil
}

// CreateNewConfig writes a fresh config allowing dirs to path, or to the
// standard location when path is empty. An existing file is left alone.
func CreateNewConfig(path string, dirs []string) (string, error) {
	path = fileops.ExpandPath(path)
	if path == "" {
		path = ConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file already exists: %s: %w", path, fs.ErrExist)
	}

	cfg := DefaultConfig()
	cfg.AllowedDirectories = dirs
	if err := cfg.Validate(); err != nil {
		return path, err
	}

	if err := cfg.SaveTo(path); err != nil {
		return path, fmt.Errorf("failed to save configuration: %w", err)
	}
	return path, nil
}
