// Package config loads dorindex configuration from defaults, YAML files and
// DORINDEX_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/logging"
)

// Repository backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ProjectFile is the per-project configuration file name.
const ProjectFile = ".dorindex.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DORINDEX_"

// Config represents the complete dorindex configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Repository RepositoryConfig `yaml:"repository" json:"repository" envPrefix:"REPOSITORY_"`
	Cache      CacheConfig      `yaml:"cache" json:"cache" envPrefix:"CACHE_"`
	Index      IndexConfig      `yaml:"index" json:"index" envPrefix:"INDEX_"`
	Server     ServerConfig     `yaml:"server" json:"server" envPrefix:"SERVER_"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging" envPrefix:"LOGGING_"`
}

// RepositoryConfig selects where records are read from.
type RepositoryConfig struct {
	// Backend is "file" (a directory of JSON records plus YAML side files)
	// or "sqlite".
	Backend string `yaml:"backend" json:"backend" env:"BACKEND"`
	// Path is the repository directory for "file" or the database file for
	// "sqlite". Relative paths resolve against the project directory.
	Path string `yaml:"path" json:"path" env:"PATH"`
}

// CacheConfig bounds the related-object cache.
type CacheConfig struct {
	// MaxEntries per store; 0 means unbounded.
	MaxEntries int `yaml:"max_entries" json:"max_entries" env:"MAX_ENTRIES"`
}

// IndexConfig configures the document index written by `dorindex index`.
type IndexConfig struct {
	Path          string `yaml:"path" json:"path" env:"PATH"`
	Workers       int    `yaml:"workers" json:"workers" env:"WORKERS"`
	WatchDebounce string `yaml:"watch_debounce" json:"watch_debounce" env:"WATCH_DEBOUNCE"`
	// Retries applies to retryable repository failures only.
	Retries int `yaml:"retries" json:"retries" env:"RETRIES"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr     string `yaml:"addr" json:"addr" env:"ADDR"`
	LogLevel string `yaml:"log_level" json:"log_level" env:"LOG_LEVEL"`
}

// LoggingConfig configures file logging enabled by --debug.
type LoggingConfig struct {
	File      string `yaml:"file" json:"file" env:"FILE"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxFiles  int    `yaml:"max_files" json:"max_files" env:"MAX_FILES"`
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Repository: RepositoryConfig{
			Backend: BackendFile,
			Path:    ".",
		},
		Cache: CacheConfig{
			MaxEntries: 10000,
		},
		Index: IndexConfig{
			Path:          filepath.Join(".dorindex", "index"),
			Workers:       runtime.NumCPU(),
			WatchDebounce: "500ms",
			Retries:       2,
		},
		Server: ServerConfig{
			Addr:     "127.0.0.1:8765",
			LogLevel: "info",
		},
		Logging: LoggingConfig{
			File:      logging.DefaultLogPath(),
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// GetUserConfigPath returns $XDG_CONFIG_HOME/dorindex/config.yaml, falling
// back to ~/.config/dorindex/config.yaml.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dorindex", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "dorindex", "config.yaml")
	}
	return filepath.Join(home, ".config", "dorindex", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration for the project in dir. Precedence, lowest first:
//  1. Defaults
//  2. User config (~/.config/dorindex/config.yaml)
//  3. Project config (.dorindex.yaml in dir)
//  4. DORINDEX_* environment variables
//
// Relative repository and index paths are resolved against dir.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if path := filepath.Join(dir, ProjectFile); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError("invalid configuration", err)
	}

	cfg.resolvePaths(dir)
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.ConfigError("failed to read config file", err).WithDetail("path", path)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return errors.ConfigError("failed to parse config file", err).WithDetail("path", path)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith copies non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Repository.Backend != "" {
		c.Repository.Backend = other.Repository.Backend
	}
	if other.Repository.Path != "" {
		c.Repository.Path = other.Repository.Path
	}

	// max_entries: 0 cannot be told apart from unset; use the env var to
	// force an unbounded cache.
	if other.Cache.MaxEntries != 0 {
		c.Cache.MaxEntries = other.Cache.MaxEntries
	}

	if other.Index.Path != "" {
		c.Index.Path = other.Index.Path
	}
	if other.Index.Workers != 0 {
		c.Index.Workers = other.Index.Workers
	}
	if other.Index.WatchDebounce != "" {
		c.Index.WatchDebounce = other.Index.WatchDebounce
	}
	if other.Index.Retries != 0 {
		c.Index.Retries = other.Index.Retries
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}

	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}
}

// applyEnvOverrides sets fields from DORINDEX_* variables, e.g.
// DORINDEX_REPOSITORY_PATH or DORINDEX_CACHE_MAX_ENTRIES. Unset variables
// leave the field untouched.
func (c *Config) applyEnvOverrides() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.ConfigError("failed to parse environment overrides", err)
	}
	return nil
}

func (c *Config) resolvePaths(dir string) {
	if c.Repository.Path != "" && !filepath.IsAbs(c.Repository.Path) {
		c.Repository.Path = filepath.Join(dir, c.Repository.Path)
	}
	if c.Index.Path != "" && !filepath.IsAbs(c.Index.Path) {
		c.Index.Path = filepath.Join(dir, c.Index.Path)
	}
}

// Validate returns an error describing the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Repository.Backend) {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("repository.backend must be 'file' or 'sqlite', got %q", c.Repository.Backend)
	}
	if c.Repository.Path == "" {
		return fmt.Errorf("repository.path must be set")
	}

	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be non-negative, got %d", c.Cache.MaxEntries)
	}

	if c.Index.Workers < 1 {
		return fmt.Errorf("index.workers must be at least 1, got %d", c.Index.Workers)
	}
	if c.Index.Retries < 0 {
		return fmt.Errorf("index.retries must be non-negative, got %d", c.Index.Retries)
	}
	if _, err := time.ParseDuration(c.Index.WatchDebounce); err != nil {
		return fmt.Errorf("index.watch_debounce must be a duration, got %q", c.Index.WatchDebounce)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must be set")
	}
	if !logging.ValidLevel(c.Server.LogLevel) {
		return fmt.Errorf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel)
	}

	return nil
}

// WatchDebounce returns the parsed debounce window.
func (c *Config) WatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Index.WatchDebounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// LogSetup converts the logging section for logging.Setup.
func (c *Config) LogSetup(debug bool) logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Server.LogLevel
	if debug {
		cfg.Level = "debug"
		cfg.FilePath = c.Logging.File
		cfg.MaxSizeMB = c.Logging.MaxSizeMB
		cfg.MaxFiles = c.Logging.MaxFiles
	}
	return cfg
}

// WriteYAML writes the configuration to path, creating parent directories.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
