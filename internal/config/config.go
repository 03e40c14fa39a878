// Package config loads the application configuration from a YAML file,
// creating a defaulted file on first run.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the public API.
	Listen string `yaml:"listen" json:"listen"`

	// DBPath is the SQLite database file location.
	DBPath string `yaml:"db_path" json:"db_path"`

	// CatalogDir is the directory of CUE catalog sources used by the
	// compile/seed commands.
	CatalogDir string `yaml:"catalog_dir" json:"catalog_dir"`

	// SweepCron is a cron-style schedule string (e.g. "*/15 * * * *") for
	// the event status sweep and recurring rollover.
	SweepCron string `yaml:"sweep" json:"sweep"`

	// AdminToken guards the admin API endpoints. Empty disables the admin
	// surface entirely rather than leaving it open.
	AdminToken string `yaml:"admin_token" json:"-"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default returns an in-memory default configuration.
func Default() *Config {
	return &Config{
		Listen:     "127.0.0.1:8080",
		DBPath:     "hooray.db",
		CatalogDir: "catalog",
		SweepCron:  "*/15 * * * *",
		LogLevel:   "info",
	}
}

// Load reads the configuration at path. When the file does not exist, a
// default config is written there (0600 - it holds the admin token) and
// returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path with restrictive permissions.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Listen == "" {
		return errors.New("listen address must not be empty")
	}
	if c.DBPath == "" {
		return errors.New("db_path must not be empty")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
