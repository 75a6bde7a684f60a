// Package config holds the worklight client configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/minseo-dev/worklight/internal/ics"
)

// DefaultAPIAddr is the backend used when no config file overrides it.
const DefaultAPIAddr = "http://localhost:8811"

// Config holds the client-side settings: where the backend lives, where the
// offline cache is kept and which ICS feeds to merge into the calendar.
type Config struct {
	// APIAddr is the base URL of the worklight backend.
	APIAddr string `yaml:"api_addr"`
	// DatabasePath is the SQLite offline cache location. Empty means
	// ~/.worklight/cache.db.
	DatabasePath string `yaml:"database_path"`
	// Calendars lists ICS feeds merged into the external-events source.
	Calendars []ics.Subscription `yaml:"calendars"`
}

// DefaultConfig returns the compiled-in defaults.
func DefaultConfig() *Config {
	return &Config{
		APIAddr: DefaultAPIAddr,
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFromHome loads configuration from ~/.worklight/config.yaml.
func LoadConfigFromHome() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(filepath.Join(home, ".worklight", "config.yaml"))
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.APIAddr == "" {
		return fmt.Errorf("api_addr must not be empty")
	}
	if _, err := url.Parse(c.APIAddr); err != nil {
		return fmt.Errorf("invalid api_addr %q: %w", c.APIAddr, err)
	}
	seen := make(map[string]bool, len(c.Calendars))
	for _, sub := range c.Calendars {
		if sub.Name == "" || sub.URL == "" {
			return fmt.Errorf("every calendar needs a name and a url")
		}
		if seen[sub.Name] {
			return fmt.Errorf("duplicate calendar name %q", sub.Name)
		}
		seen[sub.Name] = true
	}
	return nil
}

// CachePath resolves the SQLite cache location, defaulting into the home
// config directory.
func (c *Config) CachePath() (string, error) {
	if c.DatabasePath != "" {
		return c.DatabasePath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".worklight", "cache.db"), nil
}
