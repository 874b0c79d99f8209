// Package config handles the XDG configuration directory, the config file
// and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "syno"

	// ConfigFile is the settings filename.
	ConfigFile = "config.yaml"

	// TokenFile is the stored session token filename.
	TokenFile = "token.json"

	// DefaultHost is the API base URL used when none is configured.
	DefaultHost = "http://127.0.0.1:5000"

	// DefaultTimeout bounds each API call.
	DefaultTimeout = 10 * time.Second
)

// Settings are the values read from config.yaml and the environment.
type Settings struct {
	// Host is the API base URL.
	Host string `yaml:"host,omitempty" env:"SYNO_HOST"`

	// Timeout bounds each API call.
	Timeout time.Duration `yaml:"timeout,omitempty" env:"SYNO_TIMEOUT"`

	// RateLimit caps outgoing requests per second. Zero disables the limit.
	RateLimit float64 `yaml:"rate_limit,omitempty" env:"SYNO_RATE_LIMIT"`

	// Group is the group used when a command gets no --group.
	Group string `yaml:"group,omitempty" env:"SYNO_GROUP"`
}

// Config holds configuration paths and settings.
type Config struct {
	Settings

	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config for the default or specified config directory.
// Settings are layered: defaults, then config.yaml, then SYNO_* variables.
// If configDir is empty, uses XDG_CONFIG_HOME/syno or $HOME/.config/syno.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir: dir,
		Settings: Settings{
			Host:    DefaultHost,
			Timeout: DefaultTimeout,
		},
	}
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	if err := env.Parse(&cfg.Settings); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("invalid rate_limit: %v", cfg.RateLimit)
	}
	return cfg, nil
}

func (c *Config) loadFile() error {
	return readSettings(c.ConfigPath(), &c.Settings)
}

func readSettings(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	return nil
}

// Save writes the current settings to config.yaml.
func (c *Config) Save() error {
	return c.write(&c.Settings)
}

// Update applies fn to the settings stored in config.yaml and writes them
// back. Environment and flag overrides are not persisted. fn is also
// applied to the in-memory settings.
func (c *Config) Update(fn func(*Settings)) error {
	var stored Settings
	if err := readSettings(c.ConfigPath(), &stored); err != nil {
		return err
	}
	fn(&stored)
	if err := c.write(&stored); err != nil {
		return err
	}
	fn(&c.Settings)
	return nil
}

func (c *Config) write(s *Settings) error {
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, 0600)
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// TokenPath returns the path to the stored session token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}
