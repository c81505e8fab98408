// Package config loads kbctl configuration from a YAML file and the
// environment. Config is a nil-safe wrapper around viper so callers never
// have to guard against a missing section.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend names accepted by the "backend" setting.
const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

// Settings is the typed view of the configuration kbctl actually uses.
// The backend binding is read once at startup and never changes within a
// process.
type Settings struct {
	// Backend selects which repository implementation serves the process:
	// "remote" (default) or "local".
	Backend string `mapstructure:"backend"`

	// BaseURL is the remote API root, e.g. "http://localhost:8000".
	BaseURL string `mapstructure:"base_url"`

	// DataDir holds the local database when the local backend is active.
	DataDir string `mapstructure:"data_dir"`

	// PageSize is the table page size in the TUI.
	PageSize int `mapstructure:"page_size"`

	// LogFile receives structured logs while the TUI owns the terminal.
	// Empty disables logging in TUI mode.
	LogFile string `mapstructure:"log_file"`
}

// Config wraps a viper instance. A nil inner viper yields zero values
// rather than panics.
type Config struct {
	v *viper.Viper
}

// New wraps an existing viper instance.
func New(v *viper.Viper) *Config {
	return &Config{v: v}
}

// Load reads configuration with defaults applied, then the config file
// (explicit path, else kbctl.yaml in the working directory or the user
// config dir), then KBCTL_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("backend", BackendRemote)
	v.SetDefault("base_url", "http://localhost:8000")
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("page_size", 10)
	v.SetDefault("log_file", "")

	v.SetEnvPrefix("KBCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		return New(v), nil
	}

	v.SetConfigName("kbctl")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "kbctl"))
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing file just means defaults + environment.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return New(v), nil
}

// Settings unmarshals and validates the typed settings.
func (c *Config) Settings() (*Settings, error) {
	var s Settings
	if err := c.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	switch s.Backend {
	case "", BackendRemote:
		s.Backend = BackendRemote
	case BackendLocal:
	default:
		return nil, fmt.Errorf("unknown backend %q (want %q or %q)", s.Backend, BackendRemote, BackendLocal)
	}
	if s.PageSize <= 0 {
		s.PageSize = 10
	}
	if s.DataDir == "" {
		s.DataDir = defaultDataDir()
	}
	return &s, nil
}

// Set overrides a single key (used by CLI flags, which beat file and env).
func (c *Config) Set(key string, value any) {
	if c.v == nil {
		return
	}
	c.v.Set(key, value)
}

// GetString returns the string value for key, or "" when unset.
func (c *Config) GetString(key string) string {
	if c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

// GetInt returns the int value for key, or 0 when unset.
func (c *Config) GetInt(key string) int {
	if c.v == nil {
		return 0
	}
	return c.v.GetInt(key)
}

// GetBool returns the bool value for key, or false when unset.
func (c *Config) GetBool(key string) bool {
	if c.v == nil {
		return false
	}
	return c.v.GetBool(key)
}

// GetDuration returns the duration value for key, or 0 when unset.
func (c *Config) GetDuration(key string) time.Duration {
	if c.v == nil {
		return 0
	}
	return c.v.GetDuration(key)
}

// IsSet reports whether key has any value (default, file, env, or Set).
func (c *Config) IsSet(key string) bool {
	if c.v == nil {
		return false
	}
	return c.v.IsSet(key)
}

// Sub returns the subsection under key. Always non-nil; a missing section
// yields a Config that returns zero values.
func (c *Config) Sub(key string) *Config {
	if c.v == nil {
		return New(nil)
	}
	return New(c.v.Sub(key))
}

// Unmarshal decodes the configuration into target.
func (c *Config) Unmarshal(target any) error {
	if c.v == nil {
		return nil
	}
	return c.v.Unmarshal(target)
}

// defaultDataDir is the per-user location for the local catalog database.
func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "kbctl")
	}
	return "."
}
