// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete configuration.
type Config struct {
	Resolve ResolveConfig `toml:"resolve"`
	Log     LogConfig     `toml:"log"`
}

// ResolveConfig controls how mentions are resolved and read.
type ResolveConfig struct {
	// Home overrides the user home directory (empty = os.UserHomeDir)
	Home string `toml:"home"`
	// BundledCollections is the lowest-precedence collection root
	BundledCollections string `toml:"bundled_collections"`
	// ExtraCollections are searched after user collections, before bundled
	ExtraCollections []string `toml:"extra_collections"`
	// MaxFileSize is the largest mentioned file read, in bytes
	MaxFileSize int64 `toml:"max_file_size"`
	// CacheEntries is the number of files kept in the read cache (0 = disabled)
	CacheEntries int `toml:"cache_entries"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error"
	Level string `toml:"level"`
	// JSON selects JSON output instead of console output
	JSON bool `toml:"json"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Resolve: ResolveConfig{
			MaxFileSize:  1024 * 1024, // 1MB
			CacheEntries: 256,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the ~/.amplifier directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".amplifier"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mentions.toml"), nil
}

// HomeDir returns the configured home directory or the user's home.
func (c *Config) HomeDir() (string, error) {
	if c.Resolve.Home != "" {
		return c.Resolve.Home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return home, nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads ~/.amplifier/mentions.toml if present, then applies environment
// overrides, defaults and validation.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}
	return finish(Default())
}

// LoadFromPath loads configuration from a specific TOML file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	return finish(cfg)
}

// Decode parses TOML config text. Used by tests and embedded defaults.
func Decode(data string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML: %w", err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides applies AMPLIFIER_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if home := os.Getenv("AMPLIFIER_HOME"); home != "" {
		c.Resolve.Home = home
	}
	if bundled := os.Getenv("AMPLIFIER_BUNDLED_COLLECTIONS"); bundled != "" {
		c.Resolve.BundledCollections = bundled
	}
	if level := os.Getenv("AMPLIFIER_LOG_LEVEL"); level != "" {
		c.Log.Level = strings.ToLower(level)
	}
}

// SetDefaults fills zero values that must not stay zero.
func (c *Config) SetDefaults() {
	defaults := Default()
	if c.Resolve.MaxFileSize == 0 {
		c.Resolve.MaxFileSize = defaults.Resolve.MaxFileSize
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []error

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	if c.Resolve.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("resolve.max_file_size must not be negative"))
	}
	if c.Resolve.CacheEntries < 0 {
		errs = append(errs, fmt.Errorf("resolve.cache_entries must not be negative"))
	}
	if c.Resolve.Home != "" && !filepath.IsAbs(c.Resolve.Home) {
		errs = append(errs, fmt.Errorf("resolve.home %q must be absolute", c.Resolve.Home))
	}
	for _, p := range c.Resolve.ExtraCollections {
		if !filepath.IsAbs(p) {
			errs = append(errs, fmt.Errorf("resolve.extra_collections entry %q must be absolute", p))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
