// Copyright (c) 2025 Finpanel Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for finpanel.
//
// Configuration is read from ~/.finpanel/config.toml with built-in defaults
// and FINPANEL_* environment variable overrides.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/finpanel/finpanel-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete finpanel configuration.
type Config struct {
	// Server configuration
	Server ServerConfig `toml:"server"`

	// Session configuration
	Session SessionConfig `toml:"session"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// ServerConfig contains platform API settings.
type ServerConfig struct {
	// BaseURL is the base URL of the platform API (e.g. http://localhost:8085).
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
	// RateLimitPerSec is the client-side request rate limit (0 disables).
	RateLimitPerSec float64 `toml:"rate_limit_per_sec"`
}

// SessionConfig contains session persistence and expiry-check settings.
type SessionConfig struct {
	// StorePath is the path of the persisted session record.
	// Empty means ~/.finpanel/session.json.
	StorePath string `toml:"store_path"`
	// RecheckSecs is the protected-view expiry re-check interval in seconds.
	RecheckSecs int `toml:"recheck_secs"`
	// AuditPath is the path of the local session audit database.
	// Empty means ~/.finpanel/audit.db.
	AuditPath string `toml:"audit_path"`
	// CallbackAddr is the loopback address the SSO callback listener binds to.
	CallbackAddr string `toml:"callback_addr"`
}

// UIConfig contains UI settings.
type UIConfig struct {
	// Theme is the UI theme: "dark" or "light".
	Theme string `toml:"theme"`
	// CompactMode uses a more compact table layout.
	CompactMode bool `toml:"compact_mode"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:         "http://localhost:8085",
			TimeoutSecs:     30,
			RateLimitPerSec: 20,
		},
		Session: SessionConfig{
			StorePath:    "",
			RecheckSecs:  60,
			AuditPath:    "",
			CallbackAddr: "127.0.0.1:8757",
		},
		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the finpanel configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".finpanel"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// SessionStorePath resolves the session record path, falling back to the
// default under the config directory.
func (c *Config) SessionStorePath() (string, error) {
	if c.Session.StorePath != "" {
		return c.Session.StorePath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// AuditDBPath resolves the audit database path, falling back to the default
// under the config directory.
func (c *Config) AuditDBPath() (string, error) {
	if c.Session.AuditPath != "" {
		return c.Session.AuditPath, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "audit.db"), nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration with the following precedence:
//  1. ~/.finpanel/config.toml
//  2. Built-in defaults
//
// Environment variable overrides are applied after loading.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := LoadFrom(cfg, path); err != nil {
				return nil, err
			}
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom merges the TOML file at path into cfg.
func LoadFrom(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides applies FINPANEL_* environment variables over the loaded
// configuration. Invalid numeric values are ignored in favor of the file or
// default value.
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("FINPANEL_API_URL"); base != "" {
		c.Server.BaseURL = base
	}
	if timeout := os.Getenv("FINPANEL_TIMEOUT_SECS"); timeout != "" {
		if v, err := strconv.Atoi(timeout); err == nil {
			c.Server.TimeoutSecs = v
		}
	}
	if recheck := os.Getenv("FINPANEL_RECHECK_SECS"); recheck != "" {
		if v, err := strconv.Atoi(recheck); err == nil {
			c.Session.RecheckSecs = v
		}
	}
	if store := os.Getenv("FINPANEL_SESSION_PATH"); store != "" {
		c.Session.StorePath = store
	}
	if theme := os.Getenv("FINPANEL_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.base_url %q is not a valid URL", c.Server.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.base_url scheme must be http or https, got %q", u.Scheme)
	}
	if c.Server.TimeoutSecs <= 0 {
		return fmt.Errorf("server.timeout_secs must be positive, got %d", c.Server.TimeoutSecs)
	}
	if c.Session.RecheckSecs <= 0 {
		return fmt.Errorf("session.recheck_secs must be positive, got %d", c.Session.RecheckSecs)
	}
	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("ui.theme must be dark or light, got %q", c.UI.Theme)
	}
	return nil
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// RecheckInterval returns the protected-view re-check interval as a duration.
func (c *Config) RecheckInterval() time.Duration {
	return time.Duration(c.Session.RecheckSecs) * time.Second
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the configuration to ~/.finpanel/config.toml atomically.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration to the given path atomically.
func SaveTo(cfg *Config, path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
