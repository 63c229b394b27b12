// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/lib/schema"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for Chaperone.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// Homeserver configures the Matrix connection.
	Homeserver HomeserverConfig `yaml:"homeserver"`

	// Moderation configures the moderation core.
	Moderation ModerationConfig `yaml:"moderation"`

	// Per-environment overrides, applied after the base config loads.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Homeserver *HomeserverConfig `yaml:"homeserver,omitempty"`
	Moderation *ModerationConfig `yaml:"moderation,omitempty"`
}

// HomeserverConfig configures the Matrix connection.
type HomeserverConfig struct {
	// URL is the homeserver base URL, e.g. "https://matrix.example.org".
	URL string `yaml:"url"`

	// UserID is the fully-qualified Matrix user ID the session acts as.
	UserID string `yaml:"user_id"`

	// TokenPath is the file the access token is read from. "-" reads
	// the token from stdin.
	TokenPath string `yaml:"token_path"`
}

// ModerationConfig configures the moderation core.
type ModerationConfig struct {
	// Namespace prefixes the custom event and account-data types, e.g.
	// "chat.chaperone".
	Namespace string `yaml:"namespace"`

	// SweepInterval is how often the expiry sweeper passes over its
	// rooms, e.g. "5m".
	SweepInterval string `yaml:"sweep_interval"`

	// SweepRooms lists the room IDs the sweeper covers.
	SweepRooms []string `yaml:"sweep_rooms"`

	// LogQueryLimit caps audit log queries that pass no explicit
	// limit. Zero means unbounded.
	LogQueryLimit int `yaml:"log_query_limit"`
}

// Default returns the default configuration. These defaults are a base
// for the loaded file, not a substitute for it: the config file is
// required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Environment: Development,
		Homeserver: HomeserverConfig{
			TokenPath: filepath.Join(homeDir, ".config", "chaperone", "token"),
		},
		Moderation: ModerationConfig{
			Namespace:     string(schema.DefaultNamespace),
			SweepInterval: "5m",
			LogQueryLimit: 50,
		},
	}
}

// Load loads configuration from the CHAPERONE_CONFIG environment
// variable. There are no fallbacks: if the variable is not set, this
// fails, keeping configuration deterministic and auditable.
func Load() (*Config, error) {
	configPath := os.Getenv("CHAPERONE_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("CHAPERONE_CONFIG environment variable not set; " +
			"set it to the path of your chaperone.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path and applies
// environment-specific overrides and path variable expansion.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if overrides.Homeserver != nil {
		merge(&c.Homeserver.URL, overrides.Homeserver.URL)
		merge(&c.Homeserver.UserID, overrides.Homeserver.UserID)
		merge(&c.Homeserver.TokenPath, overrides.Homeserver.TokenPath)
	}
	if overrides.Moderation != nil {
		merge(&c.Moderation.Namespace, overrides.Moderation.Namespace)
		merge(&c.Moderation.SweepInterval, overrides.Moderation.SweepInterval)
		if len(overrides.Moderation.SweepRooms) > 0 {
			c.Moderation.SweepRooms = overrides.Moderation.SweepRooms
		}
		if overrides.Moderation.LogQueryLimit != 0 {
			c.Moderation.LogQueryLimit = overrides.Moderation.LogQueryLimit
		}
	}
}

func merge(target *string, value string) {
	if value != "" {
		*target = value
	}
}

var variablePattern = regexp.MustCompile(`\$\{(\w+)\}`)

// expandVariables expands ${HOME} and similar variables in paths. Only
// path fields are expanded; identifiers and URLs are taken literally.
func (c *Config) expandVariables() {
	homeDir, _ := os.UserHomeDir()
	vars := map[string]string{"HOME": homeDir}
	c.Homeserver.TokenPath = expandVars(c.Homeserver.TokenPath, vars)
}

func expandVars(s string, vars map[string]string) string {
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		name := variablePattern.FindStringSubmatch(match)[1]
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}

// Validate checks the configuration for problems that would fail at
// first use: a missing homeserver URL, a malformed user ID or room ID,
// an unparseable sweep interval.
func (c *Config) Validate() error {
	if c.Homeserver.URL == "" {
		return fmt.Errorf("homeserver.url is required")
	}
	if c.Homeserver.UserID != "" {
		if _, err := ref.ParseUserID(c.Homeserver.UserID); err != nil {
			return fmt.Errorf("homeserver.user_id: %w", err)
		}
	}
	if c.Moderation.Namespace == "" {
		return fmt.Errorf("moderation.namespace is required")
	}
	if _, err := c.SweepInterval(); err != nil {
		return err
	}
	for _, room := range c.Moderation.SweepRooms {
		if _, err := ref.ParseRoomID(room); err != nil {
			return fmt.Errorf("moderation.sweep_rooms: %w", err)
		}
	}
	return nil
}

// SweepInterval parses the configured sweep interval.
func (c *Config) SweepInterval() (time.Duration, error) {
	interval, err := time.ParseDuration(c.Moderation.SweepInterval)
	if err != nil {
		return 0, fmt.Errorf("moderation.sweep_interval: %w", err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("moderation.sweep_interval must be positive, got %s", interval)
	}
	return interval, nil
}

// Namespace returns the configured event-type namespace.
func (c *Config) Namespace() schema.Namespace {
	return schema.Namespace(c.Moderation.Namespace)
}

// SweepRooms parses the configured sweep room list.
func (c *Config) SweepRooms() ([]ref.RoomID, error) {
	rooms := make([]ref.RoomID, 0, len(c.Moderation.SweepRooms))
	for _, raw := range c.Moderation.SweepRooms {
		room, err := ref.ParseRoomID(raw)
		if err != nil {
			return nil, fmt.Errorf("moderation.sweep_rooms: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}
