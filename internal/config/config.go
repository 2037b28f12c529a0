// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

// Package config loads and validates the application configuration.
//
// Configuration is layered: built-in defaults first, then an optional YAML
// config file, then environment variables. Later layers override earlier
// ones. The resulting Config is immutable after Load and safe for concurrent
// reads.
package config

import (
	"time"

	"github.com/tunegraph/tunegraph/internal/clean"
	"github.com/tunegraph/tunegraph/internal/embed"
	"github.com/tunegraph/tunegraph/internal/features"
	"github.com/tunegraph/tunegraph/internal/fusion"
	"github.com/tunegraph/tunegraph/internal/recommend"
	"github.com/tunegraph/tunegraph/internal/store"
)

// Config holds all application configuration.
//
// Sections map one-to-one onto the components they configure; component
// packages own their Config types and this struct only composes them, so a
// component can be constructed from its slice of the tree without importing
// this package.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   store.Config     `koanf:"database"`
	StateStore StateStoreConfig `koanf:"state_store"`
	Embedder   EmbedderConfig   `koanf:"embedder"`
	Text       TextConfig       `koanf:"text"`
	Features   features.Config  `koanf:"features"`
	Fusion     fusion.Config    `koanf:"fusion"`
	Recommend  recommend.Config `koanf:"recommend"`
	Clean      CleanConfig      `koanf:"clean"`
	Pipeline   PipelineConfig   `koanf:"pipeline"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Timeout bounds request handling; also used for read and write
	// timeouts on the listener.
	Timeout time.Duration `koanf:"timeout"`

	// ShutdownTimeout bounds graceful shutdown on SIGTERM.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Environment is development or production. Production tightens
	// security validation.
	Environment string `koanf:"environment"`
}

// StateStoreConfig holds the embedded key-value store settings. The state
// store persists fitted projector parameters and pipeline run markers.
type StateStoreConfig struct {
	// Path is the on-disk directory. Empty means in-memory only.
	Path string `koanf:"path"`
}

// EmbedderConfig wraps the embedding client settings with an enable switch.
// With the embedder disabled the pipeline skips text embedding and the API
// rejects semantic search.
type EmbedderConfig struct {
	Enabled bool `koanf:"enabled"`

	Client embed.Config `koanf:"client"`
}

// TextConfig controls how track metadata is flattened into embedding text.
type TextConfig struct {
	// Fields are drawn in order; unknown names are skipped.
	Fields []string `koanf:"fields"`

	// IncludeTags appends the track's tag list to the text.
	IncludeTags bool `koanf:"include_tags"`
}

// CleanConfig groups the data-cleaning stages.
type CleanConfig struct {
	Numeric clean.NumericConfig `koanf:"numeric"`
	Text    clean.TextConfig    `koanf:"text"`
	Quality clean.QualityConfig `koanf:"quality"`
}

// PipelineConfig controls the offline enrichment pipeline.
type PipelineConfig struct {
	// RunOnStartup runs one pipeline pass before the API starts serving.
	RunOnStartup bool `koanf:"run_on_startup"`

	// Interval between scheduled runs. Zero or negative disables the
	// schedule; the pipeline then only runs on startup or via the admin
	// endpoint.
	Interval time.Duration `koanf:"interval"`

	// Timeout bounds a single pipeline run.
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig holds authentication and API protection settings.
type SecurityConfig struct {
	// AuthMode is jwt or none.
	AuthMode string `koanf:"auth_mode"`

	// JWTSecret signs access tokens. Required in jwt mode, minimum 32
	// bytes.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTimeout is the token lifetime.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// AdminUsername and AdminPasswordHash are the single admin credential
	// pair. The hash is bcrypt.
	AdminUsername     string `koanf:"admin_username"`
	AdminPasswordHash string `koanf:"admin_password_hash"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is trace, debug, info, warn, error, fatal or panic.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes file and line in log events.
	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// defaultConfig returns a Config with every default applied. Defaults are
// loaded first and then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Database: store.DefaultConfig(),
		StateStore: StateStoreConfig{
			Path: "data/state",
		},
		Embedder: EmbedderConfig{
			Enabled: false,
			Client:  embed.DefaultConfig(),
		},
		Text: TextConfig{
			Fields:      []string{"track_name", "artist_name", "album_name"},
			IncludeTags: true,
		},
		Features:  features.DefaultConfig(),
		Fusion:    fusion.DefaultConfig(),
		Recommend: recommend.DefaultConfig(),
		Clean: CleanConfig{
			Numeric: clean.DefaultNumericConfig(),
			Text:    clean.DefaultTextConfig(),
			Quality: clean.DefaultQualityConfig(),
		},
		Pipeline: PipelineConfig{
			RunOnStartup: false,
			Interval:     0,
			Timeout:      30 * time.Minute,
		},
		Security: SecurityConfig{
			AuthMode:        "none",
			SessionTimeout:  24 * time.Hour,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
