// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// configSearchPaths lists where config files are searched when CONFIG_PATH
// is unset, in priority order. The first file found wins.
var configSearchPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tunegraph/config.yaml",
	"/etc/tunegraph/config.yml",
}

// Load builds the configuration from layered sources:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
//
// The result is validated before being returned; a misconfigured process
// fails at startup rather than at first use.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := locateConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	if err := normalizeListValues(k); err != nil {
		return nil, fmt.Errorf("normalizing list values: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// locateConfigFile returns the first readable config file, checking the
// CONFIG_PATH override before the default search paths. Empty means no file.
func locateConfigFile() string {
	candidates := configSearchPaths
	if override := os.Getenv("CONFIG_PATH"); override != "" {
		candidates = append([]string{override}, candidates...)
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// listValuePaths are config paths holding string lists. The environment can
// only supply them as comma-separated scalars.
var listValuePaths = []string{
	"security.cors_origins",
	"text.fields",
	"clean.quality.required_attributes",
}

// normalizeListValues splits comma-separated scalar values into string
// slices at the known list paths. YAML-sourced values arrive as slices and
// pass through untouched.
func normalizeListValues(k *koanf.Koanf) error {
	for _, path := range listValuePaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}

		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		if err := k.Set(path, items); err != nil {
			return fmt.Errorf("setting %s: %w", path, err)
		}
	}
	return nil
}

// envTransformFunc maps environment variable names onto config paths.
// Unmapped variables return empty and are dropped so arbitrary environment
// noise cannot reach the config tree.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - EMBEDDER_URL -> embedder.client.url
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"http_host":             "server.host",
		"http_port":             "server.port",
		"http_timeout":          "server.timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",
		"environment":           "server.environment",

		// Database
		"duckdb_path":       "database.path",
		"duckdb_max_memory": "database.max_memory",
		"duckdb_threads":    "database.threads",

		// State store
		"state_store_path": "state_store.path",

		// Embedder
		"embedder_enabled":          "embedder.enabled",
		"embedder_url":              "embedder.client.url",
		"embedder_model":            "embedder.client.model",
		"embedder_batch_size":       "embedder.client.batch_size",
		"embedder_timeout":          "embedder.client.timeout",
		"embedder_max_attempts":     "embedder.client.max_attempts",
		"embedder_initial_backoff":  "embedder.client.initial_backoff",
		"embedder_rate_per_second":  "embedder.client.requests_per_second",

		// Text preparation
		"text_fields":       "text.fields",
		"text_include_tags": "text.include_tags",

		// Feature projection
		"features_scaler":     "features.scaler",
		"features_target_dim": "features.target_dim",
		"features_use_pca":    "features.use_pca",

		// Fusion
		"fusion_text_weight":    "fusion.text_weight",
		"fusion_feature_weight": "fusion.feature_weight",
		"fusion_normalize":      "fusion.normalize",

		// Recommendation
		"recommend_embedding_type":     "recommend.embedding_type",
		"recommend_default_k":          "recommend.default_k",
		"recommend_max_k":              "recommend.max_k",
		"recommend_metric":             "recommend.similarity_metric",
		"recommend_exclude_artist":     "recommend.exclude_same_artist",
		"recommend_min_similarity":     "recommend.min_similarity_threshold",
		"recommend_fuzzy_matching":     "recommend.fuzzy_matching",
		"recommend_fuzzy_threshold":    "recommend.fuzzy_threshold",
		"recommend_snapshot_ttl":       "recommend.snapshot_ttl",

		// Cleaning
		"clean_fill_missing":         "clean.numeric.fill_missing_with_median",
		"clean_drop_outliers":        "clean.numeric.drop_outliers",
		"clean_outlier_threshold":    "clean.numeric.outlier_std_threshold",
		"clean_min_completeness":     "clean.quality.min_completeness",
		"clean_max_duplicate_rate":   "clean.quality.max_duplicate_rate",
		"clean_required_attributes":  "clean.quality.required_attributes",

		// Pipeline
		"pipeline_run_on_startup": "pipeline.run_on_startup",
		"pipeline_interval":       "pipeline.interval",
		"pipeline_timeout":        "pipeline.timeout",

		// Security
		"auth_mode":           "security.auth_mode",
		"jwt_secret":          "security.jwt_secret",
		"session_timeout":     "security.session_timeout",
		"admin_username":      "security.admin_username",
		"admin_password_hash": "security.admin_password_hash",
		"rate_limit_requests": "security.rate_limit_reqs",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",
		"cors_origins":        "security.cors_origins",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
