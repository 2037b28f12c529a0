// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package clean

import (
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/tunegraph/tunegraph/internal/models"
)

// TextConfig controls text field cleaning.
type TextConfig struct {
	// CollapseWhitespace replaces runs of whitespace with a single space.
	CollapseWhitespace bool `koanf:"collapse_whitespace"`

	// MinLength and MaxLength bound a cleaned field's rune count. Fields
	// outside the bounds are treated as missing. Display names keep their
	// original casing.
	MinLength int `koanf:"min_length"`
	MaxLength int `koanf:"max_length"`
}

// DefaultTextConfig returns the default text cleaning configuration.
func DefaultTextConfig() TextConfig {
	return TextConfig{
		CollapseWhitespace: true,
		MinLength:          1,
		MaxLength:          500,
	}
}

// TextCleaner normalizes name, artist and album fields and deduplicates
// tags. Records left without a track name or artist are dropped since they
// cannot be resolved or embedded meaningfully.
type TextCleaner struct {
	cfg    TextConfig
	logger zerolog.Logger
}

// NewTextCleaner creates a TextCleaner. Zero length bounds fall back to the
// defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTextCleaner(cfg TextConfig, logger zerolog.Logger) *TextCleaner {
	def := DefaultTextConfig()
	if cfg.MinLength <= 0 {
		cfg.MinLength = def.MinLength
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = def.MaxLength
	}
	return &TextCleaner{
		cfg:    cfg,
		logger: logger.With().Str("component", "clean").Str("cleaner", "text").Logger(),
	}
}

// Name implements Cleaner.
func (c *TextCleaner) Name() string { return "text" }

// Clean implements Cleaner.
func (c *TextCleaner) Clean(tracks []models.Track) ([]models.Track, Stats) {
	stats := Stats{RecordsProcessed: len(tracks)}

	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		t.Name = c.cleanField(t.Name)
		t.Artist = c.cleanField(t.Artist)
		t.Album = c.cleanField(t.Album)
		t.Tags = c.cleanTags(t.Tags)

		if t.Name == "" || t.Artist == "" {
			stats.RecordsDropped++
			continue
		}
		out = append(out, t)
	}

	stats.RecordsModified = len(out)
	c.logger.Info().
		Int("processed", stats.RecordsProcessed).
		Int("kept", stats.RecordsModified).
		Int("dropped", stats.RecordsDropped).
		Msg("text cleaning complete")

	return out, stats
}

// cleanField trims, strips control characters, optionally collapses
// whitespace and enforces length bounds. An invalid field comes back empty.
func (c *TextCleaner) cleanField(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	s = strings.TrimSpace(s)
	if c.cfg.CollapseWhitespace {
		s = strings.Join(strings.Fields(s), " ")
	}

	if n := len([]rune(s)); n < c.cfg.MinLength || n > c.cfg.MaxLength {
		return ""
	}
	return s
}

// cleanTags normalizes tags and removes case-insensitive duplicates,
// keeping first occurrence order.
func (c *TextCleaner) cleanTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = c.cleanField(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
