// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package clean

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tunegraph/tunegraph/internal/models"
)

// QualityConfig holds the thresholds a batch must meet.
type QualityConfig struct {
	// MinCompleteness is the minimum fraction of records that must carry
	// each required attribute.
	MinCompleteness float64 `koanf:"min_completeness"`

	// MaxDuplicateRate is the maximum tolerated fraction of duplicate
	// track IDs.
	MaxDuplicateRate float64 `koanf:"max_duplicate_rate"`

	// RequiredAttributes lists the numeric attributes checked for
	// completeness.
	RequiredAttributes []string `koanf:"required_attributes"`
}

// DefaultQualityConfig returns the default quality thresholds.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		MinCompleteness:  0.7,
		MaxDuplicateRate: 0.05,
	}
}

// Report is the outcome of a quality check. Passed is advisory: the pipeline
// logs failed checks and continues rather than aborting the run.
type Report struct {
	Passed bool     `json:"passed"`
	Issues []string `json:"issues,omitempty"`
}

// QualityChecker validates a cleaned batch against the configured
// thresholds without modifying it.
type QualityChecker struct {
	cfg    QualityConfig
	logger zerolog.Logger
}

// NewQualityChecker creates a QualityChecker. Zero thresholds fall back to
// the defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewQualityChecker(cfg QualityConfig, logger zerolog.Logger) *QualityChecker {
	def := DefaultQualityConfig()
	if cfg.MinCompleteness <= 0 {
		cfg.MinCompleteness = def.MinCompleteness
	}
	if cfg.MaxDuplicateRate <= 0 {
		cfg.MaxDuplicateRate = def.MaxDuplicateRate
	}
	return &QualityChecker{
		cfg:    cfg,
		logger: logger.With().Str("component", "clean").Str("cleaner", "quality").Logger(),
	}
}

// Check evaluates completeness of required attributes and the duplicate ID
// rate. An empty batch fails with a single issue.
func (q *QualityChecker) Check(tracks []models.Track) Report {
	if len(tracks) == 0 {
		return Report{Passed: false, Issues: []string{"batch is empty"}}
	}

	report := Report{Passed: true}
	total := float64(len(tracks))

	for _, attr := range q.cfg.RequiredAttributes {
		present := 0
		for i := range tracks {
			if _, ok := tracks[i].Attributes[attr]; ok {
				present++
			}
		}
		completeness := float64(present) / total
		if completeness < q.cfg.MinCompleteness {
			report.Passed = false
			report.Issues = append(report.Issues, fmt.Sprintf(
				"attribute %q completeness %.2f below threshold %.2f",
				attr, completeness, q.cfg.MinCompleteness))
		}
	}

	seen := make(map[string]struct{}, len(tracks))
	duplicates := 0
	for i := range tracks {
		if _, dup := seen[tracks[i].ID]; dup {
			duplicates++
			continue
		}
		seen[tracks[i].ID] = struct{}{}
	}
	if rate := float64(duplicates) / total; rate > q.cfg.MaxDuplicateRate {
		report.Passed = false
		report.Issues = append(report.Issues, fmt.Sprintf(
			"duplicate track ID rate %.2f above threshold %.2f",
			rate, q.cfg.MaxDuplicateRate))
	}

	if report.Passed {
		q.logger.Info().Int("tracks", len(tracks)).Msg("quality check passed")
	} else {
		q.logger.Warn().Strs("issues", report.Issues).Msg("quality check failed")
	}

	return report
}
