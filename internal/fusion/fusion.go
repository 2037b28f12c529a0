// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

// Package fusion combines per-track text and feature embeddings into a single
// combined vector by weighted concatenation.
//
// The combined layout is always text components first, then feature
// components, so combined dimension = text dimension + feature dimension.
// A track missing either input embedding has no combined embedding; the gap
// propagates rather than being zero-filled.
package fusion

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tunegraph/tunegraph/internal/vectormath"
)

// Config controls how text and feature embeddings are fused.
type Config struct {
	// TextWeight scales the text embedding half. Must be in [0, 1].
	TextWeight float64 `koanf:"text_weight"`

	// FeatureWeight scales the feature embedding half. Must be in [0, 1].
	// The weights do not need to sum to 1.
	FeatureWeight float64 `koanf:"feature_weight"`

	// Normalize applies L2 normalization to each input before weighting and
	// to the concatenated result afterwards.
	Normalize bool `koanf:"normalize"`
}

// DefaultConfig returns the default fusion configuration: text-dominant
// weighting with normalization enabled.
func DefaultConfig() Config {
	return Config{
		TextWeight:    0.7,
		FeatureWeight: 0.3,
		Normalize:     true,
	}
}

// Combiner fuses embedding pairs under a fixed configuration.
// It is stateless and safe for concurrent use.
type Combiner struct {
	cfg    Config
	logger zerolog.Logger
}

// NewCombiner creates a Combiner. Weights outside [0, 1] are a
// construction-time error.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCombiner(cfg Config, logger zerolog.Logger) (*Combiner, error) {
	if cfg.TextWeight < 0 || cfg.TextWeight > 1 {
		return nil, fmt.Errorf("text weight must be in [0, 1], got %g", cfg.TextWeight)
	}
	if cfg.FeatureWeight < 0 || cfg.FeatureWeight > 1 {
		return nil, fmt.Errorf("feature weight must be in [0, 1], got %g", cfg.FeatureWeight)
	}

	l := logger.With().Str("component", "fusion").Logger()
	l.Info().
		Float64("text_weight", cfg.TextWeight).
		Float64("feature_weight", cfg.FeatureWeight).
		Bool("normalize", cfg.Normalize).
		Msg("embedding combiner initialized")

	return &Combiner{cfg: cfg, logger: l}, nil
}

// Combine fuses one text/feature embedding pair. Either input being nil
// yields nil: a missing input embedding means a missing combined embedding.
func (c *Combiner) Combine(text, feature []float64) []float64 {
	if text == nil || feature == nil {
		return nil
	}

	if c.cfg.Normalize {
		text = vectormath.Normalize(text)
		feature = vectormath.Normalize(feature)
	}

	combined := make([]float64, 0, len(text)+len(feature))
	for _, v := range text {
		combined = append(combined, v*c.cfg.TextWeight)
	}
	for _, v := range feature {
		combined = append(combined, v*c.cfg.FeatureWeight)
	}

	if c.cfg.Normalize {
		combined = vectormath.Normalize(combined)
	}

	return combined
}

// CombineAll fuses parallel slices of text and feature embeddings, returning
// one combined embedding per position. The slices must be the same length.
// Positions where either input is nil produce a nil combined embedding.
func (c *Combiner) CombineAll(texts, features [][]float64) ([][]float64, error) {
	if len(texts) != len(features) {
		return nil, fmt.Errorf("embedding slices differ in length: %d text vs %d feature", len(texts), len(features))
	}

	combined := make([][]float64, len(texts))
	valid := 0
	for i := range texts {
		combined[i] = c.Combine(texts[i], features[i])
		if combined[i] != nil {
			valid++
		}
	}

	c.logger.Info().
		Int("total", len(combined)).
		Int("combined", valid).
		Msg("embeddings combined")

	return combined, nil
}
