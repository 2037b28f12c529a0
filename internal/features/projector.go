// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

// Package features turns raw numeric track attributes into dense feature
// embeddings: median imputation, per-column scaling, then optional PCA down
// to a target dimension.
//
// Fitting happens once per pipeline run over the full track matrix. The
// fitted state is immutable afterwards and serializable, so vectors projected
// later (at serving time or in incremental loads) stay comparable with the
// batch that trained the projection.
package features

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Config controls feature projection.
type Config struct {
	// Scaler is the per-column scaling strategy: standard, minmax or robust.
	Scaler string `koanf:"scaler"`

	// TargetDim is the PCA output dimension. PCA only runs when the scaled
	// matrix is wider than this.
	TargetDim int `koanf:"target_dim"`

	// UsePCA disables dimensionality reduction entirely when false.
	UsePCA bool `koanf:"use_pca"`
}

// DefaultConfig returns the default projection configuration.
func DefaultConfig() Config {
	return Config{
		Scaler:    string(ScalerStandard),
		TargetDim: 50,
		UsePCA:    true,
	}
}

// Stats describes what a fit produced.
type Stats struct {
	FeaturesProcessed   int     `json:"features_processed"`
	EmbeddingsGenerated int     `json:"embeddings_generated"`
	OriginalDim         int     `json:"original_dimension"`
	FinalDim            int     `json:"final_dimension"`
	VarianceExplained   float64 `json:"variance_explained"`
}

// FittedState is the serializable outcome of a fit: the feature columns used,
// imputation medians, scaler parameters and the PCA basis (nil when PCA was
// skipped).
type FittedState struct {
	Columns []string      `json:"columns"`
	Medians []float64     `json:"medians"`
	Scaler  *scalerParams `json:"scaler"`
	PCA     *pcaParams    `json:"pca,omitempty"`
}

// Marshal encodes the state for persistence.
func (s *FittedState) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalFittedState decodes a persisted state.
func UnmarshalFittedState(data []byte) (*FittedState, error) {
	var s FittedState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding projector state: %w", err)
	}
	return &s, nil
}

// Projector fits and applies the feature projection.
// Fit methods must not be called concurrently with Transform.
type Projector struct {
	cfg    Config
	kind   ScalerKind
	logger zerolog.Logger

	state *FittedState
	stats Stats
}

// NewProjector creates a Projector. An unknown scaler name is a
// construction-time error.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProjector(cfg Config, logger zerolog.Logger) (*Projector, error) {
	kind, err := ParseScalerKind(cfg.Scaler)
	if err != nil {
		return nil, err
	}
	if cfg.UsePCA && cfg.TargetDim <= 0 {
		return nil, fmt.Errorf("target dimension must be positive, got %d", cfg.TargetDim)
	}

	l := logger.With().Str("component", "features").Logger()
	l.Info().
		Str("scaler", cfg.Scaler).
		Bool("use_pca", cfg.UsePCA).
		Int("target_dim", cfg.TargetDim).
		Msg("feature projector initialized")

	return &Projector{cfg: cfg, kind: kind, logger: l}, nil
}

// NewProjectorFromState restores a fitted projector so serving-time rows can
// be transformed without refitting.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProjectorFromState(cfg Config, state *FittedState, logger zerolog.Logger) (*Projector, error) {
	p, err := NewProjector(cfg, logger)
	if err != nil {
		return nil, err
	}
	if state == nil || state.Scaler == nil {
		return nil, fmt.Errorf("projector state is incomplete")
	}
	p.state = state
	return p, nil
}

// FitTransform fits imputation, scaling and PCA on the matrix and returns one
// embedding per row. columns names the matrix's columns and is recorded in
// the fitted state.
//
// An empty column set is not an error: the matrix is returned unchanged with
// zero features processed, and the condition is logged. NaN entries mark
// missing values and are imputed with per-column medians before the scaler
// sees them; an entirely missing column is filled with 0.
func (p *Projector) FitTransform(matrix [][]float64, columns []string) ([][]float64, error) {
	if len(matrix) == 0 {
		return matrix, nil
	}
	if len(columns) == 0 || len(matrix[0]) == 0 {
		p.logger.Error().Msg("no numeric feature columns available, skipping projection")
		p.stats = Stats{}
		return matrix, nil
	}
	for i, row := range matrix {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(columns))
		}
	}

	work := make([][]float64, len(matrix))
	for i, row := range matrix {
		work[i] = append([]float64(nil), row...)
	}

	medians := imputeMedians(work)

	scaler := fitScaler(p.kind, work)
	scaled := scaler.transformAll(work)

	state := &FittedState{
		Columns: append([]string(nil), columns...),
		Medians: medians,
		Scaler:  scaler,
	}
	stats := Stats{
		FeaturesProcessed:   len(columns),
		EmbeddingsGenerated: len(scaled),
		OriginalDim:         len(columns),
		FinalDim:            len(columns),
	}

	out := scaled
	if p.cfg.UsePCA && len(columns) > p.cfg.TargetDim {
		pca, err := fitPCA(scaled, p.cfg.TargetDim)
		if err != nil {
			return nil, fmt.Errorf("fitting PCA: %w", err)
		}
		state.PCA = pca
		stats.FinalDim = len(pca.Components)
		stats.VarianceExplained = pca.totalExplainedVariance()

		out = make([][]float64, len(scaled))
		for i, row := range scaled {
			out[i] = pca.transform(row)
		}

		p.logger.Info().
			Int("original_dim", stats.OriginalDim).
			Int("final_dim", stats.FinalDim).
			Float64("variance_explained", stats.VarianceExplained).
			Msg("PCA applied")
	}

	p.state = state
	p.stats = stats

	p.logger.Info().
		Int("embeddings", stats.EmbeddingsGenerated).
		Int("dimension", stats.FinalDim).
		Msg("feature embeddings generated")

	return out, nil
}

// Transform projects a single raw row with the fitted state. NaN entries are
// imputed with the training medians.
func (p *Projector) Transform(row []float64) ([]float64, error) {
	if p.state == nil {
		return nil, fmt.Errorf("projector is not fitted")
	}
	if len(row) != len(p.state.Columns) {
		return nil, fmt.Errorf("row has %d values, expected %d", len(row), len(p.state.Columns))
	}

	imputed := make([]float64, len(row))
	for j, v := range row {
		if math.IsNaN(v) {
			v = p.state.Medians[j]
		}
		imputed[j] = v
	}

	scaled := p.state.Scaler.transform(imputed)
	if p.state.PCA != nil {
		return p.state.PCA.transform(scaled), nil
	}
	return scaled, nil
}

// Stats returns the statistics recorded by the last fit.
func (p *Projector) Stats() Stats {
	return p.stats
}

// State returns the fitted state, or nil before a fit.
func (p *Projector) State() *FittedState {
	return p.state
}
