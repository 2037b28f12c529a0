// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tunegraph/tunegraph/internal/clean"
	"github.com/tunegraph/tunegraph/internal/embed"
	"github.com/tunegraph/tunegraph/internal/features"
	"github.com/tunegraph/tunegraph/internal/fusion"
	"github.com/tunegraph/tunegraph/internal/metrics"
	"github.com/tunegraph/tunegraph/internal/models"
	"github.com/tunegraph/tunegraph/internal/store"
)

// Store is the catalog persistence surface the pipeline needs.
type Store interface {
	LoadTracks(ctx context.Context) ([]models.Track, error)
	UpsertTracks(ctx context.Context, tracks []models.Track) error
}

// StateStore persists the fitted projector and run markers between runs.
type StateStore interface {
	SaveProjectorState(data []byte) error
	SavePipelineRun(run store.PipelineRun) error
}

// Config bundles the pipeline's stage configurations.
type Config struct {
	// TextFields and IncludeTags control embedding text preparation.
	TextFields  []string
	IncludeTags bool

	Numeric   clean.NumericConfig
	TextClean clean.TextConfig
	Quality   clean.QualityConfig
	Features  features.Config
	Fusion    fusion.Config
}

// Result summarizes one pipeline run.
type Result struct {
	Tracks        int           `json:"tracks"`
	Dropped       int           `json:"dropped"`
	Embedded      int           `json:"embedded"`
	FeatureDim    int           `json:"feature_dim"`
	QualityPassed bool          `json:"quality_passed"`
	Duration      time.Duration `json:"duration"`
}

// Runner executes the offline enrichment pipeline: load the catalog, clean
// it, embed text, project numeric attributes, fuse the two vector families
// and write everything back in one transaction.
type Runner struct {
	cfg      Config
	store    Store
	state    StateStore
	embedder embed.Embedder

	cleaners []clean.Cleaner
	quality  *clean.QualityChecker
	combiner *fusion.Combiner
	logger   zerolog.Logger
}

// NewRunner creates the pipeline. embedder may be nil; text vectors already
// in the catalog are then carried through unchanged.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRunner(cfg Config, st Store, state StateStore, embedder embed.Embedder, logger zerolog.Logger) (*Runner, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if state == nil {
		return nil, fmt.Errorf("state store is required")
	}

	// Validate the projector configuration up front; the projector itself is
	// recreated per run because fitting is destructive.
	if _, err := features.NewProjector(cfg.Features, logger); err != nil {
		return nil, fmt.Errorf("invalid feature configuration: %w", err)
	}

	combiner, err := fusion.NewCombiner(cfg.Fusion, logger)
	if err != nil {
		return nil, fmt.Errorf("invalid fusion configuration: %w", err)
	}

	l := logger.With().Str("component", "pipeline").Logger()

	return &Runner{
		cfg:      cfg,
		store:    st,
		state:    state,
		embedder: embedder,
		cleaners: []clean.Cleaner{
			clean.NewNumericCleaner(cfg.Numeric, logger),
			clean.NewTextCleaner(cfg.TextClean, logger),
		},
		quality:  clean.NewQualityChecker(cfg.Quality, logger),
		combiner: combiner,
		logger:   l,
	}, nil
}

// Run executes one full pipeline pass. Quality check failures are logged and
// the run continues; storage and embedding failures abort it.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	result, err := r.run(ctx)
	duration := time.Since(started)

	tracks := 0
	embedded := 0
	if result != nil {
		result.Duration = duration
		tracks = result.Tracks
		embedded = result.Embedded
	}
	metrics.RecordPipelineRun(duration, tracks, err)

	runErr := r.state.SavePipelineRun(store.PipelineRun{
		StartedAt:  started,
		FinishedAt: started.Add(duration),
		Tracks:     tracks,
		Embedded:   embedded,
		Succeeded:  err == nil,
	})
	if runErr != nil {
		r.logger.Warn().Err(runErr).Msg("failed to record pipeline run")
	}

	if err != nil {
		r.logger.Error().Err(err).Dur("duration", duration).Msg("pipeline run failed")
		return result, err
	}

	r.logger.Info().
		Int("tracks", tracks).
		Int("embedded", embedded).
		Dur("duration", duration).
		Msg("pipeline run complete")
	return result, nil
}

func (r *Runner) run(ctx context.Context) (*Result, error) {
	raw, err := r.store.LoadTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tracks: %w", err)
	}
	if len(raw) == 0 {
		r.logger.Warn().Msg("catalog is empty, nothing to process")
		return &Result{}, nil
	}

	cleaned, dropped := r.clean(raw)

	report := r.quality.Check(cleaned)

	textVecs, embedded, err := r.embedTexts(ctx, cleaned)
	if err != nil {
		return nil, err
	}

	featureVecs, featureDim, err := r.projectFeatures(cleaned)
	if err != nil {
		return nil, err
	}

	combinedVecs, err := r.combiner.CombineAll(textVecs, featureVecs)
	if err != nil {
		return nil, fmt.Errorf("combining embeddings: %w", err)
	}

	for i := range cleaned {
		cleaned[i].TextVector = textVecs[i]
		cleaned[i].FeatureVector = featureVecs[i]
		cleaned[i].CombinedVector = combinedVecs[i]
	}

	if err := r.store.UpsertTracks(ctx, cleaned); err != nil {
		return nil, fmt.Errorf("persisting enriched tracks: %w", err)
	}

	return &Result{
		Tracks:        len(cleaned),
		Dropped:       dropped,
		Embedded:      embedded,
		FeatureDim:    featureDim,
		QualityPassed: report.Passed,
	}, nil
}

// clean runs the cleaner sequence and records per-cleaner drop counts.
func (r *Runner) clean(tracks []models.Track) ([]models.Track, int) {
	dropped := 0
	for _, c := range r.cleaners {
		var stats clean.Stats
		tracks, stats = c.Clean(tracks)
		dropped += stats.RecordsDropped
		if stats.RecordsDropped > 0 {
			metrics.PipelineRecordsDropped.WithLabelValues(c.Name()).Add(float64(stats.RecordsDropped))
		}
	}
	return tracks, dropped
}

// embedTexts produces one text vector per track. Without an embedder the
// vectors already stored on the tracks are reused.
func (r *Runner) embedTexts(ctx context.Context, tracks []models.Track) ([][]float64, int, error) {
	if r.embedder == nil {
		vecs := make([][]float64, len(tracks))
		kept := 0
		for i := range tracks {
			vecs[i] = tracks[i].TextVector
			if vecs[i] != nil {
				kept++
			}
		}
		r.logger.Info().Int("reused", kept).Msg("no embedder configured, reusing stored text vectors")
		return vecs, kept, nil
	}

	texts := embed.PrepareTexts(tracks, r.cfg.TextFields, r.cfg.IncludeTags)
	vecs, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, 0, fmt.Errorf("embedding texts: %w", err)
	}
	if len(vecs) != len(tracks) {
		return nil, 0, fmt.Errorf("embedder returned %d vectors for %d tracks", len(vecs), len(tracks))
	}

	embedded := 0
	for _, v := range vecs {
		if v != nil {
			embedded++
		}
	}
	return vecs, embedded, nil
}

// projectFeatures fits the projector on the batch's attribute matrix and
// persists the fitted state for serving-time transforms.
func (r *Runner) projectFeatures(tracks []models.Track) ([][]float64, int, error) {
	matrix, columns := attributeMatrix(tracks)
	if len(columns) == 0 {
		r.logger.Warn().Msg("no numeric attributes found, skipping feature projection")
		return make([][]float64, len(tracks)), 0, nil
	}

	projector, err := features.NewProjector(r.cfg.Features, r.logger)
	if err != nil {
		return nil, 0, err
	}

	projected, err := projector.FitTransform(matrix, columns)
	if err != nil {
		return nil, 0, fmt.Errorf("projecting features: %w", err)
	}

	if state := projector.State(); state != nil {
		data, err := state.Marshal()
		if err != nil {
			return nil, 0, fmt.Errorf("encoding projector state: %w", err)
		}
		if err := r.state.SaveProjectorState(data); err != nil {
			return nil, 0, fmt.Errorf("persisting projector state: %w", err)
		}
	}

	dim := 0
	if len(projected) > 0 {
		dim = len(projected[0])
	}
	return projected, dim, nil
}
