// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tunegraph/tunegraph/internal/pipeline"
)

// PipelineRunner executes one enrichment pass over the catalog.
type PipelineRunner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// SchedulerConfig holds configuration for the pipeline scheduler.
type SchedulerConfig struct {
	// Interval between scheduled runs. Zero or negative disables
	// scheduling; the service then only waits for shutdown.
	Interval time.Duration

	// Timeout bounds a single run.
	Timeout time.Duration
}

// PipelineScheduler runs the enrichment pipeline on a fixed interval. Failed
// runs are logged and retried at the next tick; overlapping runs cannot
// happen because ticks are consumed sequentially.
type PipelineScheduler struct {
	runner PipelineRunner
	cfg    SchedulerConfig
	logger zerolog.Logger
}

// NewPipelineScheduler creates the scheduler service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipelineScheduler(runner PipelineRunner, cfg SchedulerConfig, logger zerolog.Logger) *PipelineScheduler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &PipelineScheduler{
		runner: runner,
		cfg:    cfg,
		logger: logger.With().Str("service", "pipeline-scheduler").Logger(),
	}
}

// Serve implements suture.Service.
func (s *PipelineScheduler) Serve(ctx context.Context) error {
	if s.cfg.Interval <= 0 {
		s.logger.Info().Msg("pipeline scheduling disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.cfg.Interval).Msg("pipeline scheduler running")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("pipeline scheduler shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *PipelineScheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	result, err := s.runner.Run(runCtx)
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled pipeline run failed")
		return
	}
	s.logger.Info().
		Int("tracks", result.Tracks).
		Int("embedded", result.Embedded).
		Dur("duration", result.Duration).
		Msg("scheduled pipeline run complete")
}

// String returns the service name for supervision logs.
func (s *PipelineScheduler) String() string {
	return "pipeline-scheduler"
}
