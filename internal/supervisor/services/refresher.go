// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Refresher reloads the serving snapshot from storage.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefresherConfig holds configuration for the snapshot refresher.
type RefresherConfig struct {
	// Interval between refresh attempts.
	Interval time.Duration

	// Timeout bounds a single refresh.
	Timeout time.Duration
}

// SnapshotRefresher periodically reloads the recommendation snapshot so the
// serving path picks up pipeline output without waiting for TTL expiry on a
// request.
type SnapshotRefresher struct {
	svc    Refresher
	cfg    RefresherConfig
	logger zerolog.Logger
}

// NewSnapshotRefresher creates the refresher service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSnapshotRefresher(svc Refresher, cfg RefresherConfig, logger zerolog.Logger) *SnapshotRefresher {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	return &SnapshotRefresher{
		svc:    svc,
		cfg:    cfg,
		logger: logger.With().Str("service", "snapshot-refresher").Logger(),
	}
}

// Serve implements suture.Service. Refresh failures are logged and retried
// on the next tick; the serving path keeps the previous snapshot.
func (s *SnapshotRefresher) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.cfg.Interval).Msg("snapshot refresher running")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("snapshot refresher shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *SnapshotRefresher) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	if err := s.svc.Refresh(refreshCtx); err != nil {
		s.logger.Warn().Err(err).Msg("snapshot refresh failed, keeping previous snapshot")
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("snapshot refreshed")
}

// String returns the service name for supervision logs.
func (s *SnapshotRefresher) String() string {
	return "snapshot-refresher"
}
