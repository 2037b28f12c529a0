// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

// Package main is the entry point for the Tunegraph server.
//
// Tunegraph serves music recommendations from a track catalog enriched with
// text embeddings and projected audio attributes. The server initializes
// components in the following order:
//
//  1. Configuration: layered load from defaults, config file and environment
//     variables (koanf v2)
//  2. Catalog store: DuckDB with vector columns per track
//  3. State store: BadgerDB for projector state and run markers
//  4. Embedding client: optional HTTP embedding service
//  5. Recommendation service: in-memory snapshot over the catalog
//  6. Enrichment pipeline: clean, embed, project, fuse, persist
//  7. Authentication: JWT with bcrypt admin credentials, or none
//  8. HTTP server: REST API under /api/v1 plus /metrics
//
// Long-running parts run under a suture supervision tree with three layers
// (pipeline, serving, api) so a pipeline crash never interrupts serving.
//
// # Configuration
//
// Configuration sources, highest priority first:
//   - TUNEGRAPH_ prefixed environment variables
//   - config.yaml (path overridable via TUNEGRAPH_CONFIG)
//   - built-in defaults
//
// For JWT authentication:
//   - AUTH_MODE=jwt
//   - JWT_SECRET: 32+ character secret for token signing
//   - ADMIN_USERNAME and ADMIN_PASSWORD_HASH (bcrypt)
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests within the configured shutdown timeout, then the
// stores close.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tunegraph/tunegraph/internal/api"
	"github.com/tunegraph/tunegraph/internal/auth"
	"github.com/tunegraph/tunegraph/internal/config"
	"github.com/tunegraph/tunegraph/internal/embed"
	"github.com/tunegraph/tunegraph/internal/logging"
	"github.com/tunegraph/tunegraph/internal/middleware"
	"github.com/tunegraph/tunegraph/internal/pipeline"
	"github.com/tunegraph/tunegraph/internal/recommend"
	"github.com/tunegraph/tunegraph/internal/store"
	"github.com/tunegraph/tunegraph/internal/supervisor"
	"github.com/tunegraph/tunegraph/internal/supervisor/services"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("embedder_enabled", cfg.Embedder.Enabled).
		Msg("Starting Tunegraph")

	logger := logging.Logger()

	st, err := store.New(cfg.Database, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open catalog store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog store")
		}
	}()

	state, err := store.OpenState(cfg.StateStore.Path, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open state store")
	}
	defer func() {
		if err := state.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing state store")
		}
	}()

	var embedder embed.Embedder
	if cfg.Embedder.Enabled {
		client, err := embed.NewHTTPClient(cfg.Embedder.Client, logger)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create embedding client")
		}
		embedder = client
	} else {
		logging.Info().Msg("Embedding service disabled, semantic search unavailable")
	}

	svc, err := recommend.NewService(cfg.Recommend, st, embedder, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation service")
	}

	runner, err := pipeline.NewRunner(pipeline.Config{
		TextFields:  cfg.Text.Fields,
		IncludeTags: cfg.Text.IncludeTags,
		Numeric:     cfg.Clean.Numeric,
		TextClean:   cfg.Clean.Text,
		Quality:     cfg.Clean.Quality,
		Features:    cfg.Features,
		Fusion:      cfg.Fusion,
	}, st, state, embedder, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create pipeline runner")
	}

	if cfg.Pipeline.RunOnStartup {
		runStartupPipeline(runner, cfg.Pipeline)
	}

	var jwtManager *auth.JWTManager
	var creds *auth.CredentialVerifier
	if cfg.Security.AuthMode == auth.AuthModeJWT {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to configure JWT authentication")
		}
		creds, err = auth.NewCredentialVerifier(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to configure admin credentials")
		}
	}
	authMw := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode)

	perfMon := middleware.NewPerformanceMonitor(1000)
	handlers := api.NewHandlers(svc, jwtManager, creds, perfMon, version)
	router := api.NewRouter(handlers, authMw, cfg.Security, perfMon)
	server := api.NewServer(cfg.Server, router, logger)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddPipelineService(services.NewPipelineScheduler(runner, services.SchedulerConfig{
		Interval: cfg.Pipeline.Interval,
		Timeout:  cfg.Pipeline.Timeout,
	}, logger))
	tree.AddServingService(services.NewSnapshotRefresher(svc, services.RefresherConfig{
		Interval: cfg.Recommend.SnapshotTTL,
	}, logger))
	tree.AddAPIService(server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree exited with error")
	}

	logging.Info().Msg("Tunegraph stopped")
}

// runStartupPipeline runs one enrichment pass before serving. Failures are
// logged, not fatal; the API serves whatever vectors the catalog already has.
func runStartupPipeline(runner *pipeline.Runner, cfg config.PipelineConfig) {
	ctx := context.Background()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	logging.Info().Msg("Running startup pipeline pass")
	result, err := runner.Run(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Startup pipeline run failed, serving existing catalog")
		return
	}
	logging.Info().
		Int("tracks", result.Tracks).
		Int("embedded", result.Embedded).
		Int("feature_dim", result.FeatureDim).
		Msg("Startup pipeline run complete")
}
