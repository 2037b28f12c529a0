// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tunegraph/tunegraph/internal/auth"
	"github.com/tunegraph/tunegraph/internal/config"
	"github.com/tunegraph/tunegraph/internal/metrics"
	"github.com/tunegraph/tunegraph/internal/middleware"
)

// NewRouter builds the chi router with the full middleware stack and all
// API routes. The login route is only registered when JWT authentication is
// configured.
func NewRouter(h *Handlers, authMw *auth.Middleware, sec config.SecurityConfig, perfMon *middleware.PerformanceMonitor) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(auth.SecurityHeaders)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perfMon.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   sec.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus scrape endpoint sits outside the rate limited API group.
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Compression)
		if !sec.RateLimitDisabled {
			r.Use(rateLimiter(sec))
		}

		r.Get("/health", h.handleHealth)
		r.Get("/health/live", h.handleLive)
		r.Get("/health/ready", h.handleReady)

		if h.jwt != nil && h.creds != nil {
			r.Post("/auth/login", h.handleLogin)
		}

		r.Group(func(r chi.Router) {
			r.Use(authMw.Authenticate)

			r.Get("/tracks", h.handleListTracks)
			r.Get("/search", h.handleSearch)
			r.Get("/recommend", h.handleRecommendGET)
			r.Post("/recommend", h.handleRecommendPOST)
			r.Post("/recommend/semantic", h.handleSemanticSearch)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMw.RequireRole("admin"))

			r.Post("/admin/reload", h.handleAdminReload)
			r.Get("/admin/stats", h.handleAdminStats)
		})
	})

	return r
}

// rateLimiter builds the per-IP rate limiting middleware.
func rateLimiter(sec config.SecurityConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		sec.RateLimitReqs,
		sec.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			// The route pattern is not resolved yet at this point in the
			// chain; a fixed label keeps cardinality bounded.
			metrics.APIRateLimitHits.WithLabelValues("/api/v1").Inc()
			respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "too many requests", nil)
		}),
	)
}
