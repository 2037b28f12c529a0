// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

/*
Package middleware provides HTTP middleware components for the API server.

All middleware uses the standard func(http.Handler) http.Handler signature so
it composes with chi's Use chain alongside the router's built-in middleware
(RealIP, Recoverer) and the cors and httprate packages.

Key Components:

  - RequestID: UUID-based request tracking wired into the logging package
  - PrometheusMetrics: request counts, latencies and in-flight gauge
  - Compression: gzip responses for clients that accept it
  - PerformanceMonitor: sliding-window latency percentiles for admin stats

Typical stack:

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perfMon.Middleware)
	r.Use(middleware.Compression)

The PrometheusMetrics middleware labels requests with the matched chi route
pattern (e.g. /api/v1/tracks/{id}) rather than the raw URL path, keeping
metric cardinality bounded.

The PerformanceMonitor keeps an in-memory window of recent requests and
computes p50/p95/p99 latencies per endpoint. It complements the Prometheus
histograms with an instant view served by GET /api/v1/admin/stats, useful
when no Prometheus server is scraping the instance.

Thread Safety:

All middleware components are safe for concurrent use. Compression pools
gzip writers, the performance monitor guards its window with a RWMutex, and
request IDs live in the immutable request context.
*/
package middleware
