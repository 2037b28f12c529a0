// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

// Package metrics provides Prometheus instrumentation for all components.
//
// Metrics are registered on the default registry via promauto at package
// initialization and exposed on GET /metrics by the API server. Components
// record through the exported collectors directly or through the Record*
// helpers, which bundle the common counter-plus-histogram patterns.
//
// # Metric Groups
//
//   - duckdb_*: database query durations and errors
//   - api_*: HTTP request counts, latencies, in-flight gauge, rate limiting
//   - recommend_*, semantic_search_*: serving-path outcomes and latencies
//   - snapshot_*: catalog snapshot freshness and reload outcomes
//   - embed_*: embedding service batches, texts and call durations
//   - circuit_breaker_*: embedder breaker state and transitions
//   - pipeline_*: offline enrichment run outcomes and durations
//   - app_*: build info and uptime
//
// # Usage
//
//	start := time.Now()
//	rows, err := db.Query(ctx, query)
//	metrics.RecordDBQuery("SELECT", "tracks", time.Since(start), err)
//
// Helpers never return errors; metric recording must not affect the request
// path.
//
// # Cardinality
//
// Label values are drawn from small fixed sets (HTTP method, route pattern,
// status code, embedding type, result). Never use request-supplied strings
// as label values.
package metrics
