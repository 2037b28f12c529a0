// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// All metrics share the tunegraph namespace so dashboards can select them
// with one prefix.
const namespace = "tunegraph"

var (
	// DuckDB store
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Duration of DuckDB queries in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_query_errors_total",
			Help:      "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_active_requests",
			Help:      "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_rate_limit_hits_total",
			Help:      "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Recommendation serving
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommend_requests_total",
			Help:      "Total number of recommendation requests",
		},
		[]string{"embedding_type", "status"}, // status: "ok", "not_found", "missing_vector", "error"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommend_duration_seconds",
			Help:      "Duration of recommendation requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	RecommendResultCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommend_results_per_request",
			Help:      "Number of results returned per recommendation request",
			Buckets:   []float64{0, 1, 5, 10, 20, 50},
		},
	)

	SemanticSearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "semantic_search_requests_total",
			Help:      "Total number of semantic search requests",
		},
		[]string{"status"}, // "ok", "snapshot_empty", "upstream_error", "error"
	)

	FuzzyResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "track_fuzzy_resolutions_total",
			Help:      "Total number of track lookups that fell through to fuzzy matching",
		},
		[]string{"matched"}, // "true", "false"
	)

	// Catalog snapshot
	SnapshotTracks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_tracks",
			Help:      "Number of tracks in the current catalog snapshot",
		},
	)

	SnapshotAge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_age_seconds",
			Help:      "Age of the current catalog snapshot in seconds",
		},
	)

	SnapshotReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_reloads_total",
			Help:      "Total number of snapshot reloads",
		},
		[]string{"result"}, // "success", "failure"
	)

	SnapshotReloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_reload_duration_seconds",
			Help:      "Duration of snapshot reloads in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// Embedding client
	EmbedBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embed_batches_total",
			Help:      "Total number of embedding batches sent",
		},
		[]string{"result"}, // "success", "failure"
	)

	EmbedTextsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embed_texts_processed_total",
			Help:      "Total number of texts sent for embedding",
		},
	)

	EmbedRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embed_request_duration_seconds",
			Help:      "Duration of embedding service calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// Embedding circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state_transitions_total",
			Help:      "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Enrichment pipeline
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total number of enrichment pipeline runs",
		},
		[]string{"result"}, // "success", "failure"
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of enrichment pipeline runs in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	PipelineTracksProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_tracks_processed_total",
			Help:      "Total number of tracks processed by pipeline runs",
		},
	)

	PipelineRecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_records_dropped_total",
			Help:      "Total number of records dropped during cleaning",
		},
		[]string{"cleaner"},
	)

	PipelineLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_last_success_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		},
	)

	// Process
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "app_info",
			Help:      "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "app_uptime_seconds",
			Help:      "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records a recommendation request and its outcome.
func RecordRecommendation(embeddingType, status string, duration time.Duration, results int) {
	RecommendRequests.WithLabelValues(embeddingType, status).Inc()
	RecommendDuration.Observe(duration.Seconds())
	if status == "ok" {
		RecommendResultCount.Observe(float64(results))
	}
}

// RecordSemanticSearch records a semantic search request.
func RecordSemanticSearch(status string) {
	SemanticSearchRequests.WithLabelValues(status).Inc()
}

// RecordSnapshotReload records a snapshot reload and updates freshness gauges
// on success.
func RecordSnapshotReload(duration time.Duration, tracks int, err error) {
	SnapshotReloadDuration.Observe(duration.Seconds())
	if err != nil {
		SnapshotReloads.WithLabelValues("failure").Inc()
		return
	}
	SnapshotReloads.WithLabelValues("success").Inc()
	SnapshotTracks.Set(float64(tracks))
	SnapshotAge.Set(0)
}

// RecordEmbedBatch records an embedding batch call.
func RecordEmbedBatch(texts int, duration time.Duration, err error) {
	EmbedTextsProcessed.Add(float64(texts))
	EmbedRequestDuration.Observe(duration.Seconds())
	if err != nil {
		EmbedBatches.WithLabelValues("failure").Inc()
	} else {
		EmbedBatches.WithLabelValues("success").Inc()
	}
}

// RecordPipelineRun records a pipeline run outcome.
func RecordPipelineRun(duration time.Duration, tracks int, err error) {
	PipelineDuration.Observe(duration.Seconds())
	if err != nil {
		PipelineRuns.WithLabelValues("failure").Inc()
		return
	}
	PipelineRuns.WithLabelValues("success").Inc()
	PipelineTracksProcessed.Add(float64(tracks))
	PipelineLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordCircuitBreakerTransition records a breaker state change. State values
// follow gobreaker ordering: closed=0, half-open=1, open=2.
func RecordCircuitBreakerTransition(name, from, to string, toValue float64) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(toValue)
}
