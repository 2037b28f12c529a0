// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tunegraph/tunegraph/internal/logging"
)

// RequestMetrics is one recorded request latency sample.
type RequestMetrics struct {
	Path       string
	Method     string
	DurationMS int64
	StatusCode int
	Timestamp  time.Time
}

// EndpointStats aggregates the window samples of one endpoint for the admin
// stats payload.
type EndpointStats struct {
	Path         string  `json:"path"`
	RequestCount int64   `json:"request_count"`
	AvgDuration  float64 `json:"avg_duration_ms"`
	P50Duration  int64   `json:"p50_duration_ms"`
	P95Duration  int64   `json:"p95_duration_ms"`
	P99Duration  int64   `json:"p99_duration_ms"`
	MinDuration  int64   `json:"min_duration_ms"`
	MaxDuration  int64   `json:"max_duration_ms"`
}

// PerformanceMonitor holds a fixed-size ring of recent request samples and
// serves per-endpoint percentile statistics from it. Samples beyond the
// window size overwrite the oldest.
type PerformanceMonitor struct {
	mu     sync.RWMutex
	window []RequestMetrics
	next   int
	full   bool
}

// NewPerformanceMonitor creates a monitor keeping the most recent size
// samples.
func NewPerformanceMonitor(size int) *PerformanceMonitor {
	return &PerformanceMonitor{window: make([]RequestMetrics, size)}
}

// RecordRequest adds one sample to the window.
func (pm *PerformanceMonitor) RecordRequest(m *RequestMetrics) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.window[pm.next] = *m
	pm.next++
	if pm.next == len(pm.window) {
		pm.next = 0
		pm.full = true
	}
}

// snapshot returns the window contents oldest first. Callers hold at least a
// read lock.
func (pm *PerformanceMonitor) snapshot() []RequestMetrics {
	if !pm.full {
		out := make([]RequestMetrics, pm.next)
		copy(out, pm.window[:pm.next])
		return out
	}
	out := make([]RequestMetrics, 0, len(pm.window))
	out = append(out, pm.window[pm.next:]...)
	out = append(out, pm.window[:pm.next]...)
	return out
}

// GetStats aggregates the current window per endpoint, busiest endpoint
// first.
func (pm *PerformanceMonitor) GetStats() []EndpointStats {
	pm.mu.RLock()
	samples := pm.snapshot()
	pm.mu.RUnlock()

	byEndpoint := make(map[string][]int64)
	for _, s := range samples {
		key := s.Method + " " + s.Path
		byEndpoint[key] = append(byEndpoint[key], s.DurationMS)
	}

	stats := make([]EndpointStats, 0, len(byEndpoint))
	for endpoint, durations := range byEndpoint {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

		var sum int64
		for _, d := range durations {
			sum += d
		}

		stats = append(stats, EndpointStats{
			Path:         endpoint,
			RequestCount: int64(len(durations)),
			AvgDuration:  float64(sum) / float64(len(durations)),
			P50Duration:  percentile(durations, 0.50),
			P95Duration:  percentile(durations, 0.95),
			P99Duration:  percentile(durations, 0.99),
			MinDuration:  durations[0],
			MaxDuration:  durations[len(durations)-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Path < stats[j].Path
	})
	return stats
}

// GetRecentMetrics returns up to n samples, oldest first.
func (pm *PerformanceMonitor) GetRecentMetrics(n int) []RequestMetrics {
	pm.mu.RLock()
	samples := pm.snapshot()
	pm.mu.RUnlock()

	if n < len(samples) {
		samples = samples[len(samples)-n:]
	}
	return samples
}

// Middleware records a sample for each request and warns on requests slower
// than one second.
func (pm *PerformanceMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		capture := &statusCapture{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(capture, r)

		elapsed := time.Since(start).Milliseconds()
		pm.RecordRequest(&RequestMetrics{
			Path:       routePattern(r),
			Method:     r.Method,
			DurationMS: elapsed,
			StatusCode: capture.status,
			Timestamp:  time.Now(),
		})

		if elapsed > 1000 {
			logging.Warn().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int64("duration_ms", elapsed).
				Msg("slow request")
		}
	})
}

// percentile picks the nearest-rank value from an ascending slice.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}

type statusCapture struct {
	http.ResponseWriter
	status int
}

func (c *statusCapture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}
