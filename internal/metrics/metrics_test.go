// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		duration  time.Duration
		err       error
	}{
		{"successful SELECT", "SELECT", "tracks", 10 * time.Millisecond, nil},
		{"successful INSERT", "INSERT", "tracks", 5 * time.Millisecond, nil},
		{"failed query", "UPDATE", "tracks", 100 * time.Millisecond, errors.New("connection refused")},
		{"fast query", "SELECT", "tracks", 500 * time.Microsecond, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Should not panic
			RecordDBQuery(tt.operation, tt.table, tt.duration, tt.err)
		})
	}
}

func TestRecordDBQueryErrorCounter(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("SELECT", "errtable"))
	RecordDBQuery("SELECT", "errtable", time.Millisecond, errors.New("boom"))
	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("SELECT", "errtable"))
	if after != before+1 {
		t.Errorf("expected error counter to increment, got %v -> %v", before, after)
	}

	RecordDBQuery("SELECT", "errtable", time.Millisecond, nil)
	final := testutil.ToFloat64(DBQueryErrors.WithLabelValues("SELECT", "errtable"))
	if final != after {
		t.Errorf("successful query should not increment error counter, got %v -> %v", after, final)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommend", "200"))
	RecordAPIRequest("GET", "/api/v1/recommend", "200", 25*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/recommend", "200"))
	if after != before+1 {
		t.Errorf("expected request counter to increment, got %v -> %v", before, after)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != start+1 {
		t.Errorf("expected gauge %v, got %v", start+1, got)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != start {
		t.Errorf("expected gauge %v, got %v", start, got)
	}
}

func TestRecordRecommendation(t *testing.T) {
	before := testutil.ToFloat64(RecommendRequests.WithLabelValues("combined", "ok"))
	RecordRecommendation("combined", "ok", 5*time.Millisecond, 10)
	after := testutil.ToFloat64(RecommendRequests.WithLabelValues("combined", "ok"))
	if after != before+1 {
		t.Errorf("expected recommendation counter to increment, got %v -> %v", before, after)
	}

	notFound := testutil.ToFloat64(RecommendRequests.WithLabelValues("text", "not_found"))
	RecordRecommendation("text", "not_found", time.Millisecond, 0)
	if got := testutil.ToFloat64(RecommendRequests.WithLabelValues("text", "not_found")); got != notFound+1 {
		t.Errorf("expected not_found counter to increment")
	}
}

func TestRecordSemanticSearch(t *testing.T) {
	before := testutil.ToFloat64(SemanticSearchRequests.WithLabelValues("ok"))
	RecordSemanticSearch("ok")
	if got := testutil.ToFloat64(SemanticSearchRequests.WithLabelValues("ok")); got != before+1 {
		t.Errorf("expected semantic search counter to increment")
	}
}

func TestRecordSnapshotReload(t *testing.T) {
	successBefore := testutil.ToFloat64(SnapshotReloads.WithLabelValues("success"))
	RecordSnapshotReload(2*time.Second, 5000, nil)
	if got := testutil.ToFloat64(SnapshotReloads.WithLabelValues("success")); got != successBefore+1 {
		t.Errorf("expected success counter to increment")
	}
	if got := testutil.ToFloat64(SnapshotTracks); got != 5000 {
		t.Errorf("expected snapshot tracks gauge 5000, got %v", got)
	}
	if got := testutil.ToFloat64(SnapshotAge); got != 0 {
		t.Errorf("expected snapshot age reset to 0, got %v", got)
	}

	failBefore := testutil.ToFloat64(SnapshotReloads.WithLabelValues("failure"))
	RecordSnapshotReload(time.Second, 0, errors.New("database down"))
	if got := testutil.ToFloat64(SnapshotReloads.WithLabelValues("failure")); got != failBefore+1 {
		t.Errorf("expected failure counter to increment")
	}
	// Failed reload must not clobber the tracks gauge.
	if got := testutil.ToFloat64(SnapshotTracks); got != 5000 {
		t.Errorf("failed reload should keep tracks gauge, got %v", got)
	}
}

func TestRecordEmbedBatch(t *testing.T) {
	textsBefore := testutil.ToFloat64(EmbedTextsProcessed)
	okBefore := testutil.ToFloat64(EmbedBatches.WithLabelValues("success"))

	RecordEmbedBatch(25, 200*time.Millisecond, nil)

	if got := testutil.ToFloat64(EmbedTextsProcessed); got != textsBefore+25 {
		t.Errorf("expected texts counter +25, got %v -> %v", textsBefore, got)
	}
	if got := testutil.ToFloat64(EmbedBatches.WithLabelValues("success")); got != okBefore+1 {
		t.Errorf("expected success batch counter to increment")
	}

	failBefore := testutil.ToFloat64(EmbedBatches.WithLabelValues("failure"))
	RecordEmbedBatch(25, time.Second, errors.New("upstream 500"))
	if got := testutil.ToFloat64(EmbedBatches.WithLabelValues("failure")); got != failBefore+1 {
		t.Errorf("expected failure batch counter to increment")
	}
}

func TestRecordPipelineRun(t *testing.T) {
	okBefore := testutil.ToFloat64(PipelineRuns.WithLabelValues("success"))
	tracksBefore := testutil.ToFloat64(PipelineTracksProcessed)

	RecordPipelineRun(30*time.Second, 1000, nil)

	if got := testutil.ToFloat64(PipelineRuns.WithLabelValues("success")); got != okBefore+1 {
		t.Errorf("expected success run counter to increment")
	}
	if got := testutil.ToFloat64(PipelineTracksProcessed); got != tracksBefore+1000 {
		t.Errorf("expected tracks counter +1000")
	}
	if got := testutil.ToFloat64(PipelineLastSuccess); got == 0 {
		t.Error("expected last success timestamp to be set")
	}

	failBefore := testutil.ToFloat64(PipelineRuns.WithLabelValues("failure"))
	RecordPipelineRun(time.Second, 0, errors.New("embed failed"))
	if got := testutil.ToFloat64(PipelineRuns.WithLabelValues("failure")); got != failBefore+1 {
		t.Errorf("expected failure run counter to increment")
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	before := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("embedder", "closed", "open"))
	RecordCircuitBreakerTransition("embedder", "closed", "open", 2)
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("embedder", "closed", "open")); got != before+1 {
		t.Errorf("expected transition counter to increment")
	}
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("embedder")); got != 2 {
		t.Errorf("expected state gauge 2 (open), got %v", got)
	}
}

func TestConcurrentRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				RecordAPIRequest("GET", "/api/v1/health", "200", time.Millisecond)
				RecordRecommendation("combined", "ok", time.Millisecond, 10)
				TrackActiveRequest(true)
				TrackActiveRequest(false)
			}
		}()
	}
	wg.Wait()
}

func TestMetricGathering(t *testing.T) {
	// Touch a few metrics so they are present in the registry.
	RecordAPIRequest("GET", "/api/v1/tracks", "200", time.Millisecond)
	RecordSemanticSearch("ok")

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint failed: %v", err)
	}
	for _, p := range problems {
		t.Errorf("metric lint problem: %s: %s", p.Metric, p.Text)
	}
}
