// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

// Package similarity implements brute-force top-k nearest-neighbor search over
// in-memory embedding matrices.
//
// Three metrics are supported, all on a "higher is better" scale:
//
//   - cosine: standard cosine similarity, roughly [-1, 1]
//   - euclidean: distance converted to similarity via 1/(1+d), bounded (0, 1]
//   - dot: raw dot product, unbounded
//
// The engine computes the full similarity vector over all candidates; there is
// no pruning or approximate structure. This is intentional: the service
// operates on snapshots of hundreds to low thousands of tracks, where a dense
// scan is both exact and fast enough.
//
// Results are deterministic: ties are broken by ascending candidate index.
package similarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tunegraph/tunegraph/internal/vectormath"
)

// Metric identifies a similarity metric.
type Metric string

// Supported metrics.
const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
	MetricDot       Metric = "dot"
)

// ParseMetric validates a metric name. Unknown names are a configuration
// error and fail fast.
func ParseMetric(name string) (Metric, error) {
	switch Metric(name) {
	case MetricCosine, MetricEuclidean, MetricDot:
		return Metric(name), nil
	default:
		return "", fmt.Errorf("unsupported similarity metric: %q", name)
	}
}

// Match is a single search result: the candidate's row index in the matrix it
// was searched in, and its similarity score under the engine's metric.
type Match struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Engine performs similarity computations under a fixed metric.
// It is stateless and safe for concurrent use.
type Engine struct {
	metric Metric
	logger zerolog.Logger
}

// NewEngine creates a similarity engine for the given metric name.
// An unsupported metric is a construction-time error, never a per-call one.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(metric string, logger zerolog.Logger) (*Engine, error) {
	m, err := ParseMetric(metric)
	if err != nil {
		return nil, err
	}

	return &Engine{
		metric: m,
		logger: logger.With().Str("component", "similarity").Str("metric", string(m)).Logger(),
	}, nil
}

// Metric returns the engine's metric.
func (e *Engine) Metric() Metric {
	return e.metric
}

// FindSimilar returns the top k candidates most similar to query, as
// (index, score) pairs ordered by descending score. Equal scores are ordered
// by ascending candidate index. Indices listed in exclude are never returned;
// out-of-range exclusions are ignored.
//
// len(result) <= k; fewer rows than k yields a short list, never padding.
func (e *Engine) FindSimilar(query []float64, matrix [][]float64, k int, exclude []int) []Match {
	if k <= 0 || len(matrix) == 0 {
		return nil
	}

	scores := e.scoreAll(query, matrix)

	for _, idx := range exclude {
		if idx >= 0 && idx < len(scores) {
			scores[idx] = math.Inf(-1)
		}
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	// Stable w.r.t. original index: ties keep ascending index order.
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	if k > len(order) {
		k = len(order)
	}

	matches := make([]Match, 0, k)
	for _, idx := range order[:k] {
		if math.IsInf(scores[idx], -1) {
			break // only excluded entries remain
		}
		matches = append(matches, Match{Index: idx, Score: scores[idx]})
	}

	return matches
}

// ComputeSimilarity scores a single pair under the engine's metric.
func (e *Engine) ComputeSimilarity(a, b []float64) float64 {
	switch e.metric {
	case MetricCosine:
		return vectormath.CosineSimilarity(a, b)
	case MetricEuclidean:
		return 1 / (1 + vectormath.EuclideanDistance(a, b))
	default: // MetricDot
		return vectormath.Dot(a, b)
	}
}

// BatchSimilarity computes the all-pairs similarity matrix between queries
// and targets. Row i column j holds the similarity of queries[i] to
// targets[j], using exactly the formulas FindSimilar uses.
func (e *Engine) BatchSimilarity(queries, targets [][]float64) [][]float64 {
	out := make([][]float64, len(queries))
	for i, q := range queries {
		out[i] = e.scoreAll(q, targets)
	}
	return out
}

// scoreAll computes the similarity of query to every row of matrix.
func (e *Engine) scoreAll(query []float64, matrix [][]float64) []float64 {
	scores := make([]float64, len(matrix))
	for i, row := range matrix {
		scores[i] = e.ComputeSimilarity(query, row)
	}
	return scores
}
