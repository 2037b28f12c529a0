// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package vectormath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-9

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
	}{
		{"unit axis", []float64{1, 0, 0}},
		{"arbitrary", []float64{3, 4}},
		{"negative components", []float64{-2, 5, -7, 1}},
		{"tiny values", []float64{1e-8, 2e-8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize(tt.in)
			assert.InDelta(t, 1.0, Norm(out), tolerance, "normalized vector must have unit norm")
			assert.Len(t, out, len(tt.in))
		})
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	zero := []float64{0, 0, 0}
	out := Normalize(zero)
	assert.Equal(t, zero, out, "zero vector must pass through unchanged")
}

func TestNormalizePreservesDirection(t *testing.T) {
	v := []float64{3, 4}
	out := Normalize(v)
	assert.InDelta(t, 0.6, out[0], tolerance)
	assert.InDelta(t, 0.8, out[1], tolerance)
	// Input untouched.
	assert.Equal(t, []float64{3, 4}, v)
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 11.0, Dot([]float64{1, 2}, []float64{3, 4}), tolerance)
	assert.InDelta(t, 0.0, Dot([]float64{1, 0}, []float64{0, 1}), tolerance)
	assert.InDelta(t, 0.0, Dot(nil, []float64{1, 2}), tolerance)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 1}, []float64{-1, -1}, -1.0},
		{"scaled copy", []float64{1, 2}, []float64{10, 20}, 1.0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), tolerance)
		})
	}
}

func TestEuclideanDistance(t *testing.T) {
	assert.InDelta(t, 5.0, EuclideanDistance([]float64{0, 0}, []float64{3, 4}), tolerance)
	assert.InDelta(t, 0.0, EuclideanDistance([]float64{1, 2}, []float64{1, 2}), tolerance)
	assert.InDelta(t, math.Sqrt2, EuclideanDistance([]float64{0, 0}, []float64{1, 1}), tolerance)
}

func TestScale(t *testing.T) {
	v := []float64{1, -2, 3}
	out := Scale(v, 0.5)
	assert.Equal(t, []float64{0.5, -1, 1.5}, out)
	assert.Equal(t, []float64{1, -2, 3}, v, "input must not be mutated")
}
