// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

// Package vectormath provides the dense-vector primitives shared by the
// similarity, fusion and feature packages.
//
// All functions are pure and never allocate unless they return a new vector.
// Data-shape edge cases (zero vectors, mismatched lengths) are handled with
// safe sentinel results instead of errors; callers that need strict shape
// checking do it at construction time.
package vectormath

import "math"

// Dot computes the dot product of two vectors.
// Vectors of different lengths are truncated to the shorter one.
func Dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm computes the L2 norm (magnitude) of a vector.
func Norm(v []float64) float64 {
	return math.Sqrt(Dot(v, v))
}

// Normalize returns a unit-length copy of v.
// The zero vector is returned unchanged (no division by zero, no error).
func Normalize(v []float64) []float64 {
	norm := Norm(v)
	if norm == 0 {
		return v
	}
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] / norm
	}
	return out
}

// Scale returns a copy of v with every component multiplied by s.
func Scale(v []float64, s float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] * s
	}
	return out
}

// CosineSimilarity computes cosine similarity between two vectors.
// Returns 1 for identical directions, 0 for orthogonal vectors, -1 for
// opposite directions. Either vector having zero norm yields 0.
func CosineSimilarity(a, b []float64) float64 {
	normA := Norm(a)
	normB := Norm(b)
	if normA == 0 || normB == 0 {
		return 0
	}
	return Dot(a, b) / (normA * normB)
}

// EuclideanDistance computes the L2 distance between two vectors.
// Vectors of different lengths are truncated to the shorter one.
func EuclideanDistance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
