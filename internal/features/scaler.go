// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package features

import (
	"fmt"
	"math"
	"sort"
)

// ScalerKind selects the per-column scaling strategy applied before
// dimensionality reduction.
type ScalerKind string

// Supported scaler kinds.
const (
	ScalerStandard ScalerKind = "standard"
	ScalerMinMax   ScalerKind = "minmax"
	ScalerRobust   ScalerKind = "robust"
)

// ParseScalerKind validates a scaler name.
func ParseScalerKind(name string) (ScalerKind, error) {
	switch ScalerKind(name) {
	case ScalerStandard, ScalerMinMax, ScalerRobust:
		return ScalerKind(name), nil
	default:
		return "", fmt.Errorf("unsupported scaler: %q", name)
	}
}

// scalerParams holds the fitted per-column center and scale.
// Transform applies (x - center) / scale columnwise.
type scalerParams struct {
	Kind    ScalerKind `json:"kind"`
	Centers []float64  `json:"centers"`
	Scales  []float64  `json:"scales"`
}

// fitScaler computes center and scale for each column of matrix.
// The matrix must already be imputed: no NaN values.
//
// Degenerate columns (zero spread) get scale 1 so they map to constant zero
// instead of dividing by zero.
func fitScaler(kind ScalerKind, matrix [][]float64) *scalerParams {
	if len(matrix) == 0 {
		return &scalerParams{Kind: kind}
	}

	dim := len(matrix[0])
	p := &scalerParams{
		Kind:    kind,
		Centers: make([]float64, dim),
		Scales:  make([]float64, dim),
	}

	col := make([]float64, len(matrix))
	for j := 0; j < dim; j++ {
		for i, row := range matrix {
			col[i] = row[j]
		}

		var center, scale float64
		switch kind {
		case ScalerMinMax:
			lo, hi := col[0], col[0]
			for _, v := range col {
				if v < lo {
					lo = v
				}
				if v > hi {
					hi = v
				}
			}
			center, scale = lo, hi-lo
		case ScalerRobust:
			sorted := append([]float64(nil), col...)
			sort.Float64s(sorted)
			center = percentile(sorted, 0.50)
			scale = percentile(sorted, 0.75) - percentile(sorted, 0.25)
		default: // ScalerStandard
			center = mean(col)
			scale = stddev(col, center)
		}

		if scale == 0 {
			scale = 1
		}
		p.Centers[j] = center
		p.Scales[j] = scale
	}

	return p
}

// transform scales a single row in place into a new slice.
func (p *scalerParams) transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j := range row {
		out[j] = (row[j] - p.Centers[j]) / p.Scales[j]
	}
	return out
}

// transformAll scales every row of matrix.
func (p *scalerParams) transformAll(matrix [][]float64) [][]float64 {
	out := make([][]float64, len(matrix))
	for i, row := range matrix {
		out[i] = p.transform(row)
	}
	return out
}

// imputeMedians replaces NaN entries with the per-column median of the
// non-missing values, returning the medians used. A column with no observed
// values at all is filled with 0.
func imputeMedians(matrix [][]float64) []float64 {
	if len(matrix) == 0 {
		return nil
	}

	dim := len(matrix[0])
	medians := make([]float64, dim)
	observed := make([]float64, 0, len(matrix))

	for j := 0; j < dim; j++ {
		observed = observed[:0]
		for _, row := range matrix {
			if !math.IsNaN(row[j]) {
				observed = append(observed, row[j])
			}
		}

		if len(observed) > 0 {
			sort.Float64s(observed)
			medians[j] = percentile(observed, 0.50)
		}

		for _, row := range matrix {
			if math.IsNaN(row[j]) {
				row[j] = medians[j]
			}
		}
	}

	return medians
}

// percentile computes the q-th percentile (0 <= q <= 1) of sorted values
// using linear interpolation between closest ranks.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev computes the population standard deviation around m.
func stddev(values []float64, m float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
