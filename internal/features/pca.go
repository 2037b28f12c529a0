// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package features

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// pcaParams holds a fitted principal-component basis.
//
// Components is k rows of length d: the top-k right singular vectors of the
// centered training matrix. Transform projects a d-dimensional row onto them.
type pcaParams struct {
	Mean              []float64   `json:"mean"`
	Components        [][]float64 `json:"components"`
	ExplainedVariance []float64   `json:"explained_variance"`
}

// fitPCA factorizes the centered matrix with a thin SVD and keeps the first
// k principal axes. k is clamped to min(rows, cols); fewer samples than
// requested components yields a smaller basis, not an error.
func fitPCA(matrix [][]float64, k int) (*pcaParams, error) {
	n := len(matrix)
	if n == 0 {
		return nil, fmt.Errorf("cannot fit PCA on an empty matrix")
	}
	dim := len(matrix[0])

	if k > dim {
		k = dim
	}
	if k > n {
		k = n
	}

	data := make([]float64, 0, n*dim)
	for _, row := range matrix {
		data = append(data, row...)
	}
	x := mat.NewDense(n, dim, data)

	means := make([]float64, dim)
	for j := 0; j < dim; j++ {
		means[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < dim; j++ {
			x.Set(i, j, x.At(i, j)-means[j])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, fmt.Errorf("SVD factorization failed")
	}

	// V's columns are the right singular vectors, ordered by singular value.
	var v mat.Dense
	svd.VTo(&v)

	singular := svd.Values(nil)

	var totalVar float64
	for _, s := range singular {
		totalVar += s * s
	}

	p := &pcaParams{
		Mean:              means,
		Components:        make([][]float64, k),
		ExplainedVariance: make([]float64, k),
	}
	for c := 0; c < k; c++ {
		axis := make([]float64, dim)
		for j := 0; j < dim; j++ {
			axis[j] = v.At(j, c)
		}
		p.Components[c] = axis
		if totalVar > 0 {
			p.ExplainedVariance[c] = singular[c] * singular[c] / totalVar
		}
	}

	return p, nil
}

// transform projects a single row onto the fitted basis.
func (p *pcaParams) transform(row []float64) []float64 {
	out := make([]float64, len(p.Components))
	for c, axis := range p.Components {
		var sum float64
		for j := range axis {
			sum += (row[j] - p.Mean[j]) * axis[j]
		}
		out[c] = sum
	}
	return out
}

// totalExplainedVariance sums the per-component explained variance ratios.
func (p *pcaParams) totalExplainedVariance() float64 {
	var sum float64
	for _, v := range p.ExplainedVariance {
		sum += v
	}
	return sum
}
