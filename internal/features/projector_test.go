// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunegraph/tunegraph/internal/logging"
)

func newTestProjector(t *testing.T, cfg Config) *Projector {
	t.Helper()
	p, err := NewProjector(cfg, logging.Logger())
	require.NoError(t, err)
	return p
}

func TestNewProjectorRejectsUnknownScaler(t *testing.T) {
	_, err := NewProjector(Config{Scaler: "quantile", TargetDim: 10, UsePCA: true}, logging.Logger())
	assert.Error(t, err)
}

func TestNewProjectorRejectsNonPositiveTargetDim(t *testing.T) {
	_, err := NewProjector(Config{Scaler: "standard", TargetDim: 0, UsePCA: true}, logging.Logger())
	assert.Error(t, err)
}

func TestFitTransformStandardScaler(t *testing.T) {
	p := newTestProjector(t, Config{Scaler: "standard", TargetDim: 50, UsePCA: true})

	matrix := [][]float64{{1, 10}, {2, 20}, {3, 30}}
	out, err := p.FitTransform(matrix, []string{"tempo", "duration"})
	require.NoError(t, err)
	require.Len(t, out, 3)

	// Each column standardized to zero mean, unit variance.
	for j := 0; j < 2; j++ {
		var sum float64
		for _, row := range out {
			sum += row[j]
		}
		assert.InDelta(t, 0.0, sum/3, 1e-9)
	}
	assert.InDelta(t, -math.Sqrt(1.5), out[0][0], 1e-9)
	assert.InDelta(t, 0.0, out[1][0], 1e-9)
	assert.InDelta(t, math.Sqrt(1.5), out[2][0], 1e-9)

	stats := p.Stats()
	assert.Equal(t, 2, stats.FeaturesProcessed)
	assert.Equal(t, 3, stats.EmbeddingsGenerated)
	assert.Equal(t, 2, stats.OriginalDim)
	assert.Equal(t, 2, stats.FinalDim, "PCA must not run when dim <= target_dim")
	assert.Zero(t, stats.VarianceExplained)
}

func TestFitTransformMinMaxScaler(t *testing.T) {
	p := newTestProjector(t, Config{Scaler: "minmax", TargetDim: 50, UsePCA: false})

	matrix := [][]float64{{0}, {5}, {10}}
	out, err := p.FitTransform(matrix, []string{"energy"})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, out[0][0], 1e-9)
	assert.InDelta(t, 0.5, out[1][0], 1e-9)
	assert.InDelta(t, 1.0, out[2][0], 1e-9)
}

func TestFitTransformRobustScaler(t *testing.T) {
	p := newTestProjector(t, Config{Scaler: "robust", TargetDim: 50, UsePCA: false})

	// Median 3, IQR = 4 - 2 = 2. The outlier barely moves center or scale.
	matrix := [][]float64{{1}, {2}, {3}, {4}, {1000}}
	out, err := p.FitTransform(matrix, []string{"loudness"})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, out[2][0], 1e-9)
	assert.InDelta(t, -0.5, out[1][0], 1e-9)
	assert.InDelta(t, 0.5, out[3][0], 1e-9)
}

func TestFitTransformImputesMediansBeforeScaling(t *testing.T) {
	p := newTestProjector(t, Config{Scaler: "minmax", TargetDim: 50, UsePCA: false})

	nan := math.NaN()
	matrix := [][]float64{{0}, {nan}, {10}, {5}}
	out, err := p.FitTransform(matrix, []string{"tempo"})
	require.NoError(t, err)

	// Median of {0, 10, 5} is 5, so the imputed row scales like the value 5.
	assert.InDelta(t, 0.5, out[1][0], 1e-9)
	assert.InDelta(t, 0.5, out[3][0], 1e-9)
	// Original input untouched.
	assert.True(t, math.IsNaN(matrix[1][0]))
}

func TestFitTransformAllMissingColumnFilledWithZero(t *testing.T) {
	p := newTestProjector(t, Config{Scaler: "standard", TargetDim: 50, UsePCA: false})

	nan := math.NaN()
	matrix := [][]float64{{1, nan}, {2, nan}, {3, nan}}
	out, err := p.FitTransform(matrix, []string{"tempo", "valence"})
	require.NoError(t, err)

	// Constant zero column scales to zero everywhere.
	for _, row := range out {
		assert.InDelta(t, 0.0, row[1], 1e-9)
	}
}

func TestFitTransformConstantColumnDoesNotDivideByZero(t *testing.T) {
	p := newTestProjector(t, Config{Scaler: "standard", TargetDim: 50, UsePCA: false})

	matrix := [][]float64{{7}, {7}, {7}}
	out, err := p.FitTransform(matrix, []string{"key"})
	require.NoError(t, err)

	for _, row := range out {
		assert.False(t, math.IsNaN(row[0]))
		assert.InDelta(t, 0.0, row[0], 1e-9)
	}
}

func TestFitTransformNoColumnsReturnsUnchanged(t *testing.T) {
	p := newTestProjector(t, Config{Scaler: "standard", TargetDim: 50, UsePCA: true})

	matrix := [][]float64{{}, {}}
	out, err := p.FitTransform(matrix, nil)
	require.NoError(t, err)
	assert.Equal(t, matrix, out)
	assert.Zero(t, p.Stats().FeaturesProcessed)
}

func TestFitTransformAppliesPCAWhenWiderThanTarget(t *testing.T) {
	p := newTestProjector(t, Config{Scaler: "standard", TargetDim: 2, UsePCA: true})

	matrix := [][]float64{
		{1, 2, 3, 4},
		{2, 4, 6, 8},
		{3, 6, 9, 12},
		{1, 3, 2, 5},
		{4, 1, 8, 2},
	}
	out, err := p.FitTransform(matrix, []string{"a", "b", "c", "d"})
	require.NoError(t, err)

	require.Len(t, out, 5)
	for _, row := range out {
		assert.Len(t, row, 2)
	}

	stats := p.Stats()
	assert.Equal(t, 4, stats.OriginalDim)
	assert.Equal(t, 2, stats.FinalDim)
	assert.Greater(t, stats.VarianceExplained, 0.0)
	assert.LessOrEqual(t, stats.VarianceExplained, 1.0+1e-9)
}

func TestFitTransformPCADisabled(t *testing.T) {
	p := newTestProjector(t, Config{Scaler: "standard", TargetDim: 2, UsePCA: false})

	matrix := [][]float64{{1, 2, 3, 4}, {4, 3, 2, 1}, {2, 2, 2, 2}}
	out, err := p.FitTransform(matrix, []string{"a", "b", "c", "d"})
	require.NoError(t, err)

	for _, row := range out {
		assert.Len(t, row, 4)
	}
}

func TestTransformMatchesFitTransform(t *testing.T) {
	p := newTestProjector(t, Config{Scaler: "standard", TargetDim: 2, UsePCA: true})

	matrix := [][]float64{
		{1, 2, 3, 4},
		{2, 4, 6, 8},
		{3, 1, 9, 2},
		{5, 6, 1, 3},
	}
	out, err := p.FitTransform(matrix, []string{"a", "b", "c", "d"})
	require.NoError(t, err)

	for i, row := range matrix {
		got, err := p.Transform(row)
		require.NoError(t, err)
		require.Len(t, got, len(out[i]))
		for j := range got {
			assert.InDelta(t, out[i][j], got[j], 1e-9)
		}
	}
}

func TestTransformBeforeFit(t *testing.T) {
	p := newTestProjector(t, Config{Scaler: "standard", TargetDim: 2, UsePCA: true})
	_, err := p.Transform([]float64{1, 2})
	assert.Error(t, err)
}

func TestFittedStateRoundTrip(t *testing.T) {
	p := newTestProjector(t, Config{Scaler: "robust", TargetDim: 2, UsePCA: true})

	matrix := [][]float64{
		{1, 2, 3, 4},
		{2, 4, 6, 8},
		{3, 1, 9, 2},
		{5, 6, 1, 3},
	}
	_, err := p.FitTransform(matrix, []string{"a", "b", "c", "d"})
	require.NoError(t, err)

	encoded, err := p.State().Marshal()
	require.NoError(t, err)

	state, err := UnmarshalFittedState(encoded)
	require.NoError(t, err)

	restored, err := NewProjectorFromState(Config{Scaler: "robust", TargetDim: 2, UsePCA: true}, state, logging.Logger())
	require.NoError(t, err)

	want, err := p.Transform(matrix[2])
	require.NoError(t, err)
	got, err := restored.Transform(matrix[2])
	require.NoError(t, err)
	for j := range want {
		assert.InDelta(t, want[j], got[j], 1e-9)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.InDelta(t, 2.5, percentile(sorted, 0.50), 1e-12)
	assert.InDelta(t, 1.75, percentile(sorted, 0.25), 1e-12)
	assert.InDelta(t, 3.25, percentile(sorted, 0.75), 1e-12)
	assert.InDelta(t, 1.0, percentile(sorted, 0), 1e-12)
	assert.InDelta(t, 4.0, percentile(sorted, 1), 1e-12)
}
