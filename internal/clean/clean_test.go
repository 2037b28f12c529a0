// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunegraph/tunegraph/internal/logging"
	"github.com/tunegraph/tunegraph/internal/models"
)

func TestNumericCleanerRangeClampAndMedianFill(t *testing.T) {
	c := NewNumericCleaner(NumericConfig{
		Ranges:                map[string]Range{"popularity": {Min: 0, Max: 100}},
		FillMissingWithMedian: true,
	}, logging.Logger())

	tracks := []models.Track{
		{ID: "1", Attributes: map[string]float64{"popularity": 50}},
		{ID: "2", Attributes: map[string]float64{"popularity": 250}},
		{ID: "3", Attributes: map[string]float64{"popularity": 80}},
		{ID: "4", Attributes: map[string]float64{}},
	}

	out, stats := c.Clean(tracks)
	require.Len(t, out, 4)

	// Out-of-range value replaced by the median of the valid ones (65).
	assert.InDelta(t, 65.0, out[1].Attributes["popularity"], 1e-9)
	assert.InDelta(t, 65.0, out[3].Attributes["popularity"], 1e-9)
	assert.InDelta(t, 50.0, out[0].Attributes["popularity"], 1e-9)
	assert.Equal(t, 2, stats.MissingFilled)

	// Input untouched.
	assert.InDelta(t, 250.0, tracks[1].Attributes["popularity"], 1e-9)
}

func TestNumericCleanerNoFillLeavesGaps(t *testing.T) {
	c := NewNumericCleaner(NumericConfig{
		Ranges:                map[string]Range{"popularity": {Min: 0, Max: 100}},
		FillMissingWithMedian: false,
	}, logging.Logger())

	tracks := []models.Track{
		{ID: "1", Attributes: map[string]float64{"popularity": -5}},
	}

	out, stats := c.Clean(tracks)
	_, present := out[0].Attributes["popularity"]
	assert.False(t, present)
	assert.Zero(t, stats.MissingFilled)
}

func TestNumericCleanerDropsOutliers(t *testing.T) {
	c := NewNumericCleaner(NumericConfig{
		Ranges:              map[string]Range{"playcount": {Min: 0, Max: 1e9}},
		DropOutliers:        true,
		OutlierStdThreshold: 2,
	}, logging.Logger())

	// Nine typical values plus one extreme: the extreme point sits about
	// 2.8 sigma out, everything else well inside the cutoff.
	tracks := make([]models.Track, 0, 10)
	for i := 0; i < 9; i++ {
		tracks = append(tracks, models.Track{
			ID:         string(rune('a' + i)),
			Attributes: map[string]float64{"playcount": 10},
		})
	}
	tracks = append(tracks, models.Track{
		ID:         "outlier",
		Attributes: map[string]float64{"playcount": 1000},
	})

	out, stats := c.Clean(tracks)
	require.Len(t, out, 9)
	assert.Equal(t, 1, stats.OutliersDropped)
	assert.Equal(t, 1, stats.RecordsDropped)
	for _, tr := range out {
		assert.NotEqual(t, "outlier", tr.ID)
	}
}

func TestTextCleanerNormalizesFields(t *testing.T) {
	c := NewTextCleaner(DefaultTextConfig(), logging.Logger())

	tracks := []models.Track{
		{ID: "1", Name: "  Mr.   Brightside \t", Artist: "The\nKillers", Album: " Hot Fuss "},
	}

	out, stats := c.Clean(tracks)
	require.Len(t, out, 1)
	assert.Equal(t, "Mr. Brightside", out[0].Name)
	assert.Equal(t, "The Killers", out[0].Artist)
	assert.Equal(t, "Hot Fuss", out[0].Album)
	assert.Zero(t, stats.RecordsDropped)
}

func TestTextCleanerDropsUnresolvableRecords(t *testing.T) {
	c := NewTextCleaner(DefaultTextConfig(), logging.Logger())

	tracks := []models.Track{
		{ID: "1", Name: "Valid", Artist: "Someone"},
		{ID: "2", Name: "   ", Artist: "Someone"},
		{ID: "3", Name: "No Artist", Artist: ""},
	}

	out, stats := c.Clean(tracks)
	require.Len(t, out, 1)
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, 2, stats.RecordsDropped)
	assert.Equal(t, 3, stats.RecordsProcessed)
}

func TestTextCleanerEnforcesMaxLength(t *testing.T) {
	c := NewTextCleaner(TextConfig{CollapseWhitespace: true, MinLength: 1, MaxLength: 5}, logging.Logger())

	tracks := []models.Track{
		{ID: "1", Name: "toolongname", Artist: "ok"},
	}
	out, _ := c.Clean(tracks)
	assert.Empty(t, out)
}

func TestTextCleanerDeduplicatesTags(t *testing.T) {
	c := NewTextCleaner(DefaultTextConfig(), logging.Logger())

	tracks := []models.Track{
		{ID: "1", Name: "Song", Artist: "Band", Tags: []string{"Rock", "rock", " ROCK ", "indie", ""}},
	}

	out, _ := c.Clean(tracks)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"Rock", "indie"}, out[0].Tags)
}

func TestQualityCheckerPasses(t *testing.T) {
	q := NewQualityChecker(QualityConfig{
		MinCompleteness:    0.7,
		MaxDuplicateRate:   0.05,
		RequiredAttributes: []string{"popularity"},
	}, logging.Logger())

	tracks := []models.Track{
		{ID: "1", Attributes: map[string]float64{"popularity": 1}},
		{ID: "2", Attributes: map[string]float64{"popularity": 2}},
		{ID: "3", Attributes: map[string]float64{"popularity": 3}},
	}

	report := q.Check(tracks)
	assert.True(t, report.Passed)
	assert.Empty(t, report.Issues)
}

func TestQualityCheckerFlagsIncompleteness(t *testing.T) {
	q := NewQualityChecker(QualityConfig{
		MinCompleteness:    0.7,
		MaxDuplicateRate:   0.05,
		RequiredAttributes: []string{"popularity"},
	}, logging.Logger())

	tracks := []models.Track{
		{ID: "1", Attributes: map[string]float64{"popularity": 1}},
		{ID: "2"},
		{ID: "3"},
	}

	report := q.Check(tracks)
	assert.False(t, report.Passed)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "popularity")
}

func TestQualityCheckerFlagsDuplicates(t *testing.T) {
	q := NewQualityChecker(DefaultQualityConfig(), logging.Logger())

	tracks := []models.Track{
		{ID: "1"}, {ID: "1"}, {ID: "2"}, {ID: "3"},
	}

	report := q.Check(tracks)
	assert.False(t, report.Passed)
	require.Len(t, report.Issues, 1)
	assert.Contains(t, report.Issues[0], "duplicate")
}

func TestQualityCheckerEmptyBatch(t *testing.T) {
	q := NewQualityChecker(DefaultQualityConfig(), logging.Logger())
	report := q.Check(nil)
	assert.False(t, report.Passed)
}

func TestStatsAdd(t *testing.T) {
	a := Stats{RecordsProcessed: 10, RecordsDropped: 1, MissingFilled: 2}
	a.Add(Stats{RecordsProcessed: 5, OutliersDropped: 3})
	assert.Equal(t, 15, a.RecordsProcessed)
	assert.Equal(t, 1, a.RecordsDropped)
	assert.Equal(t, 2, a.MissingFilled)
	assert.Equal(t, 3, a.OutliersDropped)
}
