// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package clean

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tunegraph/tunegraph/internal/models"
)

// Range bounds a numeric attribute's valid values, inclusive.
type Range struct {
	Min float64 `koanf:"min"`
	Max float64 `koanf:"max"`
}

// NumericConfig controls numeric attribute cleaning.
type NumericConfig struct {
	// Ranges maps attribute names to their valid range. Values outside the
	// range are treated as missing.
	Ranges map[string]Range `koanf:"ranges"`

	// FillMissingWithMedian replaces missing attribute values with the
	// batch median of the observed values for that attribute.
	FillMissingWithMedian bool `koanf:"fill_missing_with_median"`

	// DropOutliers removes records whose attribute value lies more than
	// OutlierStdThreshold standard deviations from the batch mean.
	DropOutliers bool `koanf:"drop_outliers"`

	// OutlierStdThreshold is the sigma cutoff used when DropOutliers is set.
	OutlierStdThreshold float64 `koanf:"outlier_std_threshold"`
}

// DefaultNumericConfig returns the default numeric cleaning configuration.
func DefaultNumericConfig() NumericConfig {
	return NumericConfig{
		Ranges: map[string]Range{
			"popularity":  {Min: 0, Max: 100},
			"duration_ms": {Min: 0, Max: 3600000},
			"explicit":    {Min: 0, Max: 1},
		},
		FillMissingWithMedian: true,
		DropOutliers:          false,
		OutlierStdThreshold:   3,
	}
}

// NumericCleaner validates ranges, fills missing attributes with batch
// medians and optionally drops sigma outliers.
type NumericCleaner struct {
	cfg    NumericConfig
	logger zerolog.Logger
}

// NewNumericCleaner creates a NumericCleaner. A zero threshold falls back to
// the default.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewNumericCleaner(cfg NumericConfig, logger zerolog.Logger) *NumericCleaner {
	if cfg.OutlierStdThreshold <= 0 {
		cfg.OutlierStdThreshold = DefaultNumericConfig().OutlierStdThreshold
	}
	return &NumericCleaner{
		cfg:    cfg,
		logger: logger.With().Str("component", "clean").Str("cleaner", "numeric").Logger(),
	}
}

// Name implements Cleaner.
func (c *NumericCleaner) Name() string { return "numeric" }

// Clean implements Cleaner.
func (c *NumericCleaner) Clean(tracks []models.Track) ([]models.Track, Stats) {
	stats := Stats{RecordsProcessed: len(tracks)}
	if len(tracks) == 0 {
		return nil, stats
	}

	out := make([]models.Track, len(tracks))
	for i, t := range tracks {
		out[i] = t
		out[i].Attributes = copyAttributes(t.Attributes)
	}

	for field, bounds := range c.cfg.Ranges {
		modified := c.cleanField(out, field, bounds, &stats)
		if modified > 0 {
			c.logger.Debug().Str("field", field).Int("modified", modified).Msg("numeric field cleaned")
		}
	}

	if c.cfg.DropOutliers {
		for field := range c.cfg.Ranges {
			out = c.dropOutliers(out, field, &stats)
		}
	}

	stats.RecordsModified = len(out)
	c.logger.Info().
		Int("processed", stats.RecordsProcessed).
		Int("missing_filled", stats.MissingFilled).
		Int("outliers_dropped", stats.OutliersDropped).
		Msg("numeric cleaning complete")

	return out, stats
}

// cleanField invalidates out-of-range values and fills gaps with the batch
// median. Returns the number of values touched.
func (c *NumericCleaner) cleanField(tracks []models.Track, field string, bounds Range, stats *Stats) int {
	modified := 0
	observed := make([]float64, 0, len(tracks))

	for i := range tracks {
		v, ok := tracks[i].Attributes[field]
		if !ok {
			continue
		}
		if math.IsNaN(v) || v < bounds.Min || v > bounds.Max {
			delete(tracks[i].Attributes, field)
			modified++
			continue
		}
		observed = append(observed, v)
	}

	if !c.cfg.FillMissingWithMedian || len(observed) == 0 {
		return modified
	}

	sort.Float64s(observed)
	median := observed[len(observed)/2]
	if len(observed)%2 == 0 {
		median = (observed[len(observed)/2-1] + observed[len(observed)/2]) / 2
	}

	for i := range tracks {
		if _, ok := tracks[i].Attributes[field]; !ok {
			if tracks[i].Attributes == nil {
				tracks[i].Attributes = make(map[string]float64)
			}
			tracks[i].Attributes[field] = median
			stats.MissingFilled++
			modified++
		}
	}

	return modified
}

// dropOutliers removes records beyond the sigma threshold for one field.
func (c *NumericCleaner) dropOutliers(tracks []models.Track, field string, stats *Stats) []models.Track {
	values := make([]float64, 0, len(tracks))
	for i := range tracks {
		if v, ok := tracks[i].Attributes[field]; ok {
			values = append(values, v)
		}
	}
	if len(values) < 2 {
		return tracks
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(values)-1))
	if std == 0 {
		return tracks
	}

	cutoff := c.cfg.OutlierStdThreshold * std
	kept := tracks[:0]
	for i := range tracks {
		v, ok := tracks[i].Attributes[field]
		if ok && math.Abs(v-mean) > cutoff {
			stats.OutliersDropped++
			stats.RecordsDropped++
			continue
		}
		kept = append(kept, tracks[i])
	}
	return kept
}

func copyAttributes(attrs map[string]float64) map[string]float64 {
	if attrs == nil {
		return nil
	}
	out := make(map[string]float64, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
