// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

// Package clean normalizes raw track batches before feature extraction and
// embedding.
//
// Cleaners are independent values sharing only the Cleaner capability
// interface; the pipeline runs them in sequence and aggregates their stats.
// Quality checking is a separate gate that reports issues without mutating
// the batch.
package clean

import "github.com/tunegraph/tunegraph/internal/models"

// Stats counts what one cleaning pass did to a batch.
type Stats struct {
	RecordsProcessed int `json:"records_processed"`
	RecordsModified  int `json:"records_modified"`
	RecordsDropped   int `json:"records_dropped"`
	MissingFilled    int `json:"missing_filled"`
	OutliersDropped  int `json:"outliers_dropped"`
}

// Add accumulates another pass's stats into s.
func (s *Stats) Add(other Stats) {
	s.RecordsProcessed += other.RecordsProcessed
	s.RecordsModified += other.RecordsModified
	s.RecordsDropped += other.RecordsDropped
	s.MissingFilled += other.MissingFilled
	s.OutliersDropped += other.OutliersDropped
}

// Cleaner transforms a track batch. Implementations must not mutate the
// input slice; they return a new batch (possibly shorter, when records are
// dropped) together with what they did.
type Cleaner interface {
	Name() string
	Clean(tracks []models.Track) ([]models.Track, Stats)
}
