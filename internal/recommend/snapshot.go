// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package recommend

import (
	"strings"
	"time"

	"github.com/tunegraph/tunegraph/internal/models"
)

// Embedding kinds a request may select.
const (
	EmbeddingText     = "text"
	EmbeddingFeature  = "feature"
	EmbeddingCombined = "combined"
)

// snapshot is one immutable view of the catalog: the tracks, lookup indexes
// and per-kind vector matrices, all built once at load time. Matrix row i
// corresponds to tracks[i]; a nil row marks a track without that embedding
// and is excluded from every search over that matrix.
type snapshot struct {
	tracks   []models.Track
	byID     map[string]int
	byName   map[string][]int
	matrices map[string][][]float64
	unusable map[string][]int
	loadedAt time.Time
}

func newSnapshot(tracks []models.Track, loadedAt time.Time) *snapshot {
	s := &snapshot{
		tracks:   tracks,
		byID:     make(map[string]int, len(tracks)),
		byName:   make(map[string][]int, len(tracks)),
		matrices: make(map[string][][]float64, 3),
		unusable: make(map[string][]int, 3),
		loadedAt: loadedAt,
	}

	for i := range tracks {
		s.byID[tracks[i].ID] = i
		nameKey := strings.ToLower(tracks[i].Name)
		s.byName[nameKey] = append(s.byName[nameKey], i)
	}

	for _, kind := range []string{EmbeddingText, EmbeddingFeature, EmbeddingCombined} {
		matrix := make([][]float64, len(tracks))
		var missing []int
		for i := range tracks {
			matrix[i] = tracks[i].Vector(kind)
			if matrix[i] == nil {
				missing = append(missing, i)
			}
		}
		s.matrices[kind] = matrix
		s.unusable[kind] = missing
	}

	return s
}

// matrix returns the vector matrix for one embedding kind.
func (s *snapshot) matrix(kind string) [][]float64 {
	return s.matrices[kind]
}

// excludeWith returns the indices unusable as candidates for kind plus the
// given extra indices. The result is a fresh slice.
func (s *snapshot) excludeWith(kind string, extra ...int) []int {
	base := s.unusable[kind]
	out := make([]int, 0, len(base)+len(extra))
	out = append(out, base...)
	out = append(out, extra...)
	return out
}

// age reports how old the snapshot is.
func (s *snapshot) age(now time.Time) time.Duration {
	return now.Sub(s.loadedAt)
}
