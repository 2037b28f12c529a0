// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package pipeline

import (
	"math"
	"sort"

	"github.com/tunegraph/tunegraph/internal/models"
)

// attributeMatrix flattens track attributes into a dense matrix for the
// feature projector. Columns are the sorted union of attribute names across
// the batch; a track missing an attribute gets NaN there, which the projector
// imputes with the column median.
func attributeMatrix(tracks []models.Track) ([][]float64, []string) {
	names := make(map[string]struct{})
	for i := range tracks {
		for name := range tracks[i].Attributes {
			names[name] = struct{}{}
		}
	}
	if len(names) == 0 {
		return make([][]float64, len(tracks)), nil
	}

	columns := make([]string, 0, len(names))
	for name := range names {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	matrix := make([][]float64, len(tracks))
	for i := range tracks {
		row := make([]float64, len(columns))
		for j, col := range columns {
			if v, ok := tracks[i].Attributes[col]; ok {
				row[j] = v
			} else {
				row[j] = math.NaN()
			}
		}
		matrix[i] = row
	}

	return matrix, columns
}
