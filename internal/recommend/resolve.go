// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package recommend

import (
	"strings"
)

// resolve runs the track resolution state machine against a snapshot and
// returns the matched track's index.
//
// Stages, in order:
//  1. Exact track ID. A present-but-unknown ID is terminal; name matching is
//     never attempted as a fallback.
//  2. Case-insensitive exact name, narrowed by case-insensitive exact artist
//     when the name is ambiguous and an artist was given. Remaining ties go
//     to the lowest index.
//  3. Fuzzy scan (when enabled): edit-distance ratio over names, blended
//     0.7 name + 0.3 artist when an artist was given; the single best match
//     wins if it reaches the threshold.
//
// Anything else is ErrTrackNotFound.
func (svc *Service) resolve(snap *snapshot, trackID, name, artist string) (int, error) {
	if trackID != "" {
		idx, ok := snap.byID[trackID]
		if !ok {
			return 0, ErrTrackNotFound
		}
		return idx, nil
	}

	if name == "" {
		return 0, ErrTrackNotFound
	}

	if idx, ok := resolveExactName(snap, name, artist); ok {
		return idx, nil
	}

	if svc.cfg.FuzzyMatching {
		if idx, ok := svc.resolveFuzzy(snap, name, artist); ok {
			return idx, nil
		}
	}

	return 0, ErrTrackNotFound
}

func resolveExactName(snap *snapshot, name, artist string) (int, bool) {
	candidates := snap.byName[strings.ToLower(name)]
	if len(candidates) == 0 {
		return 0, false
	}

	if len(candidates) > 1 && artist != "" {
		narrowed := candidates[:0:0]
		for _, idx := range candidates {
			if strings.EqualFold(snap.tracks[idx].Artist, artist) {
				narrowed = append(narrowed, idx)
			}
		}
		// An artist that matches none of the name candidates eliminates the
		// exact match itself; resolution falls through to the fuzzy stage.
		if len(narrowed) == 0 {
			return 0, false
		}
		candidates = narrowed
	}

	// Indices were appended in ascending order, so [0] is deterministic.
	return candidates[0], true
}

func (svc *Service) resolveFuzzy(snap *snapshot, name, artist string) (int, bool) {
	bestIdx := -1
	bestScore := 0.0

	for i := range snap.tracks {
		score := fuzzyRatio(name, snap.tracks[i].Name)
		if artist != "" {
			score = 0.7*score + 0.3*fuzzyRatio(artist, snap.tracks[i].Artist)
		}
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestScore < svc.cfg.FuzzyThreshold {
		return 0, false
	}

	svc.logger.Debug().
		Str("query", name).
		Str("matched", snap.tracks[bestIdx].Name).
		Float64("score", bestScore).
		Msg("fuzzy match resolved")

	return bestIdx, true
}
