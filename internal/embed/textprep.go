// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package embed

import (
	"strconv"
	"strings"

	"github.com/tunegraph/tunegraph/internal/models"
)

// PrepareText builds the single text fed to the embedding model for one
// track. Configured fields are joined with " | " in order; empty fields are
// skipped. When includeTags is set and the track has tags, a trailing
// "Tags: a, b, c" part is appended.
//
// Field names resolve against the track's identity columns first
// (track_name, artist_name, album_name), then against its numeric attribute
// map. Unknown fields are skipped silently so a shared field list works
// across datasets with different attribute coverage.
func PrepareText(t *models.Track, fields []string, includeTags bool) string {
	parts := make([]string, 0, len(fields)+1)

	for _, field := range fields {
		var value string
		switch field {
		case "track_name":
			value = t.Name
		case "artist_name":
			value = t.Artist
		case "album_name":
			value = t.Album
		default:
			if v, ok := t.Attributes[field]; ok {
				value = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if value != "" {
			parts = append(parts, value)
		}
	}

	if includeTags && len(t.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(t.Tags, ", "))
	}

	return strings.Join(parts, " | ")
}

// PrepareTexts builds one embedding input per track, preserving order.
func PrepareTexts(tracks []models.Track, fields []string, includeTags bool) []string {
	texts := make([]string, len(tracks))
	for i := range tracks {
		texts[i] = PrepareText(&tracks[i], fields, includeTags)
	}
	return texts
}
