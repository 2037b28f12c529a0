// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package models

// Track is one catalog record: identity, display metadata, scalar numeric
// attributes and up to three embedding vectors.
//
// A nil vector means "not computed" for that record. This is distinct from a
// vector that was computed and happens to be all zeros, so absent embeddings
// are never represented as empty slices. Within one loaded snapshot every
// present vector of a given kind has the same dimension.
type Track struct {
	ID     string `json:"track_id"`
	Name   string `json:"track_name"`
	Artist string `json:"artist_name"`
	Album  string `json:"album_name,omitempty"`

	// Attributes holds the scalar numeric metadata used for feature
	// embeddings (popularity, duration, tag counts and similar). Missing
	// attributes are simply absent from the map.
	Attributes map[string]float64 `json:"attributes,omitempty"`

	// Tags are free-form descriptors appended to the text representation.
	Tags []string `json:"tags,omitempty"`

	SpotifyURL string `json:"spotify_url,omitempty"`

	TextVector     []float64 `json:"-"`
	FeatureVector  []float64 `json:"-"`
	CombinedVector []float64 `json:"-"`
}

// Vector returns the track's embedding of the given kind, or nil when that
// embedding has not been computed. Kind must be one of "text", "feature" or
// "combined"; anything else yields nil.
func (t *Track) Vector(kind string) []float64 {
	switch kind {
	case "text":
		return t.TextVector
	case "feature":
		return t.FeatureVector
	case "combined":
		return t.CombinedVector
	default:
		return nil
	}
}

// Info is the compact track representation returned by list and search
// endpoints.
type Info struct {
	ID     string `json:"track_id"`
	Name   string `json:"track_name"`
	Artist string `json:"artist_name"`
	Album  string `json:"album_name,omitempty"`
}

// Summary returns the compact representation of t.
func (t *Track) Summary() Info {
	return Info{
		ID:     t.ID,
		Name:   t.Name,
		Artist: t.Artist,
		Album:  t.Album,
	}
}

// Recommendation is one scored result in a recommendation or semantic search
// response. Scores are rounded to 4 decimals before they reach clients.
type Recommendation struct {
	ID     string  `json:"track_id"`
	Name   string  `json:"track_name"`
	Artist string  `json:"artist_name"`
	Album  string  `json:"album_name,omitempty"`
	Score  float64 `json:"similarity_score"`
}
