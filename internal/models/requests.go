// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package models

// RecommendRequest asks for tracks similar to a known one. The query track
// is given by ID or by name (with optional artist to disambiguate); at least
// one of the two must be present.
type RecommendRequest struct {
	TrackID       string `json:"track_id,omitempty"`
	TrackName     string `json:"track_name,omitempty"`
	ArtistName    string `json:"artist_name,omitempty"`
	K             int    `json:"k,omitempty" validate:"omitempty,min=1,max=50"`
	EmbeddingType string `json:"embedding_type,omitempty" validate:"omitempty,oneof=text feature combined"`
}

// RecommendResponse is the recommendation payload inside the APIResponse
// envelope.
type RecommendResponse struct {
	Query           Info             `json:"query"`
	Recommendations []Recommendation `json:"recommendations"`
	Total           int              `json:"total"`
	EmbeddingType   string           `json:"embedding_type"`
}

// SearchResponse lists tracks whose name or artist contains the query
// substring.
type SearchResponse struct {
	Query   string `json:"query"`
	Results []Info `json:"results"`
	Total   int    `json:"total"`
}

// TracksResponse is the paginated track listing payload.
type TracksResponse struct {
	Tracks     []Info         `json:"tracks"`
	Pagination PaginationInfo `json:"pagination"`
}

// SemanticSearchRequest searches the catalog by free-text concept, for
// example "sad acoustic songs". The query text is embedded and matched
// against the text-vector matrix.
type SemanticSearchRequest struct {
	Query string `json:"query" validate:"required,min=1"`
	K     int    `json:"k,omitempty" validate:"omitempty,min=1,max=50"`

	// MinSimilarity is a pointer so an explicit 0 stays distinguishable
	// from an absent field, which falls back to the server default.
	MinSimilarity *float64 `json:"min_similarity,omitempty" validate:"omitempty,min=0,max=1"`
}

// SemanticSearchResponse is the semantic search payload.
type SemanticSearchResponse struct {
	Query   string           `json:"query"`
	Results []Recommendation `json:"results"`
	Total   int              `json:"total"`
}
