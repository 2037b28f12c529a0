// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package recommend

import "errors"

// Sentinel errors exposed to the API layer. Handlers map these to response
// codes; everything else is an internal error.
var (
	// ErrTrackNotFound means the resolution state machine exhausted all
	// stages without a match.
	ErrTrackNotFound = errors.New("track not found")

	// ErrMissingVector means the resolved track lacks the embedding kind
	// the request asked for.
	ErrMissingVector = errors.New("track has no embedding of the requested type")

	// ErrSnapshotEmpty means the catalog has no tracks loaded yet.
	ErrSnapshotEmpty = errors.New("no tracks loaded")
)
