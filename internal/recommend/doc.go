// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

// Package recommend is the serving-side core: it resolves query tracks,
// searches the in-memory vector matrices and shapes recommendation
// responses.
//
// The catalog is served from an immutable snapshot built on load. Updates
// only happen by full reload, either when the snapshot TTL lapses or through
// an explicit Refresh; there is no incremental update path. The snapshot
// pointer is swapped atomically so readers always see a complete catalog.
//
// Track resolution is a short state machine (ID, exact name, fuzzy name)
// documented on Service.resolve. Missing embeddings propagate as
// ErrMissingVector rather than being zero-filled.
package recommend
