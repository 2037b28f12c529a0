// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

// Package models defines the shared data types that cross package
// boundaries: the catalog Track, API request types with their validation
// tags, and the response envelopes. Packages exchange these types instead
// of importing each other.
package models
