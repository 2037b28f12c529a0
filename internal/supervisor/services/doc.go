// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

// Package services provides suture service wrappers for the long-running
// parts of the process: the pipeline scheduler and the snapshot refresher.
// The HTTP server implements suture.Service directly in the api package.
package services
