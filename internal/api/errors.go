// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package api

import (
	"errors"
	"net/http"

	"github.com/tunegraph/tunegraph/internal/recommend"
)

// Error codes returned in the APIError envelope.
const (
	CodeValidationError     = "VALIDATION_ERROR"
	CodeTrackNotFound       = "TRACK_NOT_FOUND"
	CodeMissingVector       = "MISSING_VECTOR"
	CodeSnapshotEmpty       = "SNAPSHOT_EMPTY"
	CodeAuthenticationError = "AUTHENTICATION_ERROR"
	CodeUpstreamError       = "UPSTREAM_ERROR"
	CodeInternalError       = "INTERNAL_ERROR"
)

// mapServiceError converts a recommendation service error to an HTTP status
// and error code. Unknown errors map to INTERNAL_ERROR.
func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, recommend.ErrTrackNotFound):
		return http.StatusNotFound, CodeTrackNotFound
	case errors.Is(err, recommend.ErrMissingVector):
		return http.StatusUnprocessableEntity, CodeMissingVector
	case errors.Is(err, recommend.ErrSnapshotEmpty):
		return http.StatusServiceUnavailable, CodeSnapshotEmpty
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}

// metricStatus converts a recommendation service error to the status label
// used by the recommendation request counter.
func metricStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, recommend.ErrTrackNotFound):
		return "not_found"
	case errors.Is(err, recommend.ErrMissingVector):
		return "missing_vector"
	default:
		return "error"
	}
}
