// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package models

import (
	"time"
)

// APIResponse is the standardized wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses,
// with metadata for observability and caching information.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"total": 10, "recommendations": [...]},
//	  "metadata": {
//	    "timestamp": "2026-08-25T12:00:00Z",
//	    "query_time_ms": 4,
//	    "cached": true
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "TRACK_NOT_FOUND",
//	    "message": "no track matches the given name",
//	    "details": {"track_name": "Mr. Brightside"}
//	  },
//	  "metadata": {"timestamp": "2026-08-25T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability.
//
// Fields:
//   - Timestamp: Server time when the response was generated (RFC3339)
//   - QueryTimeMS: Handler execution time in milliseconds
//   - Cached: Whether the answer came from the in-memory snapshot without
//     touching storage (omitted if false)
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError carries structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - TRACK_NOT_FOUND: No track matched the resolution request
//   - MISSING_VECTOR: The resolved track lacks the requested embedding
//   - SNAPSHOT_EMPTY: No data has been loaded yet
//   - AUTHENTICATION_ERROR: Invalid or missing credentials
//   - UPSTREAM_ERROR: The embedding service failed
//   - INTERNAL_ERROR: Unexpected server failure
//   - RATE_LIMIT_EXCEEDED: Too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PaginationInfo describes offset pagination for the track listing endpoint.
type PaginationInfo struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	HasMore    bool `json:"has_more"`
	TotalCount int  `json:"total_count"`
}

// LoginRequest is a JWT authentication request.
//
// Security:
//   - Password is transmitted in plaintext (HTTPS required)
//   - Checked against a bcrypt hash when one is configured
//   - Login endpoint is rate limited per IP
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the signed JWT for subsequent requests, sent as
// Authorization: Bearer <token>.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}

// HealthResponse reports service readiness.
type HealthResponse struct {
	Status           string `json:"status"`
	TotalTracks      int    `json:"total_tracks"`
	EmbeddingsCached bool   `json:"embeddings_cached"`
}
