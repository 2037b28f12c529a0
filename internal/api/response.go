// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package api

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tunegraph/tunegraph/internal/logging"
	"github.com/tunegraph/tunegraph/internal/models"
)

// respondJSON writes an APIResponse envelope with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		// Headers are already sent; all we can do is log.
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, statusCode int, data interface{}, started time.Time) {
	respondJSON(w, statusCode, models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(started).Milliseconds(),
		},
	})
}

// respondError wraps an error code and message in an error envelope.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	respondJSON(w, statusCode, models.APIResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
		},
	})
}

// respondCacheable writes a success envelope with an ETag over the data
// payload. The envelope metadata changes per request, so only the payload is
// hashed; a matching If-None-Match short-circuits to 304 with no body.
func respondCacheable(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}, started time.Time) {
	payload, err := json.Marshal(data)
	if err == nil {
		sum := sha256.Sum256(payload)
		tag := fmt.Sprintf("%q", hex.EncodeToString(sum[:16]))
		w.Header().Set("ETag", tag)
		if r.Header.Get("If-None-Match") == tag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	respondSuccess(w, statusCode, data, started)
}

// decodeJSONBody decodes a request body into dst, rejecting unknown fields.
func decodeJSONBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
