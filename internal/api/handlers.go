// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tunegraph/tunegraph/internal/auth"
	"github.com/tunegraph/tunegraph/internal/logging"
	"github.com/tunegraph/tunegraph/internal/metrics"
	"github.com/tunegraph/tunegraph/internal/middleware"
	"github.com/tunegraph/tunegraph/internal/models"
	"github.com/tunegraph/tunegraph/internal/recommend"
	"github.com/tunegraph/tunegraph/internal/validation"
)

// defaultMinSimilarity filters weak semantic search matches when the request
// does not set its own threshold.
const defaultMinSimilarity = 0.3

// RecommendService is the serving surface the handlers depend on. It is
// implemented by recommend.Service.
type RecommendService interface {
	Recommend(ctx context.Context, req models.RecommendRequest) (*models.RecommendResponse, error)
	SemanticSearch(ctx context.Context, query string, k int, minSimilarity float64) (*models.SemanticSearchResponse, error)
	Search(ctx context.Context, query string, limit int) (*models.SearchResponse, error)
	ListTracks(ctx context.Context, limit, offset int) (*models.TracksResponse, error)
	Health() models.HealthResponse
	Refresh(ctx context.Context) error
	SnapshotAge() time.Duration
}

// Handlers bundles the HTTP handlers and their dependencies.
type Handlers struct {
	svc     RecommendService
	jwt     *auth.JWTManager
	creds   *auth.CredentialVerifier
	secLog  *logging.SecurityLogger
	perfMon *middleware.PerformanceMonitor
	started time.Time
	version string
}

// NewHandlers creates the handler set. jwt and creds may be nil when
// authentication is disabled; the login route is not registered in that case.
func NewHandlers(svc RecommendService, jwt *auth.JWTManager, creds *auth.CredentialVerifier, perfMon *middleware.PerformanceMonitor, version string) *Handlers {
	return &Handlers{
		svc:     svc,
		jwt:     jwt,
		creds:   creds,
		secLog:  logging.NewSecurityLogger(),
		perfMon: perfMon,
		started: time.Now(),
		version: version,
	}
}

// handleHealth reports overall service health including catalog state.
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	respondSuccess(w, http.StatusOK, h.svc.Health(), started)
}

// handleLive is the liveness probe; it succeeds whenever the process serves
// requests.
func (h *Handlers) handleLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"}, time.Now())
}

// handleReady is the readiness probe; it fails until a catalog snapshot has
// been loaded.
func (h *Handlers) handleReady(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	health := h.svc.Health()
	if health.TotalTracks == 0 {
		respondError(w, http.StatusServiceUnavailable, CodeSnapshotEmpty, "no catalog snapshot loaded yet", nil)
		return
	}
	respondSuccess(w, http.StatusOK, health, started)
}

// handleLogin authenticates the admin user and issues a JWT.
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, "invalid JSON body", nil)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	ip := clientIP(r)
	userAgent := r.UserAgent()

	if err := h.creds.Verify(req.Username, req.Password); err != nil {
		h.secLog.LogLoginFailure(req.Username, ip, userAgent, "invalid credentials")
		respondError(w, http.StatusUnauthorized, CodeAuthenticationError, "invalid username or password", nil)
		return
	}

	token, err := h.jwt.GenerateToken(req.Username, "admin")
	if err != nil {
		logging.Error().Err(err).Msg("Failed to generate token")
		respondError(w, http.StatusInternalServerError, CodeInternalError, "failed to generate token", nil)
		return
	}

	h.secLog.LogLoginSuccess(req.Username, ip, userAgent)

	respondSuccess(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.jwt.SessionTimeout()),
		Username:  req.Username,
	}, time.Now())
}

// handleListTracks returns a page of the track catalog.
func (h *Handlers) handleListTracks(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit < 1 || limit > 1000 {
		respondError(w, http.StatusBadRequest, CodeValidationError, "limit must be between 1 and 1000", nil)
		return
	}
	if offset < 0 {
		respondError(w, http.StatusBadRequest, CodeValidationError, "offset must not be negative", nil)
		return
	}

	resp, err := h.svc.ListTracks(r.Context(), limit, offset)
	if err != nil {
		status, code := mapServiceError(err)
		respondError(w, status, code, err.Error(), nil)
		return
	}

	respondCacheable(w, r, http.StatusOK, resp, started)
}

// handleSearch performs substring search over track and artist names.
func (h *Handlers) handleSearch(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, CodeValidationError, "query parameter q is required", nil)
		return
	}
	limit := queryInt(r, "limit", 0)

	resp, err := h.svc.Search(r.Context(), query, limit)
	if err != nil {
		status, code := mapServiceError(err)
		respondError(w, status, code, err.Error(), nil)
		return
	}

	respondCacheable(w, r, http.StatusOK, resp, started)
}

// handleRecommendGET serves recommendations from query parameters.
func (h *Handlers) handleRecommendGET(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := models.RecommendRequest{
		TrackID:       q.Get("track_id"),
		TrackName:     q.Get("track_name"),
		ArtistName:    q.Get("artist_name"),
		K:             queryInt(r, "k", 0),
		EmbeddingType: q.Get("embedding_type"),
	}
	h.recommend(w, r, req)
}

// handleRecommendPOST serves recommendations from a JSON body.
func (h *Handlers) handleRecommendPOST(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, "invalid JSON body", nil)
		return
	}
	h.recommend(w, r, req)
}

// recommend runs the shared recommendation path for both methods.
func (h *Handlers) recommend(w http.ResponseWriter, r *http.Request, req models.RecommendRequest) {
	started := time.Now()

	if req.TrackID == "" && req.TrackName == "" {
		respondError(w, http.StatusBadRequest, CodeValidationError, "track_id or track_name is required", nil)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	resp, err := h.svc.Recommend(r.Context(), req)

	kind := req.EmbeddingType
	if kind == "" {
		kind = "default"
	}
	results := 0
	if resp != nil {
		results = resp.Total
	}
	metrics.RecordRecommendation(kind, metricStatus(err), time.Since(started), results)

	if err != nil {
		status, code := mapServiceError(err)
		details := map[string]interface{}{}
		if req.TrackID != "" {
			details["track_id"] = req.TrackID
		}
		if req.TrackName != "" {
			details["track_name"] = req.TrackName
		}
		respondError(w, status, code, err.Error(), details)
		return
	}

	respondSuccess(w, http.StatusOK, resp, started)
}

// handleSemanticSearch embeds a free-text query and matches it against the
// catalog's text vectors.
func (h *Handlers) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req models.SemanticSearchRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeValidationError, "invalid JSON body", nil)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	minSimilarity := float64(defaultMinSimilarity)
	if req.MinSimilarity != nil {
		minSimilarity = *req.MinSimilarity
	}

	resp, err := h.svc.SemanticSearch(r.Context(), req.Query, req.K, minSimilarity)
	if err != nil {
		// Catalog-state errors keep their usual mapping; anything else came
		// from the embedding service and surfaces as an upstream failure.
		if errors.Is(err, recommend.ErrSnapshotEmpty) {
			status, code := mapServiceError(err)
			metrics.RecordSemanticSearch("snapshot_empty")
			respondError(w, status, code, err.Error(), nil)
			return
		}
		metrics.RecordSemanticSearch("upstream_error")
		respondError(w, http.StatusBadGateway, CodeUpstreamError, err.Error(), nil)
		return
	}

	metrics.RecordSemanticSearch("ok")
	respondSuccess(w, http.StatusOK, resp, started)
}

// handleAdminReload forces a snapshot reload from storage.
func (h *Handlers) handleAdminReload(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	if err := h.svc.Refresh(r.Context()); err != nil {
		status, code := mapServiceError(err)
		respondError(w, status, code, err.Error(), nil)
		return
	}

	respondSuccess(w, http.StatusOK, h.svc.Health(), started)
}

// handleAdminStats reports endpoint latency percentiles and process uptime.
func (h *Handlers) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"version":              h.version,
		"uptime_seconds":       int64(time.Since(h.started).Seconds()),
		"snapshot_age_seconds": int64(h.svc.SnapshotAge().Seconds()),
		"endpoints":            h.perfMon.GetStats(),
	}, started)
}

// queryInt parses an integer query parameter, returning def when absent or
// unparsable.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// clientIP returns the remote IP for security logging. RealIP middleware has
// already resolved forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
