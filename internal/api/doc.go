// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

/*
Package api implements the HTTP serving surface.

Routes:

	GET  /metrics                    Prometheus scrape endpoint
	GET  /api/v1/health              service health including catalog state
	GET  /api/v1/health/live         liveness probe
	GET  /api/v1/health/ready        readiness probe (503 until a snapshot loads)
	POST /api/v1/auth/login          JWT login (registered in jwt mode only)
	GET  /api/v1/tracks              paginated catalog listing
	GET  /api/v1/search              substring search over names and artists
	GET  /api/v1/recommend           recommendations via query parameters
	POST /api/v1/recommend           recommendations via JSON body
	POST /api/v1/recommend/semantic  free-text semantic search
	POST /api/v1/admin/reload        force a snapshot reload (admin role)
	GET  /api/v1/admin/stats         latency percentiles and uptime (admin role)

Every response uses the models.APIResponse envelope with a status of
"success" or "error". Error payloads carry a stable machine-readable code
(TRACK_NOT_FOUND, MISSING_VECTOR, VALIDATION_ERROR, ...) alongside a
human-readable message.

The middleware stack is, outermost first: RealIP, RequestID, Recoverer,
security headers, Prometheus instrumentation, the performance monitor, CORS,
gzip compression and per-IP rate limiting (httprate). Authentication wraps
the data routes; the admin group additionally requires the admin role.
*/
package api
