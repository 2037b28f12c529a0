// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package logging

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

type correlationIDKey struct{}

// ContextWithRequestID stores the request ID assigned by the request-ID
// middleware.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID, or "" when none was set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ContextWithNewCorrelationID stores a fresh correlation ID. Correlation IDs
// are short (8 hex characters) because they appear on every log line of a
// request and full UUIDs drown the output.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, uuid.New().String()[:8])
}

// CorrelationIDFromContext returns the correlation ID, or "" when none was
// set.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}
