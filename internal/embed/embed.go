// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

// Package embed talks to the external text-embedding service.
//
// The service is a collaborator, not part of this system: callers depend on
// the Embedder interface and the HTTP client is one implementation of it.
// Batch results keep positional correspondence with their inputs; a batch
// that fails after retries contributes one nil vector per input text instead
// of aborting the whole run.
package embed

import "context"

// Embedder produces dense text embeddings.
type Embedder interface {
	// EmbedBatch embeds texts in order. The result always has len(texts)
	// entries; entries whose batch failed upstream are nil. The returned
	// error is non-nil only for unrecoverable conditions such as context
	// cancellation, never for individual batch failures.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Embed embeds a single text. Unlike EmbedBatch it returns the upstream
	// error directly, since the caller has nothing without the vector.
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Stats counts what an embedder has processed.
type Stats struct {
	TextsProcessed      int `json:"texts_processed"`
	EmbeddingsGenerated int `json:"embeddings_generated"`
	Errors              int `json:"errors"`
}
