// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package embed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// Config controls the HTTP embedding client.
type Config struct {
	// URL is the embedding endpoint, called with POST.
	URL string `koanf:"url"`

	// Model is the model name forwarded to the service. Optional.
	Model string `koanf:"model"`

	// BatchSize is the maximum number of texts per request.
	BatchSize int `koanf:"batch_size"`

	// Timeout bounds a single HTTP request.
	Timeout time.Duration `koanf:"timeout"`

	// MaxAttempts is the total number of tries per batch, first call
	// included. Only transient failures are retried.
	MaxAttempts int `koanf:"max_attempts"`

	// InitialBackoff is the first retry delay; later delays grow
	// exponentially up to ten times this value.
	InitialBackoff time.Duration `koanf:"initial_backoff"`

	// RequestsPerSecond rate-limits outgoing requests. Zero disables
	// client-side limiting.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:         25,
		Timeout:           30 * time.Second,
		MaxAttempts:       3,
		InitialBackoff:    time.Second,
		RequestsPerSecond: 5,
	}
}

// HTTPClient implements Embedder against an HTTP embedding service, with
// client-side rate limiting, exponential-backoff retries for transient
// failures and a circuit breaker around the upstream.
type HTTPClient struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[][]float64]
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu    sync.Mutex
	stats Stats
}

// NewHTTPClient creates a client for the given endpoint. Zero config fields
// fall back to DefaultConfig values.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPClient(cfg Config, logger zerolog.Logger) (*HTTPClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("embedding service URL is required")
	}

	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}

	l := logger.With().Str("component", "embed").Logger()

	breaker := gobreaker.NewCircuitBreaker[[][]float64](gobreaker.Settings{
		Name:        "embedding-service",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
		},
	})

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &HTTPClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		limiter: limiter,
		logger:  l,
	}, nil
}

// EmbedBatch embeds texts in BatchSize chunks. A chunk that fails after all
// retries yields nil vectors for its texts and processing continues; only
// context cancellation aborts the run.
func (c *HTTPClient) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	totalBatches := (len(texts) + c.cfg.BatchSize - 1) / c.cfg.BatchSize

	for i := 0; i < len(texts); i += c.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := i + c.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]
		batchNum := i/c.cfg.BatchSize + 1

		vectors, err := c.embedWithRetry(ctx, batch)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error().
				Err(err).
				Int("batch", batchNum).
				Int("total_batches", totalBatches).
				Int("texts", len(batch)).
				Msg("embedding batch failed, keeping positional gaps")
			for range batch {
				out = append(out, nil)
			}
			c.recordBatch(len(batch), 0, len(batch))
			continue
		}

		out = append(out, vectors...)
		c.recordBatch(len(batch), len(batch), 0)
	}

	return out, nil
}

// Embed embeds a single text, surfacing the upstream error.
func (c *HTTPClient) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := c.embedWithRetry(ctx, []string{text})
	if err != nil {
		c.recordBatch(1, 0, 1)
		return nil, err
	}
	c.recordBatch(1, 1, 0)
	return vectors[0], nil
}

// Stats returns a copy of the client's counters.
func (c *HTTPClient) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *HTTPClient) recordBatch(processed, generated, failed int) {
	c.mu.Lock()
	c.stats.TextsProcessed += processed
	c.stats.EmbeddingsGenerated += generated
	c.stats.Errors += failed
	c.mu.Unlock()
}

// embedWithRetry calls the service once per attempt, retrying transient
// failures with exponential backoff and re-raising the last error. An open
// circuit breaker and client errors (4xx) are terminal.
func (c *HTTPClient) embedWithRetry(ctx context.Context, batch []string) ([][]float64, error) {
	var vectors [][]float64

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialBackoff
	bo.MaxInterval = 10 * c.cfg.InitialBackoff

	attempt := 0
	op := func() error {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		result, err := c.breaker.Execute(func() ([][]float64, error) {
			return c.post(ctx, batch)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			var pe *permanentHTTPError
			if errors.As(err, &pe) {
				return backoff.Permanent(err)
			}
			c.logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Int("max_attempts", c.cfg.MaxAttempts).
				Msg("embedding request failed, retrying")
			return err
		}

		vectors = result
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(c.cfg.MaxAttempts-1)), ctx))
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

type embedRequest struct {
	Model string   `json:"model,omitempty"`
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// permanentHTTPError marks upstream responses that retrying cannot fix.
type permanentHTTPError struct {
	status int
	body   string
}

func (e *permanentHTTPError) Error() string {
	return fmt.Sprintf("embedding service returned %d: %s", e.status, e.body)
}

// post performs one request for one batch.
func (c *HTTPClient) post(ctx context.Context, batch []string) ([][]float64, error) {
	payload, err := json.Marshal(embedRequest{Model: c.cfg.Model, Texts: batch})
	if err != nil {
		return nil, fmt.Errorf("encoding embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling embedding service: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading embedding response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Fall through to decoding.
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("embedding service returned %d", resp.StatusCode)
	default:
		return nil, &permanentHTTPError{status: resp.StatusCode, body: string(body)}
	}

	var decoded embedResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decoding embedding response: %w", err)
	}
	if len(decoded.Embeddings) != len(batch) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors", len(batch), len(decoded.Embeddings))
	}

	return decoded.Embeddings, nil
}
