// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package recommend

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tunegraph/tunegraph/internal/embed"
	"github.com/tunegraph/tunegraph/internal/models"
	"github.com/tunegraph/tunegraph/internal/similarity"
)

// Loader fetches the full catalog snapshot from storage.
type Loader interface {
	LoadTracks(ctx context.Context) ([]models.Track, error)
}

// Config holds the recommendation knobs.
type Config struct {
	// EmbeddingType is the default vector kind: text, feature or combined.
	EmbeddingType string `koanf:"embedding_type"`

	// DefaultK is the result count when a request does not specify one.
	DefaultK int `koanf:"default_k"`

	// MaxK caps per-request result counts.
	MaxK int `koanf:"max_k"`

	// SimilarityMetric is cosine, euclidean or dot.
	SimilarityMetric string `koanf:"similarity_metric"`

	// ExcludeSameArtist drops candidates by the query track's artist.
	ExcludeSameArtist bool `koanf:"exclude_same_artist"`

	// MinSimilarityThreshold drops candidates scoring below it.
	MinSimilarityThreshold float64 `koanf:"min_similarity_threshold"`

	// FuzzyMatching enables the fuzzy name-resolution stage.
	FuzzyMatching bool `koanf:"fuzzy_matching"`

	// FuzzyThreshold is the minimum fuzzy score that counts as a match.
	FuzzyThreshold float64 `koanf:"fuzzy_threshold"`

	// SnapshotTTL bounds how long a loaded snapshot is served before the
	// catalog is re-read. Zero or negative disables expiry.
	SnapshotTTL time.Duration `koanf:"snapshot_ttl"`
}

// DefaultConfig returns the default recommendation configuration.
func DefaultConfig() Config {
	return Config{
		EmbeddingType:          EmbeddingCombined,
		DefaultK:               10,
		MaxK:                   50,
		SimilarityMetric:       string(similarity.MetricCosine),
		ExcludeSameArtist:      false,
		MinSimilarityThreshold: 0,
		FuzzyMatching:          true,
		FuzzyThreshold:         0.8,
		SnapshotTTL:            time.Hour,
	}
}

// Service answers recommendation, search and semantic-search queries over an
// in-memory catalog snapshot.
//
// The snapshot is loaded lazily, swapped atomically and re-loaded after
// SnapshotTTL; readers never block on a refresh already holding a usable
// snapshot. All methods are safe for concurrent use.
type Service struct {
	cfg      Config
	loader   Loader
	engine   *similarity.Engine
	embedder embed.Embedder
	logger   zerolog.Logger
	now      func() time.Time

	snap      atomic.Pointer[snapshot]
	refreshMu sync.Mutex
}

// NewService creates the service. The embedder may be nil, which disables
// semantic search. Invalid metric or embedding type fail construction.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(cfg Config, loader Loader, embedder embed.Embedder, logger zerolog.Logger) (*Service, error) {
	def := DefaultConfig()
	if cfg.EmbeddingType == "" {
		cfg.EmbeddingType = def.EmbeddingType
	}
	if cfg.DefaultK <= 0 {
		cfg.DefaultK = def.DefaultK
	}
	if cfg.MaxK <= 0 {
		cfg.MaxK = def.MaxK
	}
	if cfg.SimilarityMetric == "" {
		cfg.SimilarityMetric = def.SimilarityMetric
	}
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = def.FuzzyThreshold
	}

	if err := validateEmbeddingType(cfg.EmbeddingType); err != nil {
		return nil, err
	}

	l := logger.With().Str("component", "recommend").Logger()

	engine, err := similarity.NewEngine(cfg.SimilarityMetric, l)
	if err != nil {
		return nil, err
	}

	l.Info().
		Str("embedding_type", cfg.EmbeddingType).
		Str("metric", cfg.SimilarityMetric).
		Int("default_k", cfg.DefaultK).
		Dur("snapshot_ttl", cfg.SnapshotTTL).
		Msg("recommender initialized")

	return &Service{
		cfg:      cfg,
		loader:   loader,
		engine:   engine,
		embedder: embedder,
		logger:   l,
		now:      time.Now,
	}, nil
}

func validateEmbeddingType(kind string) error {
	switch kind {
	case EmbeddingText, EmbeddingFeature, EmbeddingCombined:
		return nil
	default:
		return fmt.Errorf("unsupported embedding type: %q", kind)
	}
}

// Recommend returns up to req.K tracks similar to the resolved query track.
func (svc *Service) Recommend(ctx context.Context, req models.RecommendRequest) (*models.RecommendResponse, error) {
	kind := req.EmbeddingType
	if kind == "" {
		kind = svc.cfg.EmbeddingType
	}
	if err := validateEmbeddingType(kind); err != nil {
		return nil, err
	}
	k := svc.clampK(req.K)

	snap, err := svc.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	qi, err := svc.resolve(snap, req.TrackID, req.TrackName, req.ArtistName)
	if err != nil {
		return nil, err
	}
	query := &snap.tracks[qi]

	queryVector := query.Vector(kind)
	if queryVector == nil {
		return nil, fmt.Errorf("track %s: %w (%s)", query.ID, ErrMissingVector, kind)
	}

	// One extra so the ranked list survives the self skip below even if the
	// exclusion list were bypassed.
	matches := svc.engine.FindSimilar(queryVector, snap.matrix(kind), k+1, snap.excludeWith(kind, qi))

	recommendations := make([]models.Recommendation, 0, k)
	for _, m := range matches {
		if m.Index == qi {
			continue
		}
		candidate := &snap.tracks[m.Index]
		if svc.cfg.ExcludeSameArtist && strings.EqualFold(candidate.Artist, query.Artist) {
			continue
		}
		if m.Score < svc.cfg.MinSimilarityThreshold {
			continue
		}
		recommendations = append(recommendations, models.Recommendation{
			ID:     candidate.ID,
			Name:   candidate.Name,
			Artist: candidate.Artist,
			Album:  candidate.Album,
			Score:  round4(m.Score),
		})
		if len(recommendations) == k {
			break
		}
	}

	return &models.RecommendResponse{
		Query:           query.Summary(),
		Recommendations: recommendations,
		Total:           len(recommendations),
		EmbeddingType:   kind,
	}, nil
}

// SemanticSearch embeds free text and searches the text-vector matrix.
func (svc *Service) SemanticSearch(ctx context.Context, query string, k int, minSimilarity float64) (*models.SemanticSearchResponse, error) {
	if svc.embedder == nil {
		return nil, fmt.Errorf("semantic search is not available: no embedder configured")
	}
	k = svc.clampK(k)

	snap, err := svc.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	queryVector, err := svc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches := svc.engine.FindSimilar(queryVector, snap.matrix(EmbeddingText), k, snap.excludeWith(EmbeddingText))

	results := make([]models.Recommendation, 0, len(matches))
	for _, m := range matches {
		if m.Score < minSimilarity {
			continue
		}
		t := &snap.tracks[m.Index]
		results = append(results, models.Recommendation{
			ID:     t.ID,
			Name:   t.Name,
			Artist: t.Artist,
			Album:  t.Album,
			Score:  round4(m.Score),
		})
	}

	return &models.SemanticSearchResponse{
		Query:   query,
		Results: results,
		Total:   len(results),
	}, nil
}

// Search lists tracks whose name or artist contains the query substring,
// case-insensitively, in catalog order.
func (svc *Service) Search(ctx context.Context, query string, limit int) (*models.SearchResponse, error) {
	if limit <= 0 {
		limit = svc.cfg.DefaultK
	}
	if limit > svc.cfg.MaxK {
		limit = svc.cfg.MaxK
	}

	snap, err := svc.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	results := make([]models.Info, 0, limit)
	for i := range snap.tracks {
		t := &snap.tracks[i]
		if strings.Contains(strings.ToLower(t.Name), needle) ||
			strings.Contains(strings.ToLower(t.Artist), needle) {
			results = append(results, t.Summary())
			if len(results) == limit {
				break
			}
		}
	}

	return &models.SearchResponse{
		Query:   query,
		Results: results,
		Total:   len(results),
	}, nil
}

// ListTracks pages through the catalog in track-ID order.
func (svc *Service) ListTracks(ctx context.Context, limit, offset int) (*models.TracksResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	if offset < 0 {
		offset = 0
	}

	snap, err := svc.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	total := len(snap.tracks)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	infos := make([]models.Info, 0, end-offset)
	for i := offset; i < end; i++ {
		infos = append(infos, snap.tracks[i].Summary())
	}

	return &models.TracksResponse{
		Tracks: infos,
		Pagination: models.PaginationInfo{
			Limit:      limit,
			Offset:     offset,
			HasMore:    end < total,
			TotalCount: total,
		},
	}, nil
}

// Health reports the current snapshot state without forcing a load.
func (svc *Service) Health() models.HealthResponse {
	snap := svc.snap.Load()
	resp := models.HealthResponse{Status: "ok"}
	if snap != nil {
		resp.TotalTracks = len(snap.tracks)
		resp.EmbeddingsCached = true
	}
	return resp
}

// Refresh forces a snapshot reload regardless of TTL.
func (svc *Service) Refresh(ctx context.Context) error {
	svc.refreshMu.Lock()
	defer svc.refreshMu.Unlock()
	return svc.reload(ctx)
}

// SnapshotAge returns the current snapshot's age, or zero when none is
// loaded. Used by metrics collection.
func (svc *Service) SnapshotAge() time.Duration {
	snap := svc.snap.Load()
	if snap == nil {
		return 0
	}
	return snap.age(svc.now())
}

// clampK normalizes a requested result count into [1, MaxK].
func (svc *Service) clampK(k int) int {
	if k <= 0 {
		return svc.cfg.DefaultK
	}
	if k > svc.cfg.MaxK {
		return svc.cfg.MaxK
	}
	return k
}

// snapshot returns a usable snapshot, reloading when none is cached or the
// TTL has lapsed. A failed refresh falls back to the stale snapshot when one
// exists; staleness is preferable to an outage.
func (svc *Service) snapshot(ctx context.Context) (*snapshot, error) {
	if snap := svc.snap.Load(); snap != nil && !svc.expired(snap) {
		if len(snap.tracks) == 0 {
			return nil, ErrSnapshotEmpty
		}
		return snap, nil
	}

	svc.refreshMu.Lock()
	defer svc.refreshMu.Unlock()

	// Another caller may have refreshed while this one waited on the lock.
	if snap := svc.snap.Load(); snap != nil && !svc.expired(snap) {
		if len(snap.tracks) == 0 {
			return nil, ErrSnapshotEmpty
		}
		return snap, nil
	}

	if err := svc.reload(ctx); err != nil {
		if stale := svc.snap.Load(); stale != nil && len(stale.tracks) > 0 {
			svc.logger.Warn().Err(err).Msg("snapshot refresh failed, serving stale data")
			return stale, nil
		}
		return nil, err
	}

	snap := svc.snap.Load()
	if len(snap.tracks) == 0 {
		return nil, ErrSnapshotEmpty
	}
	return snap, nil
}

func (svc *Service) expired(snap *snapshot) bool {
	return svc.cfg.SnapshotTTL > 0 && snap.age(svc.now()) >= svc.cfg.SnapshotTTL
}

// reload fetches the catalog and swaps the snapshot in. Callers must hold
// refreshMu.
func (svc *Service) reload(ctx context.Context) error {
	started := svc.now()
	tracks, err := svc.loader.LoadTracks(ctx)
	if err != nil {
		return fmt.Errorf("loading tracks: %w", err)
	}

	snap := newSnapshot(tracks, svc.now())
	svc.snap.Store(snap)

	svc.logger.Info().
		Int("tracks", len(tracks)).
		Dur("elapsed", svc.now().Sub(started)).
		Msg("snapshot loaded")
	return nil
}

// round4 rounds scores to four decimals for responses.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
