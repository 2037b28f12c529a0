// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunegraph/tunegraph/internal/logging"
	"github.com/tunegraph/tunegraph/internal/models"
)

type fakeLoader struct {
	tracks []models.Track
	err    error
	calls  int
}

func (f *fakeLoader) LoadTracks(_ context.Context) ([]models.Track, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tracks, nil
}

type fakeEmbedder struct {
	vector []float64
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	return f.vector, f.err
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

// catalog returns three tracks where A and C share a direction and B is
// orthogonal, for both text and combined kinds. B has no feature vector.
func catalog() []models.Track {
	return []models.Track{
		{
			ID: "a", Name: "Alpha", Artist: "The Killers",
			TextVector:     []float64{1, 0},
			FeatureVector:  []float64{1, 0},
			CombinedVector: []float64{1, 0},
		},
		{
			ID: "b", Name: "Beta", Artist: "Other Band",
			TextVector:     []float64{0, 1},
			CombinedVector: []float64{0, 1},
		},
		{
			ID: "c", Name: "Gamma", Artist: "Third Act",
			TextVector:     []float64{1, 0},
			FeatureVector:  []float64{1, 0},
			CombinedVector: []float64{1, 0},
		},
	}
}

func newTestService(t *testing.T, cfg Config, loader Loader) *Service {
	t.Helper()
	svc, err := NewService(cfg, loader, nil, logging.Logger())
	require.NoError(t, err)
	return svc
}

func TestNewServiceRejectsInvalidConfig(t *testing.T) {
	loader := &fakeLoader{}

	_, err := NewService(Config{EmbeddingType: "hybrid"}, loader, nil, logging.Logger())
	assert.Error(t, err)

	_, err = NewService(Config{SimilarityMetric: "manhattan"}, loader, nil, logging.Logger())
	assert.Error(t, err)
}

func TestRecommendRankedExample(t *testing.T) {
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: catalog()})

	resp, err := svc.Recommend(context.Background(), models.RecommendRequest{TrackID: "a", K: 2})
	require.NoError(t, err)

	require.Len(t, resp.Recommendations, 2)
	assert.Equal(t, "c", resp.Recommendations[0].ID)
	assert.InDelta(t, 1.0, resp.Recommendations[0].Score, 1e-9)
	assert.Equal(t, "b", resp.Recommendations[1].ID)
	assert.InDelta(t, 0.0, resp.Recommendations[1].Score, 1e-9)

	assert.Equal(t, "a", resp.Query.ID)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, EmbeddingCombined, resp.EmbeddingType)
}

func TestRecommendNeverReturnsQueryTrack(t *testing.T) {
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: catalog()})

	resp, err := svc.Recommend(context.Background(), models.RecommendRequest{TrackID: "a", K: 10})
	require.NoError(t, err)
	for _, rec := range resp.Recommendations {
		assert.NotEqual(t, "a", rec.ID)
	}
}

func TestRecommendExcludesSameArtist(t *testing.T) {
	tracks := catalog()
	tracks[2].Artist = "The Killers" // same artist as the query track

	cfg := DefaultConfig()
	cfg.ExcludeSameArtist = true
	svc := newTestService(t, cfg, &fakeLoader{tracks: tracks})

	resp, err := svc.Recommend(context.Background(), models.RecommendRequest{TrackID: "a", K: 10})
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "b", resp.Recommendations[0].ID)
}

func TestRecommendAppliesMinSimilarityThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinSimilarityThreshold = 0.5
	svc := newTestService(t, cfg, &fakeLoader{tracks: catalog()})

	resp, err := svc.Recommend(context.Background(), models.RecommendRequest{TrackID: "a", K: 10})
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 1, "orthogonal candidate scores 0 and is dropped")
	assert.Equal(t, "c", resp.Recommendations[0].ID)
}

func TestRecommendMissingVector(t *testing.T) {
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: catalog()})

	// Track b has no feature vector.
	_, err := svc.Recommend(context.Background(), models.RecommendRequest{
		TrackID:       "b",
		EmbeddingType: EmbeddingFeature,
	})
	assert.ErrorIs(t, err, ErrMissingVector)
}

func TestRecommendSkipsCandidatesWithoutVector(t *testing.T) {
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: catalog()})

	resp, err := svc.Recommend(context.Background(), models.RecommendRequest{
		TrackID:       "a",
		EmbeddingType: EmbeddingFeature,
		K:             10,
	})
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 1, "track b has no feature vector and cannot be a candidate")
	assert.Equal(t, "c", resp.Recommendations[0].ID)
}

func TestRecommendRejectsInvalidEmbeddingType(t *testing.T) {
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: catalog()})

	_, err := svc.Recommend(context.Background(), models.RecommendRequest{TrackID: "a", EmbeddingType: "wave"})
	assert.Error(t, err)
}

func TestRecommendScoresRoundedToFourDecimals(t *testing.T) {
	tracks := []models.Track{
		{ID: "q", Name: "Query", Artist: "X", CombinedVector: []float64{1, 0.5}},
		{ID: "r", Name: "Result", Artist: "Y", CombinedVector: []float64{0.7, 1}},
	}
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: tracks})

	resp, err := svc.Recommend(context.Background(), models.RecommendRequest{TrackID: "q", K: 1})
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 1)

	score := resp.Recommendations[0].Score
	assert.InDelta(t, score, float64(int(score*10000))/10000, 1e-12)
}

func TestResolutionByExactNameCaseInsensitive(t *testing.T) {
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: catalog()})

	resp, err := svc.Recommend(context.Background(), models.RecommendRequest{TrackName: "ALPHA"})
	require.NoError(t, err)
	assert.Equal(t, "a", resp.Query.ID)
}

func TestResolutionUnknownIDIsTerminal(t *testing.T) {
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: catalog()})

	// A valid name must not rescue an unknown explicit ID.
	_, err := svc.Recommend(context.Background(), models.RecommendRequest{
		TrackID:   "does-not-exist",
		TrackName: "Alpha",
	})
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestResolutionAmbiguousNameNarrowedByArtist(t *testing.T) {
	tracks := catalog()
	tracks = append(tracks, models.Track{
		ID: "a2", Name: "Alpha", Artist: "Cover Band",
		CombinedVector: []float64{0.5, 0.5},
	})
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: tracks})

	resp, err := svc.Recommend(context.Background(), models.RecommendRequest{
		TrackName:  "alpha",
		ArtistName: "cover band",
	})
	require.NoError(t, err)
	assert.Equal(t, "a2", resp.Query.ID)

	// Without an artist the lowest index wins deterministically.
	resp, err = svc.Recommend(context.Background(), models.RecommendRequest{TrackName: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, "a", resp.Query.ID)
}

func TestResolutionArtistEliminatesExactNameMatch(t *testing.T) {
	tracks := []models.Track{
		{ID: "adele", Name: "Hello", Artist: "Adele", CombinedVector: []float64{1, 0}},
		{ID: "lionel", Name: "Hello", Artist: "Lionel Richie", CombinedVector: []float64{0, 1}},
	}
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: tracks})

	// The name matches exactly but the artist matches neither candidate, so
	// the exact stage is eliminated. The fuzzy blend 0.7*name + 0.3*artist
	// stays below the 0.8 threshold because the artist ratio is near zero.
	_, err := svc.Recommend(context.Background(), models.RecommendRequest{
		TrackName:  "Hello",
		ArtistName: "Beyonce",
	})
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestResolutionFuzzyMatch(t *testing.T) {
	tracks := []models.Track{
		{ID: "mb", Name: "Mr. Brightside", Artist: "The Killers", CombinedVector: []float64{1, 0}},
		{ID: "x", Name: "Somebody Told Me", Artist: "The Killers", CombinedVector: []float64{0, 1}},
	}
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: tracks})

	resp, err := svc.Recommend(context.Background(), models.RecommendRequest{TrackName: "Mr Brightside"})
	require.NoError(t, err)
	assert.Equal(t, "mb", resp.Query.ID)
}

func TestResolutionFuzzyBelowThreshold(t *testing.T) {
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: catalog()})

	_, err := svc.Recommend(context.Background(), models.RecommendRequest{TrackName: "zzzzzz"})
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestResolutionFuzzyDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FuzzyMatching = false
	svc := newTestService(t, cfg, &fakeLoader{tracks: catalog()})

	_, err := svc.Recommend(context.Background(), models.RecommendRequest{TrackName: "Alpa"})
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestSnapshotHonorsTTL(t *testing.T) {
	loader := &fakeLoader{tracks: catalog()}
	cfg := DefaultConfig()
	cfg.SnapshotTTL = time.Hour

	svc := newTestService(t, cfg, loader)
	current := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }

	_, err := svc.Recommend(context.Background(), models.RecommendRequest{TrackID: "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls)

	// Within the TTL the cached snapshot is reused.
	current = current.Add(30 * time.Minute)
	_, err = svc.Recommend(context.Background(), models.RecommendRequest{TrackID: "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls)

	// Past the TTL a fresh load happens.
	current = current.Add(31 * time.Minute)
	_, err = svc.Recommend(context.Background(), models.RecommendRequest{TrackID: "a"})
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}

func TestSnapshotServesStaleOnRefreshFailure(t *testing.T) {
	loader := &fakeLoader{tracks: catalog()}
	cfg := DefaultConfig()
	cfg.SnapshotTTL = time.Minute

	svc := newTestService(t, cfg, loader)
	current := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }

	_, err := svc.Recommend(context.Background(), models.RecommendRequest{TrackID: "a"})
	require.NoError(t, err)

	loader.err = errors.New("database unavailable")
	current = current.Add(2 * time.Minute)

	resp, err := svc.Recommend(context.Background(), models.RecommendRequest{TrackID: "a"})
	require.NoError(t, err, "stale snapshot must keep serving")
	assert.NotEmpty(t, resp.Recommendations)
}

func TestSnapshotEmptyCatalog(t *testing.T) {
	svc := newTestService(t, DefaultConfig(), &fakeLoader{})

	_, err := svc.Recommend(context.Background(), models.RecommendRequest{TrackID: "a"})
	assert.ErrorIs(t, err, ErrSnapshotEmpty)
}

func TestRefreshForcesReload(t *testing.T) {
	loader := &fakeLoader{tracks: catalog()}
	svc := newTestService(t, DefaultConfig(), loader)

	require.NoError(t, svc.Refresh(context.Background()))
	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, 2, loader.calls)
}

func TestSearchSubstring(t *testing.T) {
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: catalog()})

	resp, err := svc.Search(context.Background(), "killers", 10)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "a", resp.Results[0].ID)

	resp, err = svc.Search(context.Background(), "ALPHA", 10)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
}

func TestListTracksPagination(t *testing.T) {
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: catalog()})

	resp, err := svc.ListTracks(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Len(t, resp.Tracks, 2)
	assert.True(t, resp.Pagination.HasMore)
	assert.Equal(t, 3, resp.Pagination.TotalCount)

	resp, err = svc.ListTracks(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, resp.Tracks, 1)
	assert.False(t, resp.Pagination.HasMore)
}

func TestHealthBeforeAndAfterLoad(t *testing.T) {
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: catalog()})

	health := svc.Health()
	assert.Zero(t, health.TotalTracks)
	assert.False(t, health.EmbeddingsCached)

	require.NoError(t, svc.Refresh(context.Background()))

	health = svc.Health()
	assert.Equal(t, 3, health.TotalTracks)
	assert.True(t, health.EmbeddingsCached)
}

func TestSemanticSearch(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float64{1, 0}}
	svc, err := NewService(DefaultConfig(), &fakeLoader{tracks: catalog()}, embedder, logging.Logger())
	require.NoError(t, err)

	resp, err := svc.SemanticSearch(context.Background(), "energetic rock", 10, 0.5)
	require.NoError(t, err)

	// Tracks a and c point the same way as the query embedding; b scores 0
	// and falls below the threshold.
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "a", resp.Results[0].ID)
	assert.Equal(t, "c", resp.Results[1].ID)
	assert.Equal(t, "energetic rock", resp.Query)
}

func TestSemanticSearchEmbedderFailure(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("upstream down")}
	svc, err := NewService(DefaultConfig(), &fakeLoader{tracks: catalog()}, embedder, logging.Logger())
	require.NoError(t, err)

	_, err = svc.SemanticSearch(context.Background(), "anything", 5, 0)
	assert.Error(t, err)
}

func TestSemanticSearchWithoutEmbedder(t *testing.T) {
	svc := newTestService(t, DefaultConfig(), &fakeLoader{tracks: catalog()})
	_, err := svc.SemanticSearch(context.Background(), "anything", 5, 0)
	assert.Error(t, err)
}
