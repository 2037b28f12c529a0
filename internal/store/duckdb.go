// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

// Package store persists the track catalog and pipeline state.
//
// Tracks live in DuckDB: one row per track with the embedding vectors as
// DOUBLE[] columns, NULL marking a vector that has not been computed.
// Small pipeline state (the fitted projector) lives in a Badger key-value
// store next to it.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	duckdb "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tunegraph/tunegraph/internal/models"
)

// Config controls the DuckDB connection.
type Config struct {
	// Path is the database file. ":memory:" opens an in-memory database.
	Path string `koanf:"path"`

	// MaxMemory caps DuckDB's memory usage, e.g. "1GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is DuckDB's worker thread count; zero means one per CPU.
	Threads int `koanf:"threads"`
}

// DefaultConfig returns the default database configuration.
func DefaultConfig() Config {
	return Config{
		Path:      "data/tunegraph.db",
		MaxMemory: "1GB",
	}
}

// Store is the DuckDB-backed track catalog.
type Store struct {
	conn   *sql.DB
	cfg    Config
	logger zerolog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS tracks (
	track_id        VARCHAR PRIMARY KEY,
	track_name      VARCHAR NOT NULL,
	artist_name     VARCHAR NOT NULL,
	album_name      VARCHAR,
	spotify_url     VARCHAR,
	attributes      VARCHAR,
	tags            VARCHAR[],
	text_vector     DOUBLE[],
	feature_vector  DOUBLE[],
	combined_vector DOUBLE[],
	updated_at      TIMESTAMP DEFAULT current_timestamp
);
`

// New opens (or creates) the database and initializes the schema.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	def := DefaultConfig()
	if cfg.Path == "" {
		cfg.Path = def.Path
	}
	if cfg.MaxMemory == "" {
		cfg.MaxMemory = def.MaxMemory
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	if dir := filepath.Dir(cfg.Path); cfg.Path != ":memory:" && dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, threads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	conn.SetMaxOpenConns(threads)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	s := &Store{
		conn:   conn,
		cfg:    cfg,
		logger: logger.With().Str("component", "store").Logger(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	s.logger.Info().Str("path", cfg.Path).Msg("database opened")
	return s, nil
}

// NewInMemory opens an in-memory store, used by tests and ephemeral runs.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewInMemory(logger zerolog.Logger) (*Store, error) {
	return New(Config{Path: ":memory:", MaxMemory: "512MB", Threads: 1}, logger)
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// UpsertTracks inserts or replaces catalog rows, vectors included. The whole
// batch goes in one transaction so a reload never observes half a batch.
func (s *Store) UpsertTracks(ctx context.Context, tracks []models.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning upsert transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO tracks
			(track_id, track_name, artist_name, album_name, spotify_url,
			 attributes, tags, text_vector, feature_vector, combined_vector, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, current_timestamp)`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // statement belongs to tx

	for i := range tracks {
		t := &tracks[i]

		attrs, err := encodeAttributes(t.Attributes)
		if err != nil {
			return fmt.Errorf("encoding attributes for %s: %w", t.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			t.ID, t.Name, t.Artist, nullString(t.Album), nullString(t.SpotifyURL),
			attrs, t.Tags,
			nullVector(t.TextVector), nullVector(t.FeatureVector), nullVector(t.CombinedVector),
		); err != nil {
			return fmt.Errorf("upserting track %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}

	s.logger.Info().Int("tracks", len(tracks)).Msg("tracks upserted")
	return nil
}

// LoadTracks fetches the full catalog snapshot ordered by track ID. Vector
// columns come back nil when NULL, preserving the missing marker.
func (s *Store) LoadTracks(ctx context.Context) ([]models.Track, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT track_id, track_name, artist_name, album_name, spotify_url,
		       attributes, tags, text_vector, feature_vector, combined_vector
		FROM tracks
		ORDER BY track_id`)
	if err != nil {
		return nil, fmt.Errorf("querying tracks: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only rows

	var tracks []models.Track
	for rows.Next() {
		var (
			t          models.Track
			album      sql.NullString
			spotifyURL sql.NullString
			attrs      sql.NullString
			tags       duckdb.Composite[[]string]
			text       duckdb.Composite[[]float64]
			feature    duckdb.Composite[[]float64]
			combined   duckdb.Composite[[]float64]
		)

		if err := rows.Scan(&t.ID, &t.Name, &t.Artist, &album, &spotifyURL,
			&attrs, &tags, &text, &feature, &combined); err != nil {
			return nil, fmt.Errorf("scanning track row: %w", err)
		}

		t.Album = album.String
		t.SpotifyURL = spotifyURL.String
		if attrs.Valid && attrs.String != "" {
			if err := json.Unmarshal([]byte(attrs.String), &t.Attributes); err != nil {
				return nil, fmt.Errorf("decoding attributes for %s: %w", t.ID, err)
			}
		}
		if v := tags.Get(); len(v) > 0 {
			t.Tags = v
		}
		t.TextVector = emptyToNil(text.Get())
		t.FeatureVector = emptyToNil(feature.Get())
		t.CombinedVector = emptyToNil(combined.Get())

		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tracks: %w", err)
	}

	return tracks, nil
}

// UpdateVectors replaces one track's embedding columns. A nil slice writes
// NULL, marking the vector as not computed.
func (s *Store) UpdateVectors(ctx context.Context, trackID string, text, feature, combined []float64) error {
	res, err := s.conn.ExecContext(ctx, `
		UPDATE tracks
		SET text_vector = ?, feature_vector = ?, combined_vector = ?, updated_at = current_timestamp
		WHERE track_id = ?`,
		nullVector(text), nullVector(feature), nullVector(combined), trackID)
	if err != nil {
		return fmt.Errorf("updating vectors for %s: %w", trackID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking vector update for %s: %w", trackID, err)
	}
	if affected == 0 {
		return fmt.Errorf("track %s not found", trackID)
	}
	return nil
}

// CountTracks returns the catalog size.
func (s *Store) CountTracks(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT count(*) FROM tracks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting tracks: %w", err)
	}
	return n, nil
}

func encodeAttributes(attrs map[string]float64) (interface{}, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// nullVector maps the nil missing marker to SQL NULL. A present-but-empty
// vector never occurs upstream, so nil is the only special case.
func nullVector(v []float64) interface{} {
	if v == nil {
		return nil
	}
	return v
}

// emptyToNil restores the nil missing marker after scanning a NULL list.
func emptyToNil(v []float64) []float64 {
	if len(v) == 0 {
		return nil
	}
	return v
}
