// Tunegraph - Music Metadata Analytics and Recommendation
// Copyright 2026 Tunegraph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tunegraph/tunegraph

package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Badger key layout.
const (
	projectorStateKey = "projector:state"
	pipelineRunKey    = "pipeline:last_run"
)

// ErrStateNotFound is returned when a requested state entry has never been
// written.
var ErrStateNotFound = errors.New("state not found")

// PipelineRun records the outcome of one offline pipeline execution.
type PipelineRun struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Tracks     int       `json:"tracks"`
	Embedded   int       `json:"embedded"`
	Succeeded  bool      `json:"succeeded"`
}

// StateStore keeps small durable pipeline state (fitted projector, last run
// metadata) in Badger.
type StateStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

// OpenState opens the Badger database at path. An empty path opens an
// in-memory store, used by tests.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenState(path string, logger zerolog.Logger) (*StateStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening state store: %w", err)
	}

	return &StateStore{
		db:     db,
		logger: logger.With().Str("component", "statestore").Logger(),
	}, nil
}

// Close releases the underlying database.
func (s *StateStore) Close() error {
	return s.db.Close()
}

// SaveProjectorState persists the fitted feature projector so serving-time
// transforms stay comparable with the indexed vectors.
func (s *StateStore) SaveProjectorState(data []byte) error {
	return s.set(projectorStateKey, data)
}

// LoadProjectorState returns the persisted projector state, or
// ErrStateNotFound before the first pipeline run.
func (s *StateStore) LoadProjectorState() ([]byte, error) {
	return s.get(projectorStateKey)
}

// SavePipelineRun records the latest pipeline outcome.
func (s *StateStore) SavePipelineRun(run PipelineRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encoding pipeline run: %w", err)
	}
	return s.set(pipelineRunKey, data)
}

// LastPipelineRun returns the most recent recorded run, or ErrStateNotFound.
func (s *StateStore) LastPipelineRun() (*PipelineRun, error) {
	data, err := s.get(pipelineRunKey)
	if err != nil {
		return nil, err
	}
	var run PipelineRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decoding pipeline run: %w", err)
	}
	return &run, nil
}

func (s *StateStore) set(key string, data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *StateStore) get(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrStateNotFound
		}
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrStateNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}
