// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package snapshot persists a frozen factory's serialization order so a
// later run can verify that it reproduces the same binary layout.
//
// A snapshot is the flat list of (category, value, index) records for
// every interned item, stored as one JSON document in BadgerDB keyed by
// run ID. Reproducible output means an identical input program and
// naming lens must yield an identical snapshot.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/dexmill/dex"
)

// Sentinel errors for snapshot operations.
var (
	// ErrRunNotFound is returned when loading a run ID with no snapshot.
	ErrRunNotFound = errors.New("no snapshot for run")

	// ErrMismatch is returned by Verify when the factory's frozen order
	// differs from the stored snapshot.
	ErrMismatch = errors.New("snapshot order mismatch")
)

const keyPrefix = "snapshot/"

// Record is one interned item's position in the frozen order.
type Record struct {
	Category string `json:"category"`
	Value    string `json:"value"`
	Index    int32  `json:"index"`
}

// Store reads and writes snapshots in a BadgerDB instance.
type Store struct {
	db *badger.DB
}

// NewStore creates a store over an open database. The store does not own
// the database; the caller closes it.
func NewStore(db *badger.DB) *Store {
	return &Store{db: db}
}

// Save records the frozen order of every item in the factory under the
// given run ID, overwriting any previous snapshot for that run.
//
// Outputs:
//   - error: dex.ErrNotFrozen if the factory has not been frozen.
func (s *Store) Save(runID string, f *dex.Factory) error {
	records, err := collect(f)
	if err != nil {
		return err
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", runID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+runID), data)
	})
	if err != nil {
		return fmt.Errorf("store snapshot %s: %w", runID, err)
	}
	return nil
}

// Load returns the stored snapshot records for a run ID, in index order
// per category.
func (s *Store) Load(runID string) ([]Record, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + runID))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", runID, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", runID, err)
	}
	return records, nil
}

// Verify compares the factory's current frozen order against the stored
// snapshot for runID. A difference in item count, value or index returns
// ErrMismatch with the first divergence.
func (s *Store) Verify(runID string, f *dex.Factory) error {
	stored, err := s.Load(runID)
	if err != nil {
		return err
	}
	current, err := collect(f)
	if err != nil {
		return err
	}

	if len(stored) != len(current) {
		return fmt.Errorf("%w: %d items stored, %d items now", ErrMismatch, len(stored), len(current))
	}
	for i := range stored {
		if stored[i] != current[i] {
			return fmt.Errorf("%w: at position %d stored %s %q index %d, now %s %q index %d",
				ErrMismatch, i,
				stored[i].Category, stored[i].Value, stored[i].Index,
				current[i].Category, current[i].Value, current[i].Index)
		}
	}
	return nil
}

// collect flattens the factory's frozen tables into records, categories
// in declaration order, items in index order.
func collect(f *dex.Factory) ([]Record, error) {
	if !f.Frozen() {
		return nil, dex.ErrNotFrozen
	}

	var records []Record
	for c := dex.Category(0); c < dex.NumCategories; c++ {
		for _, item := range f.Items(c) {
			records = append(records, Record{
				Category: c.String(),
				Value:    item.String(),
				Index:    item.SortedIndex(),
			})
		}
	}
	return records, nil
}
