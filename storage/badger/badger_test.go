// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package badger

import (
	"testing"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpenInMemory verifies in-memory open, write and read.
func TestOpenInMemory(t *testing.T) {
	db, err := OpenInMemory()
	require.NoError(t, err)
	defer db.Close()

	err = db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte("key"), []byte("value"))
	})
	require.NoError(t, err)

	var got []byte
	err = db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte("key"))
		if err != nil {
			return err
		}
		got, err = item.ValueCopy(nil)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
}

// TestOpen_RequiresPath verifies persistent mode needs a path.
func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{InMemory: false})
	assert.Error(t, err)
}

// TestOpen_CreatesDirectory verifies the database directory is created.
func TestOpen_CreatesDirectory(t *testing.T) {
	path := t.TempDir() + "/nested/db"
	cfg := DefaultConfig()
	cfg.Path = path
	cfg.GCInterval = 0

	db, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

// TestOpenDB_Close verifies the GC runner starts and stops cleanly.
func TestOpenDB_Close(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = t.TempDir() + "/db"
	cfg.GCInterval = 10 * time.Millisecond
	cfg.GCDiscardRatio = 0.5

	db, err := OpenDB(cfg)
	require.NoError(t, err)

	// Let at least one GC tick fire before closing.
	time.Sleep(30 * time.Millisecond)
	assert.NoError(t, db.Close())
}

// TestOpenDB_InMemorySkipsGC verifies no GC loop runs in memory mode.
func TestOpenDB_InMemorySkipsGC(t *testing.T) {
	cfg := InMemoryConfig()
	cfg.GCInterval = time.Minute

	db, err := OpenDB(cfg)
	require.NoError(t, err)
	assert.Nil(t, db.gc)
	assert.NoError(t, db.Close())
}
