// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCache_GetPut(t *testing.T) {
	fc := NewFileCache(0, 0)
	mod := time.Unix(1700000000, 0)

	_, ok := fc.Get("/a.md", mod, 5)
	assert.False(t, ok)

	fc.Put("/a.md", "hello", mod)
	got, ok := fc.Get("/a.md", mod, 5)
	require.True(t, ok)
	assert.Equal(t, "hello", got)

	stats := fc.Stats()
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
	assert.Equal(t, 1, stats.EntryCount)
	assert.Equal(t, int64(5), stats.TotalSize)
	assert.InDelta(t, 0.5, stats.HitRate, 0.001)
}

func TestFileCache_StaleEntryDropped(t *testing.T) {
	fc := NewFileCache(0, 0)
	mod := time.Unix(1700000000, 0)
	fc.Put("/a.md", "hello", mod)

	_, ok := fc.Get("/a.md", mod.Add(time.Second), 5)
	assert.False(t, ok)
	assert.Equal(t, 0, fc.Stats().EntryCount)

	fc.Put("/a.md", "hello", mod)
	_, ok = fc.Get("/a.md", mod, 6)
	assert.False(t, ok, "size change invalidates")
}

func TestFileCache_EvictsLeastRecentlyUsed(t *testing.T) {
	fc := NewFileCache(2, 0)
	mod := time.Unix(1700000000, 0)

	fc.Put("/a.md", "a", mod)
	fc.Put("/b.md", "b", mod)
	_, _ = fc.Get("/a.md", mod, 1)
	fc.Put("/c.md", "c", mod)

	_, ok := fc.Get("/b.md", mod, 1)
	assert.False(t, ok)
	_, ok = fc.Get("/a.md", mod, 1)
	assert.True(t, ok)
	_, ok = fc.Get("/c.md", mod, 1)
	assert.True(t, ok)
}

func TestFileCache_SkipsLargeFiles(t *testing.T) {
	fc := NewFileCache(10, 100)
	mod := time.Unix(1700000000, 0)

	fc.Put("/big.md", "more than ten bytes", mod)
	assert.Equal(t, 0, fc.Stats().EntryCount)
}

func TestReader_UsesCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "A.md")
	require.NoError(t, os.WriteFile(path, []byte("alpha"), 0644))

	r := NewReader(DefaultReaderConfig(), NewFileCache(0, 0))
	for i := 0; i < 2; i++ {
		got, err := r.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "alpha", got)
	}
	assert.Equal(t, 1, r.CacheStats().Hits)
}

func TestReader_Errors(t *testing.T) {
	dir := t.TempDir()
	r := NewReader(ReaderConfig{MaxFileSize: 4}, nil)

	_, err := r.ReadFile(filepath.Join(dir, "missing.md"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.ReadFile(dir)
	assert.ErrorIs(t, err, ErrNotText)

	big := filepath.Join(dir, "big.md")
	require.NoError(t, os.WriteFile(big, []byte("too big"), 0644))
	_, err = r.ReadFile(big)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	assert.Equal(t, FileCacheStats{}, r.CacheStats())
}
