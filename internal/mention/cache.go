// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"container/list"
	"sync"
	"time"
)

// =============================================================================
// FILE CACHE
// =============================================================================

// FileCache is an LRU cache of file contents shared by the loads of one
// session. An entry is valid only while the file's modification time and size
// are unchanged.
type FileCache struct {
	mu          sync.Mutex
	entries     map[string]*list.Element
	order       *list.List // front = most recently used
	maxEntries  int
	maxSize     int64
	currentSize int64

	hits   int
	misses int
}

type fileCacheEntry struct {
	path    string
	content string
	modTime time.Time
	size    int64
}

// FileCacheStats holds cache statistics.
type FileCacheStats struct {
	Hits       int
	Misses     int
	EntryCount int
	TotalSize  int64
	MaxSize    int64
	HitRate    float64
}

// NewFileCache creates a cache holding at most maxEntries files and maxSize
// bytes. Non-positive limits fall back to 256 entries and 32MB.
func NewFileCache(maxEntries int, maxSize int64) *FileCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if maxSize <= 0 {
		maxSize = 32 * 1024 * 1024
	}
	return &FileCache{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		maxSize:    maxSize,
	}
}

// Get returns the cached content for path if it was stored with the same
// modTime and size.
func (fc *FileCache) Get(path string, modTime time.Time, size int64) (string, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	el, ok := fc.entries[path]
	if !ok {
		fc.misses++
		return "", false
	}

	entry := el.Value.(*fileCacheEntry)
	if !entry.modTime.Equal(modTime) || entry.size != size {
		fc.removeLocked(el)
		fc.misses++
		return "", false
	}

	fc.order.MoveToFront(el)
	fc.hits++
	return entry.content, true
}

// Put stores content for path. Files larger than a tenth of the cache are
// not stored.
func (fc *FileCache) Put(path, content string, modTime time.Time) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	size := int64(len(content))
	if size > fc.maxSize/10 {
		return
	}

	if el, ok := fc.entries[path]; ok {
		fc.removeLocked(el)
	}

	for fc.order.Len() > 0 && (fc.currentSize+size > fc.maxSize || fc.order.Len() >= fc.maxEntries) {
		fc.removeLocked(fc.order.Back())
	}

	fc.entries[path] = fc.order.PushFront(&fileCacheEntry{
		path:    path,
		content: content,
		modTime: modTime,
		size:    size,
	})
	fc.currentSize += size
}

// Stats returns cache statistics.
func (fc *FileCache) Stats() FileCacheStats {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	hitRate := 0.0
	if total := fc.hits + fc.misses; total > 0 {
		hitRate = float64(fc.hits) / float64(total)
	}

	return FileCacheStats{
		Hits:       fc.hits,
		Misses:     fc.misses,
		EntryCount: len(fc.entries),
		TotalSize:  fc.currentSize,
		MaxSize:    fc.maxSize,
		HitRate:    hitRate,
	}
}

// removeLocked drops an element (must hold lock).
func (fc *FileCache) removeLocked(el *list.Element) {
	entry := el.Value.(*fileCacheEntry)
	fc.order.Remove(el)
	delete(fc.entries, entry.path)
	fc.currentSize -= entry.size
}
