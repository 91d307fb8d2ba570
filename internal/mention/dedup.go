// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// ContentIdentity returns the hex SHA-256 of content. Two entries with the
// same identity are the same content regardless of path.
func ContentIdentity(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Dedupe merges entries with equal content identity. The result keeps
// first-occurrence order and each entry carries the union of the credits of
// every entry merged into it.
func Dedupe(entries []LoadedEntry) []LoadedEntry {
	index := make(map[string]int, len(entries))
	var result []LoadedEntry

	for _, e := range entries {
		if i, ok := index[e.Identity]; ok {
			for _, c := range e.Credits {
				result[i].addCredit(c)
			}
			continue
		}
		index[e.Identity] = len(result)
		merged := e
		merged.Credits = append([]Credit(nil), e.Credits...)
		result = append(result, merged)
	}

	return result
}

// =============================================================================
// SESSION DEDUPLICATOR
// =============================================================================

// Deduplicator remembers content delivered earlier in a session so that later
// loads (another user turn, a profile switch) do not inject it again.
type Deduplicator struct {
	mu      sync.Mutex
	entries map[string]*LoadedEntry
	order   []string
}

// NewDeduplicator creates an empty session deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{entries: make(map[string]*LoadedEntry)}
}

// Filter returns the entries whose content has not been committed yet,
// deduplicated, in first-occurrence order. It does not change the session.
func (d *Deduplicator) Filter(entries []LoadedEntry) []LoadedEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filterLocked(Dedupe(entries))
}

// Commit records entries as delivered. Credits for content already known are
// added to the remembered entry. Call it only once the content has reached
// the message stack.
func (d *Deduplicator) Commit(entries []LoadedEntry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.commitLocked(Dedupe(entries))
}

// Register filters and commits in one step and returns the fresh entries.
func (d *Deduplicator) Register(entries []LoadedEntry) []LoadedEntry {
	d.mu.Lock()
	defer d.mu.Unlock()

	merged := Dedupe(entries)
	fresh := d.filterLocked(merged)
	d.commitLocked(merged)
	return fresh
}

// Len returns the number of distinct contents committed.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

func (d *Deduplicator) filterLocked(merged []LoadedEntry) []LoadedEntry {
	var fresh []LoadedEntry
	for _, e := range merged {
		if _, ok := d.entries[e.Identity]; !ok {
			fresh = append(fresh, e)
		}
	}
	return fresh
}

func (d *Deduplicator) commitLocked(merged []LoadedEntry) {
	for _, e := range merged {
		if known, ok := d.entries[e.Identity]; ok {
			for _, c := range e.Credits {
				known.addCredit(c)
			}
			continue
		}
		stored := e
		stored.Credits = append([]Credit(nil), e.Credits...)
		d.entries[e.Identity] = &stored
		d.order = append(d.order, e.Identity)
	}
}
