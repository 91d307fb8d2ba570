// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"
)

var (
	// ErrFileTooLarge is returned when a file exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNotText is returned when a file is a directory or not valid UTF-8.
	ErrNotText = errors.New("not a text file")
)

// ReaderConfig holds limits for reading mentioned files.
type ReaderConfig struct {
	// MaxFileSize is the largest file read, in bytes (0 = no limit)
	MaxFileSize int64
}

// DefaultReaderConfig returns the default reader configuration.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{MaxFileSize: 1024 * 1024}
}

// Reader reads mentioned files as text. Content is returned unmodified.
type Reader struct {
	config ReaderConfig
	cache  *FileCache
}

// NewReader creates a reader. cache may be nil.
func NewReader(config ReaderConfig, cache *FileCache) *Reader {
	return &Reader{config: config, cache: cache}
}

// ReadFile returns the text content of path. Every failure here is treated by
// the loader as a silent skip.
func (r *Reader) ReadFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrNotText, path)
	}
	if r.config.MaxFileSize > 0 && info.Size() > r.config.MaxFileSize {
		return "", fmt.Errorf("%w: %d bytes", ErrFileTooLarge, info.Size())
	}

	if r.cache != nil {
		if content, ok := r.cache.Get(path, info.ModTime(), info.Size()); ok {
			return content, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrNotText, path)
	}

	content := string(data)
	if r.cache != nil {
		r.cache.Put(path, content, info.ModTime())
	}
	return content, nil
}

// CacheStats returns statistics for the reader's cache, if any.
func (r *Reader) CacheStats() FileCacheStats {
	if r.cache == nil {
		return FileCacheStats{}
	}
	return r.cache.Stats()
}
