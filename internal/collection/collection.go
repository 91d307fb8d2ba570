// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package collection locates collection roots and the collections inside them.
//
// Search order (highest precedence first):
//   - Project collections (.amplifier/collections/)
//   - User collections (~/.amplifier/collections/)
//   - Extra roots from configuration
//   - Bundled collections
//
// A collection is any directory directly below a root. When two roots hold a
// collection with the same name, the higher-precedence one wins.
package collection

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jeranaias/amplifier-mentions/internal/mention"
)

// ScopeExtra labels roots added through configuration.
const ScopeExtra = "extra"

// ContextPattern matches the markdown context files of a collection.
const ContextPattern = "context/**/*.md"

// SearchPaths returns the collection roots in precedence order. bundled may be
// empty when the host ships no collections.
func SearchPaths(cwd, home, bundled string, extra []string) []mention.Root {
	roots := []mention.Root{
		{Scope: mention.ScopeProject, Path: filepath.Join(cwd, ".amplifier", "collections")},
		{Scope: mention.ScopeUser, Path: filepath.Join(home, ".amplifier", "collections")},
	}
	for _, p := range extra {
		if p == "" {
			continue
		}
		roots = append(roots, mention.Root{Scope: ScopeExtra, Path: p})
	}
	if bundled != "" {
		roots = append(roots, mention.Root{Scope: mention.ScopeBundled, Path: bundled})
	}
	return roots
}

// Collection is one discovered collection directory.
type Collection struct {
	Name  string
	Scope string
	Path  string
}

// Discover lists the collections under roots. Missing roots are skipped.
// Collections are returned in root precedence order, by name within a root.
func Discover(roots []mention.Root) ([]Collection, error) {
	var result []Collection
	seen := make(map[string]bool)

	for _, root := range roots {
		dirEntries, err := os.ReadDir(root.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s collections at %s: %w", root.Scope, root.Path, err)
		}

		sort.Slice(dirEntries, func(i, j int) bool {
			return dirEntries[i].Name() < dirEntries[j].Name()
		})

		for _, de := range dirEntries {
			if !de.IsDir() || seen[de.Name()] {
				continue
			}
			seen[de.Name()] = true
			result = append(result, Collection{
				Name:  de.Name(),
				Scope: root.Scope,
				Path:  filepath.Join(root.Path, de.Name()),
			})
		}
	}

	return result, nil
}

// Find returns the highest-precedence collection named name.
func Find(roots []mention.Root, name string) (Collection, bool) {
	for _, root := range roots {
		dir := filepath.Join(root.Path, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return Collection{Name: name, Scope: root.Scope, Path: dir}, true
		}
	}
	return Collection{}, false
}

// Resources returns the files in the collection matching a doublestar
// pattern such as "context/**/*.md", as absolute paths in lexical order.
func (c Collection) Resources(pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(c.Path), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to glob %q in collection %s: %w", pattern, c.Name, err)
	}
	sort.Strings(matches)

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(c.Path, filepath.FromSlash(m)))
	}
	return paths, nil
}

// ContextFiles returns the collection's markdown context files.
func (c Collection) ContextFiles() ([]string, error) {
	return c.Resources(ContextPattern)
}

// Mention returns the @name:path token that refers to file inside c.
func (c Collection) Mention(file string) (string, error) {
	rel, err := filepath.Rel(c.Path, file)
	if err != nil {
		return "", err
	}
	return "@" + c.Name + ":" + filepath.ToSlash(rel), nil
}
