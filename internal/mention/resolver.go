// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when a mention resolves to no existing file.
	ErrNotFound = errors.New("mention not found")

	// ErrTraversalRejected is returned for collection references containing "..".
	ErrTraversalRejected = errors.New("path traversal rejected")

	// ErrInvalidContext is returned when the resolution context is unusable.
	ErrInvalidContext = errors.New("invalid resolution context")
)

// =============================================================================
// RESOLUTION CONTEXT
// =============================================================================

// Scope names for collection roots, highest precedence first.
const (
	ScopeProject = "project"
	ScopeUser    = "user"
	ScopeBundled = "bundled"
)

// Root is one collection search root.
type Root struct {
	Scope string
	Path  string
}

// ResolutionContext holds the directories mentions resolve against. It is
// built once per top-level load and only SourceDir changes during recursion.
type ResolutionContext struct {
	// Cwd is the working directory for bare and @project: mentions
	Cwd string

	// SourceDir is the directory of the file being processed ("" for raw input)
	SourceDir string

	// Home is the user's home directory
	Home string

	// CollectionRoots in precedence order (project, user, bundled)
	CollectionRoots []Root
}

// Validate reports a host configuration problem. It is checked once at the
// start of a load.
func (rc ResolutionContext) Validate() error {
	if rc.Cwd == "" || !filepath.IsAbs(rc.Cwd) {
		return fmt.Errorf("%w: cwd %q is not an absolute path", ErrInvalidContext, rc.Cwd)
	}
	if rc.Home == "" || !filepath.IsAbs(rc.Home) {
		return fmt.Errorf("%w: home %q is not an absolute path", ErrInvalidContext, rc.Home)
	}
	info, err := os.Stat(rc.Home)
	if err != nil {
		return fmt.Errorf("%w: home directory: %w", ErrInvalidContext, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: home %q is not a directory", ErrInvalidContext, rc.Home)
	}
	for _, root := range rc.CollectionRoots {
		if root.Path == "" {
			return fmt.Errorf("%w: empty %s collection root", ErrInvalidContext, root.Scope)
		}
	}
	return nil
}

// WithSourceDir returns a copy of rc with SourceDir replaced.
func (rc ResolutionContext) WithSourceDir(dir string) ResolutionContext {
	rc.SourceDir = dir
	return rc
}

// =============================================================================
// RESOLVER
// =============================================================================

// candidateRule lists the paths to probe for a mention, in order. Rules are
// pure; the resolver does the existence checks.
type candidateRule func(m Mention, rc ResolutionContext) []string

var candidateRules = map[MentionForm]candidateRule{
	FormHome: func(m Mention, rc ResolutionContext) []string {
		return []string{filepath.Join(rc.Home, m.Fragment)}
	},
	FormUser: func(m Mention, rc ResolutionContext) []string {
		return []string{filepath.Join(rc.Home, ".amplifier", m.Fragment)}
	},
	FormProject: func(m Mention, rc ResolutionContext) []string {
		return []string{filepath.Join(rc.Cwd, ".amplifier", m.Fragment)}
	},
	FormRelative: func(m Mention, rc ResolutionContext) []string {
		if rc.SourceDir == "" {
			return nil
		}
		return []string{filepath.Join(rc.SourceDir, m.Fragment)}
	},
	FormCollection: func(m Mention, rc ResolutionContext) []string {
		paths := make([]string, 0, len(rc.CollectionRoots))
		for _, root := range rc.CollectionRoots {
			paths = append(paths, filepath.Join(root.Path, m.Qualifier, m.Fragment))
		}
		return paths
	},
	FormBare: func(m Mention, rc ResolutionContext) []string {
		paths := make([]string, 0, len(rc.CollectionRoots)+1)
		paths = append(paths, filepath.Join(rc.Cwd, m.Fragment))
		for _, root := range rc.CollectionRoots {
			paths = append(paths, filepath.Join(root.Path, m.Fragment))
		}
		return paths
	},
}

// Resolver maps a mention to at most one existing file.
type Resolver struct {
	stat func(string) (os.FileInfo, error)
}

// NewResolver creates a resolver that probes the real filesystem.
func NewResolver() *Resolver {
	return &Resolver{stat: os.Stat}
}

// Resolve returns the first existing regular file for m, ErrNotFound, or
// ErrTraversalRejected for collection references that try to leave their root.
func (r *Resolver) Resolve(m Mention, rc ResolutionContext) (string, error) {
	if m.Form == FormCollection && hasTraversal(m.Fragment) {
		return "", ErrTraversalRejected
	}

	rule, ok := candidateRules[m.Form]
	if !ok {
		return "", ErrNotFound
	}

	for _, path := range rule(m, rc) {
		info, err := r.stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		return path, nil
	}
	return "", ErrNotFound
}

// ResolveToken scans a single token such as "@user:notes.md" and resolves the
// first mention in it.
func (r *Resolver) ResolveToken(token string, rc ResolutionContext) (string, error) {
	mentions := NewScanner().Scan(token)
	if len(mentions) == 0 {
		return "", ErrNotFound
	}
	return r.Resolve(mentions[0], rc)
}

// hasTraversal reports whether any path segment is "..".
func hasTraversal(fragment string) bool {
	for _, seg := range strings.FieldsFunc(fragment, func(c rune) bool { return c == '/' || c == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// RealPath returns the absolute, cleaned path with symlinks evaluated when
// possible. It names the file as stored on disk and is the path to read.
func RealPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs
}

// Canonicalize returns the identity used for visited tracking and credits:
// RealPath, NFC normalized. It is a key, not necessarily an openable path.
func Canonicalize(path string) string {
	return norm.NFC.String(RealPath(path))
}
