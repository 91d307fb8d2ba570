// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveOne(t *testing.T, text string, rc ResolutionContext) (string, error) {
	t.Helper()
	mentions := NewScanner().Scan(text)
	require.Len(t, mentions, 1, "text %q", text)
	return NewResolver().Resolve(mentions[0], rc)
}

// =============================================================================
// RESOLUTION RULES
// =============================================================================

func TestResolver_Home(t *testing.T) {
	f := newFixture(t)
	want := f.write(t, filepath.Join(f.home, "docs", "x.md"), "x")

	got, err := resolveOne(t, "@~/docs/x.md", f.context())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolver_UserAndProject(t *testing.T) {
	f := newFixture(t)
	user := f.write(t, filepath.Join(f.home, ".amplifier", "custom", "file.md"), "u")
	project := f.write(t, filepath.Join(".amplifier", "notes", "note.md"), "p")

	got, err := resolveOne(t, "@user:custom/file.md", f.context())
	require.NoError(t, err)
	assert.Equal(t, user, got)

	got, err = resolveOne(t, "@project:notes/note.md", f.context())
	require.NoError(t, err)
	assert.Equal(t, project, got)
}

func TestResolver_Relative(t *testing.T) {
	f := newFixture(t)
	want := f.write(t, filepath.Join("docs", "sibling.md"), "s")
	rc := f.context()

	_, err := resolveOne(t, "@./sibling.md", rc)
	assert.ErrorIs(t, err, ErrNotFound, "no source dir means no relative resolution")

	got, err := resolveOne(t, "@./sibling.md", rc.WithSourceDir(filepath.Join(f.project, "docs")))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = resolveOne(t, "../docs/sibling.md", rc.WithSourceDir(filepath.Join(f.project, "other")))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolver_CollectionPrecedence(t *testing.T) {
	f := newFixture(t)
	bundled := f.write(t, filepath.Join(f.roots[2].Path, "foundation", "context", "A.md"), "bundled")
	user := f.write(t, filepath.Join(f.roots[1].Path, "foundation", "context", "A.md"), "user")

	got, err := resolveOne(t, "@foundation:context/A.md", f.context())
	require.NoError(t, err)
	assert.Equal(t, user, got, "user root shadows bundled")

	require.NoError(t, os.Remove(user))
	got, err = resolveOne(t, "@foundation:context/A.md", f.context())
	require.NoError(t, err)
	assert.Equal(t, bundled, got)

	project := f.write(t, filepath.Join(f.roots[0].Path, "foundation", "context", "A.md"), "project")
	got, err = resolveOne(t, "@foundation:context/A.md", f.context())
	require.NoError(t, err)
	assert.Equal(t, project, got)
}

func TestResolver_CollectionMissing(t *testing.T) {
	f := newFixture(t)

	_, err := resolveOne(t, "@foundation:context/missing.md", f.context())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolver_CollectionTraversalRejected(t *testing.T) {
	f := newFixture(t)
	// roots[2]/foundation/../../secret.md lands on a real file outside the root
	f.write(t, filepath.Join(f.dir, "secret.md"), "secret")

	_, err := resolveOne(t, "@foundation:../../secret.md", f.context())
	assert.ErrorIs(t, err, ErrTraversalRejected)
}

func TestResolver_BareCwdFirst(t *testing.T) {
	f := newFixture(t)
	local := f.write(t, "AGENTS.md", "local")
	f.write(t, filepath.Join(f.roots[2].Path, "AGENTS.md"), "bundled")

	got, err := resolveOne(t, "@AGENTS.md", f.context())
	require.NoError(t, err)
	assert.Equal(t, local, got)
}

func TestResolver_BareFallsBackToRoots(t *testing.T) {
	f := newFixture(t)
	want := f.write(t, filepath.Join(f.roots[2].Path, "foundation", "context", "A.md"), "a")

	got, err := resolveOne(t, "@foundation/context/A.md", f.context())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolver_SkipsDirectories(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(f.project, "docs"), 0755))

	_, err := resolveOne(t, "@docs", f.context())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolver_ResolveToken(t *testing.T) {
	f := newFixture(t)
	want := f.write(t, "A.md", "a")
	r := NewResolver()

	got, err := r.ResolveToken("@A.md", f.context())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = r.ResolveToken("no mention", f.context())
	assert.ErrorIs(t, err, ErrNotFound)
}

// =============================================================================
// CONTEXT VALIDATION
// =============================================================================

func TestResolutionContext_Validate(t *testing.T) {
	f := newFixture(t)
	homeFile := f.write(t, filepath.Join(f.dir, "not-a-dir"), "")

	tests := []struct {
		name   string
		mutate func(rc *ResolutionContext)
		valid  bool
	}{
		{"valid", func(rc *ResolutionContext) {}, true},
		{"relative cwd", func(rc *ResolutionContext) { rc.Cwd = "project" }, false},
		{"empty home", func(rc *ResolutionContext) { rc.Home = "" }, false},
		{"missing home", func(rc *ResolutionContext) { rc.Home = filepath.Join(f.dir, "nope") }, false},
		{"home is a file", func(rc *ResolutionContext) { rc.Home = homeFile }, false},
		{"empty root", func(rc *ResolutionContext) {
			rc.CollectionRoots = append(rc.CollectionRoots, Root{Scope: "extra"})
		}, false},
		{"no roots", func(rc *ResolutionContext) { rc.CollectionRoots = nil }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rc := f.context()
			tc.mutate(&rc)
			err := rc.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidContext)
			}
		})
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

func TestHasTraversal(t *testing.T) {
	tests := []struct {
		fragment string
		want     bool
	}{
		{"context/A.md", false},
		{"../A.md", true},
		{"context/../../A.md", true},
		{`context\..\A.md`, true},
		{"context/..hidden.md", false},
		{"a..b/c.md", false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, hasTraversal(tc.fragment), "fragment %q", tc.fragment)
	}
}

func TestCanonicalize(t *testing.T) {
	f := newFixture(t)
	target := f.write(t, "A.md", "a")
	link := filepath.Join(f.project, "link.md")
	require.NoError(t, os.Symlink(target, link))

	assert.Equal(t, target, Canonicalize(link))
	assert.Equal(t, target, Canonicalize(filepath.Join(f.project, "docs", "..", "A.md")))

	// Missing files still canonicalize to a clean absolute path.
	missing := filepath.Join(f.project, "missing.md")
	assert.Equal(t, missing, Canonicalize(missing))

	// NFD "e" + combining acute normalizes to NFC.
	assert.Equal(t, filepath.Join(f.project, "caf\u00e9.md"), Canonicalize(filepath.Join(f.project, "cafe\u0301.md")))
}

func TestRealPath_KeepsStoredName(t *testing.T) {
	f := newFixture(t)
	nfd := f.write(t, "cafe\u0301.md", "x")

	assert.Equal(t, nfd, RealPath(nfd))
	assert.NotEqual(t, nfd, Canonicalize(nfd))
}
