// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/amplifier-mentions/internal/config"
	"github.com/jeranaias/amplifier-mentions/internal/mention"
	"github.com/jeranaias/amplifier-mentions/internal/profile"
)

// setup creates a home and a project directory and points the process at them.
func setup(t *testing.T) (home, project string) {
	t.Helper()
	dir := t.TempDir()
	home = filepath.Join(dir, "home")
	project = filepath.Join(dir, "project")
	require.NoError(t, os.MkdirAll(home, 0755))
	require.NoError(t, os.MkdirAll(project, 0755))

	t.Setenv("HOME", home)
	t.Setenv("AMPLIFIER_HOME", home)
	t.Setenv("AMPLIFIER_BUNDLED_COLLECTIONS", "")
	t.Setenv("AMPLIFIER_LOG_LEVEL", "")
	return home, project
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScanCommand(t *testing.T) {
	_, project := setup(t)

	out, err := run(t, "see @foundation:context/A.md and @B.md", "--cwd", project, "scan", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "collection")
	assert.Contains(t, out, "foundation")
	assert.Contains(t, out, "context/A.md")
	assert.Contains(t, out, "2 mentions: 1 collection, 1 bare")
}

func TestResolveCommand(t *testing.T) {
	home, project := setup(t)
	write(t, filepath.Join(home, ".amplifier", "notes.md"), "user notes")

	out, err := run(t, "", "--cwd", project, "resolve", "@user:notes.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".amplifier", "notes.md"), strings.TrimSpace(out))

	_, err = run(t, "", "--cwd", project, "resolve", "@user:missing.md")
	assert.Error(t, err)
}

func TestLoadCommand(t *testing.T) {
	_, project := setup(t)
	write(t, filepath.Join(project, "A.md"), "alpha")

	out, err := run(t, "read @A.md", "--cwd", project, "load", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `<context_file paths="`)
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "(from message)")
}

func TestProfileCommand(t *testing.T) {
	_, project := setup(t)
	write(t, filepath.Join(project, "profiles", "ctx.md"), "shared context")
	profilePath := filepath.Join(project, "profiles", "dev.md")
	write(t, profilePath, "---\nprofile:\n  name: dev\n---\nUse @./ctx.md\n")

	out, err := run(t, "", "--cwd", project, "profile", profilePath)
	require.NoError(t, err)
	assert.Contains(t, out, "shared context")
	assert.Contains(t, out, "Use @./ctx.md")
}

func TestCollectionsCommand(t *testing.T) {
	_, project := setup(t)
	write(t, filepath.Join(project, ".amplifier", "collections", "foundation", "context", "A.md"), "a")

	out, err := run(t, "", "--cwd", project, "collections")
	require.NoError(t, err)
	assert.Contains(t, out, "foundation")
	assert.Contains(t, out, "project")
}

func TestInvalidLogLevel(t *testing.T) {
	_, project := setup(t)
	_, err := run(t, "", "--cwd", project, "--log-level", "loud", "collections")
	assert.Error(t, err)
}

func TestLoadCommand_JSON(t *testing.T) {
	_, project := setup(t)
	write(t, filepath.Join(project, "A.md"), "alpha")

	out, err := run(t, "read @A.md", "--cwd", project, "--json", "load", "-")
	require.NoError(t, err)

	var resp struct {
		Success bool     `json:"success"`
		Command string   `json:"command"`
		Data    LoadData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "load", resp.Command)
	require.Len(t, resp.Data.Artifacts, 1)
	assert.Equal(t, "alpha", resp.Data.Artifacts[0].Content)
}

func TestResolveCommand_JSONError(t *testing.T) {
	_, project := setup(t)

	out, err := run(t, "", "--cwd", project, "--json", "resolve", "@missing.md")
	require.Error(t, err)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))

	var resp JSONResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Contains(t, *resp.Error, "@missing.md")
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{errors.New("boom"), ExitGeneralError},
		{fmt.Errorf("x: %w", mention.ErrNotFound), ExitNotFoundError},
		{fmt.Errorf("x: %w", mention.ErrInvalidContext), ExitConfigError},
		{fmt.Errorf("x: %w", config.ErrInvalidConfig), ExitConfigError},
		{fmt.Errorf("x: %w", profile.ErrInvalidFrontMatter), ExitUsageError},
		{mention.ErrTraversalRejected, ExitUsageError},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, GetExitCode(tc.err), "error %v", tc.err)
	}
}

func TestProfileCommand_JSON(t *testing.T) {
	_, project := setup(t)
	write(t, filepath.Join(project, "profiles", "ctx.md"), "shared context")
	profilePath := filepath.Join(project, "profiles", "dev.md")
	write(t, profilePath, "---\nprofile:\n  name: dev\n---\nUse @./ctx.md\n")

	out, err := run(t, "", "--cwd", project, "--json", "profile", profilePath)
	require.NoError(t, err)

	var resp struct {
		Success bool        `json:"success"`
		Command string      `json:"command"`
		Data    ProfileData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "profile", resp.Command)
	assert.Equal(t, profilePath, resp.Data.Path)
	assert.Contains(t, resp.Data.Instruction, "shared context")
	assert.Contains(t, resp.Data.Instruction, "Use @./ctx.md")
}

func TestCollectionsCommand_Named(t *testing.T) {
	home, project := setup(t)
	write(t, filepath.Join(home, ".amplifier", "collections", "foundation", "context", "A.md"), "user a")
	write(t, filepath.Join(project, ".amplifier", "collections", "foundation", "context", "B.md"), "project b")

	out, err := run(t, "", "--cwd", project, "--json", "collections", "foundation")
	require.NoError(t, err)

	var resp struct {
		Data []CollectionData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "project", resp.Data[0].Scope)
	assert.Equal(t, 1, resp.Data[0].ContextFiles)

	_, err = run(t, "", "--cwd", project, "collections", "missing")
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}
