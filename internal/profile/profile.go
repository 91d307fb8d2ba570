// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package profile reads profile files: YAML front matter followed by a
// markdown body. The body is the text scanned for @ mentions.
//
//	---
//	profile:
//	  name: dev
//	  extends: foundation:base
//	---
//	You are a careful engineer. Follow @foundation:context/PHILOSOPHY.md.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidFrontMatter is returned when the front matter block is unterminated
// or not valid YAML.
var ErrInvalidFrontMatter = errors.New("invalid front matter")

// Meta is the profile section of the front matter.
type Meta struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
	Extends     string `yaml:"extends"`
}

// Profile is a parsed profile file.
type Profile struct {
	// Path is the file the profile was read from ("" when parsed from bytes)
	Path string `yaml:"-"`

	// Meta is the profile section of the front matter
	Meta Meta `yaml:"profile"`

	// FrontMatter holds every front matter key
	FrontMatter map[string]any `yaml:"-"`

	// Body is the markdown after the front matter
	Body string `yaml:"-"`
}

// Dir returns the directory containing the profile file.
func (p *Profile) Dir() string {
	if p.Path == "" {
		return ""
	}
	return filepath.Dir(p.Path)
}

// SplitFrontMatter separates a leading "---" delimited block from the body.
// ok is false when the text has no front matter; body is then the whole text.
func SplitFrontMatter(text string) (front, body string, ok bool, err error) {
	trimmed := strings.TrimPrefix(text, "\ufeff")
	normalized := strings.ReplaceAll(trimmed, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return "", text, false, nil
	}

	lines := strings.Split(normalized, "\n")
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return "", "", false, fmt.Errorf("%w: missing closing ---", ErrInvalidFrontMatter)
	}

	front = strings.Join(lines[1:end], "\n")
	body = strings.TrimLeft(strings.Join(lines[end+1:], "\n"), "\n")
	return front, body, true, nil
}

// Parse parses profile file content.
func Parse(data []byte) (*Profile, error) {
	front, body, ok, err := SplitFrontMatter(string(data))
	if err != nil {
		return nil, err
	}

	p := &Profile{Body: body}
	if !ok {
		return p, nil
	}

	if err := yaml.Unmarshal([]byte(front), p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
	}
	if err := yaml.Unmarshal([]byte(front), &p.FrontMatter); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
	}
	return p, nil
}

// Load reads and parses the profile at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p.Path = abs
	return p, nil
}
