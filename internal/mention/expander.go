// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"strings"
)

// =============================================================================
// CONTEXT ARTIFACTS
// =============================================================================

// ContextArtifact is one deduplicated file ready for the message stack.
type ContextArtifact struct {
	// PathsLabel is every credit joined with ", "
	PathsLabel string

	// Content is the loaded text, unmodified
	Content string
}

// Render wraps the content in the context_file block downstream provider
// adapters expect:
//
//	<context_file paths="p1 (from profile), p2 (from /x/B.md)">
//	{content}
//	</context_file>
func (a ContextArtifact) Render() string {
	var sb strings.Builder
	sb.Grow(len(a.Content) + len(a.PathsLabel) + 48)
	sb.WriteString(`<context_file paths="`)
	sb.WriteString(a.PathsLabel)
	sb.WriteString("\">\n")
	sb.WriteString(a.Content)
	sb.WriteString("\n</context_file>")
	return sb.String()
}

// Package renders entries as artifacts, preserving their order.
func Package(entries []LoadedEntry) []ContextArtifact {
	artifacts := make([]ContextArtifact, 0, len(entries))
	for _, e := range entries {
		labels := make([]string, 0, len(e.Credits))
		for _, c := range e.Credits {
			labels = append(labels, c.String())
		}
		artifacts = append(artifacts, ContextArtifact{
			PathsLabel: strings.Join(labels, ", "),
			Content:    e.Content,
		})
	}
	return artifacts
}

// RenderAll renders artifacts joined by blank lines, for callers that fold
// context into a single system instruction.
func RenderAll(artifacts []ContextArtifact) string {
	parts := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		parts = append(parts, a.Render())
	}
	return strings.Join(parts, "\n\n")
}

// =============================================================================
// EXPANDER
// =============================================================================

// Expander runs the whole pipeline for one set of sources.
type Expander struct {
	loader *Loader
}

// NewExpander creates an expander. A nil loader uses NewLoader().
func NewExpander(loader *Loader) *Expander {
	if loader == nil {
		loader = NewLoader()
	}
	return &Expander{loader: loader}
}

// ExpansionResult is the outcome of expanding a set of sources.
type ExpansionResult struct {
	// Loaded is every loaded entry, deduplicated, including content the
	// session already delivered
	Loaded []LoadedEntry

	// Entries are the entries to deliver: Loaded minus delivered content
	Entries []LoadedEntry

	// Artifacts are Entries rendered for the message stack
	Artifacts []ContextArtifact
}

// Expand loads, deduplicates and packages. When dedup is non-nil, content
// already committed to it is dropped. Expand never commits; the caller
// commits Loaded once the artifacts are delivered.
func (e *Expander) Expand(sources []Source, rc ResolutionContext, dedup *Deduplicator) (*ExpansionResult, error) {
	raw, err := e.loader.Load(sources, rc)
	if err != nil {
		return nil, err
	}

	loaded := Dedupe(raw)
	entries := loaded
	if dedup != nil {
		entries = dedup.Filter(loaded)
	}

	return &ExpansionResult{
		Loaded:    loaded,
		Entries:   entries,
		Artifacts: Package(entries),
	}, nil
}
