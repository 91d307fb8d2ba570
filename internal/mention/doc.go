// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mention resolves @ mentions in profile bodies and chat messages into
// file content and packages that content for a model-facing message stack.
//
// The pipeline is leaf-first: a Scanner finds mentions, a Resolver maps each
// mention to at most one existing file, a Loader follows mentions found in
// loaded files, Dedupe merges entries with identical content, and Package
// renders the result as context artifacts.
//
// # Mention Forms
//
//   - @name:path      - file inside a named collection
//   - @user:path      - ~/.amplifier/path
//   - @project:path   - ./.amplifier/path
//   - @~/path         - path under the home directory
//   - @path           - cwd first, then every collection root
//   - @./path, ./path - relative to the file that contains the mention
//
// Missing files, rejected paths, cycles and unreadable files are skipped
// silently. Loading never fails because of a bad reference; only an invalid
// ResolutionContext is reported.
//
// # Usage
//
//	loader := mention.NewLoader(mention.WithLogger(logger))
//	entries, err := loader.Load([]mention.Source{{Text: msg, Origin: "message"}}, rc)
//	artifacts := mention.Package(mention.Dedupe(entries))
//	for _, a := range artifacts {
//		stack.Add(a.Render())
//	}
package mention
