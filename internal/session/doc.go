// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session connects mention loading to a conversation.
//
// A Session owns the resolution inputs (cwd, home, collection roots), a
// session-wide deduplicator and the message stack. Each profile activation or
// user turn is an independent load; content already injected earlier in the
// session is not injected again.
//
// # Usage
//
//	s, err := session.New(session.Options{Logger: logger})
//	if err != nil {
//		return err
//	}
//	if _, err := s.ProcessProfile(ctx, profilePath); err != nil {
//		return err
//	}
//	artifacts, err := s.ProcessUserInput(ctx, "Review @project:notes/plan.md")
package session
