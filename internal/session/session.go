// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/amplifier-mentions/internal/collection"
	"github.com/jeranaias/amplifier-mentions/internal/mention"
	"github.com/jeranaias/amplifier-mentions/internal/model"
	"github.com/jeranaias/amplifier-mentions/internal/profile"
)

// MessageStack receives loaded context ahead of the message that triggered it.
type MessageStack interface {
	AddMessage(ctx context.Context, msg *model.Message) error
}

// Options configures a Session. Zero values use the process defaults.
type Options struct {
	// Cwd defaults to os.Getwd
	Cwd string
	// Home defaults to os.UserHomeDir
	Home string
	// BundledCollections is the lowest-precedence collection root
	BundledCollections string
	// ExtraCollections are searched between user and bundled roots
	ExtraCollections []string
	// MaxFileSize limits mentioned files (0 = reader default)
	MaxFileSize int64
	// CacheEntries sizes the session file cache (0 = no cache)
	CacheEntries int
	// Logger defaults to a no-op logger
	Logger *zap.Logger
	// Stack defaults to a new model.Conversation
	Stack MessageStack
}

// =============================================================================
// SESSION
// =============================================================================

// Session tracks the state shared by the loads of one conversation.
type Session struct {
	id        string
	startTime time.Time

	cwd   string
	home  string
	roots []mention.Root

	expander *mention.Expander
	reader   *mention.Reader
	dedup    *mention.Deduplicator
	stack    MessageStack
	logger   *zap.Logger
}

// New creates a session.
func New(opts Options) (*Session, error) {
	cwd := opts.Cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not determine working directory: %w", err)
		}
		cwd = wd
	}
	home := opts.Home
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home directory: %w", err)
		}
		home = h
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	stack := opts.Stack
	if stack == nil {
		stack = model.NewConversation()
	}

	readerCfg := mention.DefaultReaderConfig()
	if opts.MaxFileSize > 0 {
		readerCfg.MaxFileSize = opts.MaxFileSize
	}
	var cache *mention.FileCache
	if opts.CacheEntries > 0 {
		cache = mention.NewFileCache(opts.CacheEntries, 0)
	}

	id := uuid.NewString()
	logger = logger.With(zap.String("session_id", id))

	reader := mention.NewReader(readerCfg, cache)
	loader := mention.NewLoader(
		mention.WithLogger(logger),
		mention.WithReader(reader),
	)

	return &Session{
		id:        id,
		startTime: time.Now(),
		cwd:       cwd,
		home:      home,
		roots:     collection.SearchPaths(cwd, home, opts.BundledCollections, opts.ExtraCollections),
		expander:  mention.NewExpander(loader),
		reader:    reader,
		dedup:     mention.NewDeduplicator(),
		stack:     stack,
		logger:    logger,
	}, nil
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// StartTime returns when the session started.
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// Stack returns the message stack context is injected into.
func (s *Session) Stack() MessageStack {
	return s.stack
}

// Deduplicator returns the session-wide deduplicator.
func (s *Session) Deduplicator() *mention.Deduplicator {
	return s.dedup
}

// CacheStats returns statistics for the session file cache.
func (s *Session) CacheStats() mention.FileCacheStats {
	return s.reader.CacheStats()
}

// CollectionRoots returns the collection roots in precedence order.
func (s *Session) CollectionRoots() []mention.Root {
	return append([]mention.Root(nil), s.roots...)
}

// ResolutionContext returns the context for a load whose text lives in
// sourceDir ("" for raw input).
func (s *Session) ResolutionContext(sourceDir string) mention.ResolutionContext {
	return mention.ResolutionContext{
		Cwd:             s.cwd,
		SourceDir:       sourceDir,
		Home:            s.home,
		CollectionRoots: s.CollectionRoots(),
	}
}

// =============================================================================
// PROCESSING
// =============================================================================

// ProcessUserInput loads the files mentioned in text, adds one developer
// message per new artifact, then adds text itself as the user message,
// unchanged. It returns the artifacts that were added. Content counts as
// delivered only after every context message was accepted by the stack.
func (s *Session) ProcessUserInput(ctx context.Context, text string) ([]mention.ContextArtifact, error) {
	var artifacts []mention.ContextArtifact

	if mention.HasMentions(text) {
		s.logger.Info("processing mentions in user input")
		result, err := s.expander.Expand(
			[]mention.Source{{Text: text, Origin: "message"}},
			s.ResolutionContext(""),
			s.dedup,
		)
		if err != nil {
			return nil, err
		}
		artifacts = result.Artifacts

		if len(artifacts) == 0 {
			s.logger.Debug("no files found for runtime mentions (or all already loaded)")
		} else {
			s.logger.Info("loaded context files from runtime mentions", zap.Int("count", len(artifacts)))
		}

		for _, a := range artifacts {
			if err := s.stack.AddMessage(ctx, model.NewContextMessage(a.Render(), a.PathsLabel)); err != nil {
				return nil, fmt.Errorf("failed to add context message: %w", err)
			}
		}
		s.dedup.Commit(result.Loaded)
	}

	if err := s.stack.AddMessage(ctx, model.NewUserMessage(text)); err != nil {
		return nil, fmt.Errorf("failed to add user message: %w", err)
	}
	return artifacts, nil
}

// ProcessProfile reads the profile at path, loads the files its body mentions
// and adds a single system message: the rendered context followed by the
// body. The body text itself is not modified. It returns the instruction.
func (s *Session) ProcessProfile(ctx context.Context, path string) (string, error) {
	p, err := profile.Load(path)
	if err != nil {
		return "", err
	}
	if p.Body == "" {
		s.logger.Debug("no markdown body in profile", zap.String("profile", path))
		return "", nil
	}

	instruction := p.Body
	var loaded []mention.LoadedEntry
	if mention.HasMentions(p.Body) {
		s.logger.Info("profile contains mentions, loading context files",
			zap.String("profile", filepath.Base(path)))

		result, err := s.expander.Expand(
			[]mention.Source{{Text: p.Body, Dir: p.Dir(), Origin: "profile"}},
			s.ResolutionContext(p.Dir()),
			s.dedup,
		)
		if err != nil {
			return "", err
		}
		instruction = BuildSystemInstruction(result.Artifacts, p.Body)
		loaded = result.Loaded
		s.logger.Info("loaded context files from profile mentions", zap.Int("count", len(result.Artifacts)))
	}

	if err := s.stack.AddMessage(ctx, model.NewSystemMessage(instruction)); err != nil {
		return "", fmt.Errorf("failed to add system message: %w", err)
	}
	s.dedup.Commit(loaded)
	return instruction, nil
}

// Preview expands text without touching the session deduplicator or the
// message stack. dir resolves relative mentions.
func (s *Session) Preview(text, dir, origin string) (*mention.ExpansionResult, error) {
	return s.expander.Expand(
		[]mention.Source{{Text: text, Dir: dir, Origin: origin}},
		s.ResolutionContext(dir),
		nil,
	)
}

// BuildSystemInstruction prepends rendered artifacts to body, separated by a
// blank line.
func BuildSystemInstruction(artifacts []mention.ContextArtifact, body string) string {
	if len(artifacts) == 0 {
		return body
	}
	return mention.RenderAll(artifacts) + "\n\n" + body
}
