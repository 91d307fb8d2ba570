// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/amplifier-mentions/internal/util"
)

// =============================================================================
// LOADED ENTRIES
// =============================================================================

// Credit records one reference that caused content to be loaded.
type Credit struct {
	Path   string
	Origin string
}

// String returns "path (origin)".
func (c Credit) String() string {
	if c.Origin == "" {
		return c.Path
	}
	return c.Path + " (" + c.Origin + ")"
}

// LoadedEntry is one loaded file with every reference that reached it.
type LoadedEntry struct {
	// Path is the real path the content was read from
	Path string

	// Content is the file text, unmodified
	Content string

	// Identity is the content hash used for deduplication
	Identity string

	// Credits in discovery order, without duplicates
	Credits []Credit
}

// addCredit appends c unless an equal credit is already present.
func (e *LoadedEntry) addCredit(c Credit) {
	for _, existing := range e.Credits {
		if existing == c {
			return
		}
	}
	e.Credits = append(e.Credits, c)
}

// Source is one top-level text to scan.
type Source struct {
	// Text is scanned for mentions and never modified
	Text string

	// Dir resolves relative mentions; empty for raw runtime input
	Dir string

	// Origin describes where the text came from, e.g. "profile" or "message"
	Origin string
}

// =============================================================================
// LOADER
// =============================================================================

// Loader follows mentions through files, depth first, loading each file at
// most once per Load call.
type Loader struct {
	scanner  *Scanner
	resolver *Resolver
	reader   *Reader
	logger   *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger. Skipped mentions are logged at debug level.
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithReader sets the file reader.
func WithReader(reader *Reader) LoaderOption {
	return func(l *Loader) {
		if reader != nil {
			l.reader = reader
		}
	}
}

// WithResolver sets the path resolver.
func WithResolver(resolver *Resolver) LoaderOption {
	return func(l *Loader) {
		if resolver != nil {
			l.resolver = resolver
		}
	}
}

// NewLoader creates a loader with default scanner, resolver and reader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		scanner:  NewScanner(),
		resolver: NewResolver(),
		reader:   NewReader(DefaultReaderConfig(), nil),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// frame is one text whose mentions are being expanded.
type frame struct {
	mentions []Mention
	next     int
	dir      string
	origin   string
}

// failedLoad marks a path that resolved but could not be read.
const failedLoad = -1

// Load scans the sources in order and returns one entry per loaded file, in
// discovery order. A file's own mentions are expanded right after it is
// loaded, before the next mention of the text that referenced it. The only
// error is an invalid resolution context.
func (l *Loader) Load(sources []Source, rc ResolutionContext) ([]LoadedEntry, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}

	log := l.logger.With(zap.String("load_id", uuid.NewString()))

	var entries []LoadedEntry
	visited := make(map[string]int)

	for _, src := range sources {
		dir := src.Dir
		if dir == "" {
			dir = rc.SourceDir
		}
		stack := []*frame{{
			mentions: l.scanner.Scan(src.Text),
			dir:      dir,
			origin:   originLabel(src.Origin),
		}}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if top.next >= len(top.mentions) {
				stack = stack[:len(stack)-1]
				continue
			}
			m := top.mentions[top.next]
			top.next++

			path, err := l.resolver.Resolve(m, rc.WithSourceDir(top.dir))
			if err != nil {
				log.Debug("mention skipped",
					zap.String("mention", m.Raw),
					zap.String("form", m.Form.String()),
					zap.String("origin", top.origin),
					zap.Error(err))
				continue
			}

			diskPath := RealPath(path)
			id := norm.NFC.String(diskPath)
			credit := Credit{Path: id, Origin: top.origin}

			if idx, seen := visited[id]; seen {
				if idx != failedLoad {
					entries[idx].addCredit(credit)
				}
				log.Debug("mention already loaded",
					zap.String("mention", m.Raw),
					zap.String("path", id))
				continue
			}

			content, err := l.reader.ReadFile(diskPath)
			if err != nil {
				visited[id] = failedLoad
				log.Debug("mention unreadable",
					zap.String("mention", m.Raw),
					zap.String("path", id),
					zap.Error(err))
				continue
			}

			visited[id] = len(entries)
			entries = append(entries, LoadedEntry{
				Path:     diskPath,
				Content:  content,
				Identity: ContentIdentity(content),
				Credits:  []Credit{credit},
			})
			log.Debug("mention loaded",
				zap.String("mention", m.Raw),
				zap.String("path", id),
				zap.Int("bytes", len(content)),
				zap.String("preview", util.TruncateRunes(content, 60)))

			stack = append(stack, &frame{
				mentions: l.scanner.Scan(content),
				dir:      filepath.Dir(diskPath),
				origin:   "from " + id,
			})
		}
	}

	return entries, nil
}

// originLabel turns a source origin such as "profile" into "from profile".
func originLabel(origin string) string {
	if origin == "" {
		origin = "input"
	}
	return "from " + origin
}
