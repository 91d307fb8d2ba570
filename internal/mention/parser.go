// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mention

import (
	"iter"
	"regexp"
	"sort"
	"strings"

	"github.com/jeranaias/amplifier-mentions/internal/util"
)

// =============================================================================
// MENTION FORMS
// =============================================================================

// MentionForm indicates which scope a mention resolves against.
type MentionForm int

const (
	FormCollection MentionForm = iota // @name:path
	FormUser                          // @user:path
	FormProject                       // @project:path
	FormHome                          // @~/path
	FormBare                          // @path
	FormRelative                      // @./path, ./path on its own line
)

// String returns the string representation of the mention form.
func (f MentionForm) String() string {
	switch f {
	case FormCollection:
		return "collection"
	case FormUser:
		return "user"
	case FormProject:
		return "project"
	case FormHome:
		return "home"
	case FormBare:
		return "bare"
	case FormRelative:
		return "relative"
	default:
		return "unknown"
	}
}

// =============================================================================
// MENTION STRUCT
// =============================================================================

// Mention is a single reference found in text. It is a value and is never
// modified after scanning.
type Mention struct {
	// Raw is the token as written, e.g. "@foundation:context/A.md"
	Raw string

	// Form selects the resolution rule
	Form MentionForm

	// Qualifier is the collection name for FormCollection
	Qualifier string

	// Fragment is the path part the resolver joins onto a root
	Fragment string

	// Offset is the byte offset of Raw in the scanned text
	Offset int
}

// =============================================================================
// SCANNER
// =============================================================================

var (
	// @ must start the text or follow a non-word character, so e-mail
	// addresses are not mentions. Letters, digits and combining marks of any
	// script may appear in the path.
	atPattern = regexp.MustCompile(`(?:^|[^\p{L}\p{N}\p{M}_@])(@[\p{L}\p{N}\p{M}_.~/:\-]+)`)

	// A relative reference line: "./path" or "../path", optionally bulleted.
	refLinePattern = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+][ \t]+)?(\.\.?/[^\s]+)[ \t]*\r?$`)

	qualifierPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)
)

// trailingPunct is stripped from the end of @ tokens ("see @A.md.").
const trailingPunct = ".,;:!?"

// Scanner finds mentions in text. It performs no filesystem access.
type Scanner struct{}

// NewScanner creates a new mention scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan returns every mention in text in left-to-right source order.
func (s *Scanner) Scan(text string) []Mention {
	var mentions []Mention

	// A reference line is one mention; an @ inside it is part of its path.
	var lines [][2]int
	for _, match := range refLinePattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := match[2], match[3]
		raw := text[start:end]
		lines = append(lines, [2]int{start, end})
		mentions = append(mentions, Mention{
			Raw:      raw,
			Form:     FormRelative,
			Fragment: raw,
			Offset:   start,
		})
	}

	for _, match := range atPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := match[2], match[3]
		if insideSpan(lines, start) {
			continue
		}
		raw := strings.TrimRight(text[start:end], trailingPunct)
		if len(raw) < 2 {
			continue
		}
		if m, ok := classify(raw, start); ok {
			mentions = append(mentions, m)
		}
	}

	sort.Slice(mentions, func(i, j int) bool {
		return mentions[i].Offset < mentions[j].Offset
	})

	return mentions
}

// insideSpan reports whether offset falls within one of the sorted spans.
func insideSpan(spans [][2]int, offset int) bool {
	i := sort.Search(len(spans), func(i int) bool { return spans[i][1] > offset })
	return i < len(spans) && spans[i][0] <= offset
}

// Mentions returns a restartable sequence over the mentions in text. Each
// iteration rescans, so ranging twice yields identical results.
func (s *Scanner) Mentions(text string) iter.Seq[Mention] {
	return func(yield func(Mention) bool) {
		for _, m := range s.Scan(text) {
			if !yield(m) {
				return
			}
		}
	}
}

// classify picks the form for an @ token. The most specific prefix wins.
func classify(raw string, offset int) (Mention, bool) {
	body := raw[1:]
	m := Mention{Raw: raw, Offset: offset}

	switch {
	case strings.HasPrefix(body, "~/"):
		m.Form = FormHome
		m.Fragment = strings.TrimPrefix(body, "~/")
	case strings.HasPrefix(body, "./"), strings.HasPrefix(body, "../"):
		m.Form = FormRelative
		m.Fragment = body
	default:
		name, rest, found := strings.Cut(body, ":")
		if !found || !qualifierPattern.MatchString(name) {
			m.Form = FormBare
			m.Fragment = body
			break
		}
		m.Fragment = rest
		switch name {
		case "user":
			m.Form = FormUser
		case "project":
			m.Form = FormProject
		default:
			m.Form = FormCollection
			m.Qualifier = name
		}
	}

	if m.Fragment == "" {
		return Mention{}, false
	}
	return m, true
}

// HasMentions returns true if the text contains anything the scanner would
// report. It is a cheap pre-check before a full load.
func HasMentions(text string) bool {
	for range NewScanner().Mentions(text) {
		return true
	}
	return false
}

// =============================================================================
// MENTION SUMMARY
// =============================================================================

// Summary counts mentions by form.
type Summary struct {
	Total       int
	ByForm      map[MentionForm]int
	Collections []string
}

// Summarize creates a summary of the given mentions.
func Summarize(mentions []Mention) Summary {
	summary := Summary{
		Total:  len(mentions),
		ByForm: make(map[MentionForm]int),
	}

	seen := make(map[string]bool)
	for _, m := range mentions {
		summary.ByForm[m.Form]++
		if m.Form == FormCollection && !seen[m.Qualifier] {
			seen[m.Qualifier] = true
			summary.Collections = append(summary.Collections, m.Qualifier)
		}
	}

	return summary
}

// FormatSummary returns a short description such as "3 mentions: 2 bare, 1 collection".
func (s Summary) FormatSummary() string {
	if s.Total == 0 {
		return ""
	}

	var parts []string
	for f := FormCollection; f <= FormRelative; f++ {
		if n := s.ByForm[f]; n > 0 {
			parts = append(parts, util.IntToStr(n)+" "+f.String())
		}
	}

	noun := " mentions: "
	if s.Total == 1 {
		noun = " mention: "
	}
	return util.IntToStr(s.Total) + noun + strings.Join(parts, ", ")
}
