// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/amplifier-mentions/internal/collection"
	"github.com/jeranaias/amplifier-mentions/internal/mention"
)

// =============================================================================
// SCAN
// =============================================================================

func newScanCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <file|->",
		Short: "List the mentions found in a text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			mentions := mention.NewScanner().Scan(text)
			summary := mention.Summarize(mentions).FormatSummary()

			if a.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), "scan", func() (interface{}, error) {
					data := ScanData{Mentions: make([]MentionData, 0, len(mentions)), Summary: summary}
					for _, m := range mentions {
						data.Mentions = append(data.Mentions, MentionData{
							Raw:       m.Raw,
							Form:      m.Form.String(),
							Qualifier: m.Qualifier,
							Fragment:  m.Fragment,
							Offset:    m.Offset,
						})
					}
					return data, nil
				})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "OFFSET\tFORM\tQUALIFIER\tFRAGMENT")
			for _, m := range mentions {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.Offset, m.Form, m.Qualifier, m.Fragment)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if summary != "" {
				fmt.Fprintln(cmd.OutOrStdout(), summary)
			}
			return nil
		},
	}
}

// =============================================================================
// RESOLVE
// =============================================================================

func newResolveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <@mention>",
		Short: "Print the file a mention resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolve := func() (interface{}, error) {
				// Relative mentions on the command line resolve against cwd.
				rc := a.session.ResolutionContext("")
				rc.SourceDir = rc.Cwd
				if err := rc.Validate(); err != nil {
					return nil, err
				}
				path, err := mention.NewResolver().ResolveToken(args[0], rc)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", args[0], err)
				}
				return ResolveData{Mention: args[0], Path: path}, nil
			}

			if a.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), "resolve", resolve)
			}
			data, err := resolve()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), data.(ResolveData).Path)
			return nil
		},
	}
}

// =============================================================================
// LOAD
// =============================================================================

func newLoadCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file|->",
		Short: "Load every file a text mentions and print the context blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, dir, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			origin := "message"
			if args[0] != "-" {
				origin = filepath.Base(args[0])
			}

			result, err := a.session.Preview(text, dir, origin)
			if err != nil {
				return err
			}
			stats := a.session.CacheStats()
			a.logger.Debug("load complete",
				zap.String("origin", origin),
				zap.Int("artifacts", len(result.Artifacts)),
				zap.Int("cache_hits", stats.Hits),
				zap.Int("cache_misses", stats.Misses),
				zap.Int("cache_entries", stats.EntryCount))

			if a.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), "load", func() (interface{}, error) {
					data := LoadData{Artifacts: make([]ArtifactData, 0, len(result.Artifacts))}
					for _, artifact := range result.Artifacts {
						data.Artifacts = append(data.Artifacts, ArtifactData{
							Paths:   artifact.PathsLabel,
							Content: artifact.Content,
						})
					}
					return data, nil
				})
			}

			for _, artifact := range result.Artifacts {
				fmt.Fprintln(cmd.OutOrStdout(), artifact.Render())
			}
			return nil
		},
	}
}

// =============================================================================
// COLLECTIONS
// =============================================================================

func newCollectionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "collections [name]",
		Short: "List collections in precedence order, or the one a name resolves to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roots := a.session.CollectionRoots()

			var collections []collection.Collection
			if len(args) == 1 {
				c, ok := collection.Find(roots, args[0])
				if !ok {
					return fmt.Errorf("collection %s: %w", args[0], mention.ErrNotFound)
				}
				collections = []collection.Collection{c}
			} else {
				var err error
				if collections, err = collection.Discover(roots); err != nil {
					return err
				}
			}

			data := make([]CollectionData, 0, len(collections))
			for _, c := range collections {
				files, err := c.ContextFiles()
				if err != nil {
					a.logger.Warn("could not list context files",
						zap.String("collection", c.Name),
						zap.Error(err))
				}
				data = append(data, CollectionData{
					Name:         c.Name,
					Scope:        c.Scope,
					Path:         c.Path,
					ContextFiles: len(files),
				})
			}

			if a.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), "collections", func() (interface{}, error) {
					return data, nil
				})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSCOPE\tCONTEXT FILES\tPATH")
			for _, c := range data {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.Name, c.Scope, c.ContextFiles, c.Path)
			}
			return w.Flush()
		},
	}
}

// =============================================================================
// PROFILE
// =============================================================================

func newProfileCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <file>",
		Short: "Print the system instruction built from a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			process := func() (interface{}, error) {
				instruction, err := a.session.ProcessProfile(cmd.Context(), args[0])
				if err != nil {
					return nil, err
				}
				return ProfileData{Path: args[0], Instruction: instruction}, nil
			}

			if a.jsonOutput {
				return outputJSON(cmd.OutOrStdout(), "profile", process)
			}
			data, err := process()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), data.(ProfileData).Instruction)
			return nil
		},
	}
}
