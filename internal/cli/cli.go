// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/amplifier-mentions/internal/config"
	"github.com/jeranaias/amplifier-mentions/internal/logging"
	"github.com/jeranaias/amplifier-mentions/internal/session"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// app holds what PersistentPreRunE builds for the subcommands.
type app struct {
	configPath string
	logLevel   string
	cwd        string
	jsonOutput bool

	cfg     *config.Config
	logger  *zap.Logger
	session *session.Session
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "amplifier-mentions",
		Short:         "Resolve and load @mention context files",
		Version:       fmt.Sprintf("%s (%s, %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.amplifier/mentions.toml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.cwd, "cwd", "", "working directory for resolution (default current directory)")
	flags.BoolVar(&a.jsonOutput, "json", false, "write results as JSON")

	root.AddCommand(
		newScanCommand(a),
		newResolveCommand(a),
		newLoadCommand(a),
		newCollectionsCommand(a),
		newProfileCommand(a),
	)
	return root
}

// init loads config, builds the logger and the session.
func (a *app) init() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFromPath(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}

	a.logger, err = logging.New(a.cfg.Log.Level, a.cfg.Log.JSON)
	if err != nil {
		return err
	}

	home, err := a.cfg.HomeDir()
	if err != nil {
		return err
	}
	cwd := a.cwd
	if cwd != "" {
		if cwd, err = filepath.Abs(cwd); err != nil {
			return err
		}
	}

	a.session, err = session.New(session.Options{
		Cwd:                cwd,
		Home:               home,
		BundledCollections: a.cfg.Resolve.BundledCollections,
		ExtraCollections:   a.cfg.Resolve.ExtraCollections,
		MaxFileSize:        a.cfg.Resolve.MaxFileSize,
		CacheEntries:       a.cfg.Resolve.CacheEntries,
		Logger:             a.logger,
	})
	return err
}

// readInput reads a file argument or stdin for "-". dir is the file's
// directory, empty for stdin.
func readInput(cmd *cobra.Command, arg string) (text, dir string, err error) {
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), "", nil
	}

	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", arg, err)
	}
	return string(data), filepath.Dir(abs), nil
}
