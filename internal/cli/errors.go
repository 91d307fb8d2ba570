// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"

	"github.com/jeranaias/amplifier-mentions/internal/config"
	"github.com/jeranaias/amplifier-mentions/internal/mention"
	"github.com/jeranaias/amplifier-mentions/internal/profile"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid input such as a malformed profile
	ExitUsageError = 2
	// ExitConfigError indicates a config file or resolution context error
	ExitConfigError = 3
	// ExitNotFoundError indicates a mention that resolved to nothing
	ExitNotFoundError = 7
)

// GetExitCode determines the exit code for an error returned by Execute.
func GetExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, mention.ErrInvalidContext):
		return ExitConfigError
	case errors.Is(err, mention.ErrNotFound):
		return ExitNotFoundError
	case errors.Is(err, mention.ErrTraversalRejected), errors.Is(err, profile.ErrInvalidFrontMatter):
		return ExitUsageError
	default:
		return ExitGeneralError
	}
}
