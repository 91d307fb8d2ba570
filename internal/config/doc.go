// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads host configuration for mention loading.
//
// Configuration file location:
//   - ~/.amplifier/mentions.toml
//   - Built-in defaults when the file is absent
//
// Environment overrides are applied after the file:
//   - AMPLIFIER_HOME: home directory used for @user: and @~/ mentions
//   - AMPLIFIER_BUNDLED_COLLECTIONS: bundled collections directory
//   - AMPLIFIER_LOG_LEVEL: debug, info, warn or error
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//	home, _ := cfg.HomeDir()
package config
