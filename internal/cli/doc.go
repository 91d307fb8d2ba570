// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the amplifier-mentions command line, a small host
// for inspecting how mentions scan, resolve and load.
//
// Commands:
//
//	amplifier-mentions scan <file|->        list mentions in a text
//	amplifier-mentions resolve <@mention>   print the resolved path
//	amplifier-mentions load <file|->        print the rendered context files
//	amplifier-mentions collections          list discovered collections
//	amplifier-mentions profile <file>       print a profile's system instruction
package cli
