// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small string helpers shared by the mention packages.
//
//   - TruncateRunes: UTF-8 safe truncation with ellipsis, for log previews
//   - IntToStr: integer formatting for summaries
package util
