// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the message stack that loaded context is injected into.
//
// # Key Types
//
//   - Message: Single message with role, content and timestamp
//   - Role: Message role enumeration (system, developer, user, assistant)
//   - Conversation: Ordered message stack implementing AddMessage
//
// # Usage
//
//	conv := model.NewConversation()
//	_ = conv.AddMessage(ctx, model.NewMessage(model.RoleDeveloper, artifact.Render()))
//	_ = conv.AddMessage(ctx, model.NewUserMessage(input))
package model
