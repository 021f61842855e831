// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types shared by the store, the
// persistence layer, the exchange orchestrator and the terminal UI.
//
// # Key Types
//
//   - Message: Single chat message (user or bot) with a millisecond ID
//   - Conversation: A saved thread with a server-assigned ID and a title
//   - MessageType: Sender enumeration (user, bot)
//
// # Usage
//
// Build the messages of one exchange:
//
//	user := model.NewUserMessage("Where is my order?")
//	bot := model.NewMessage(model.TypeBot, reply)
//
// Derive the title of a new conversation:
//
//	title := model.TitleFor(user.Content)
//
// Both types serialize to the JSON layout stored under the conversations key:
// message fields id, type, content, timestamp and conversation fields id,
// title, messages, timestamp.
package model
