// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// MessageType identifies the sender of a message.
type MessageType string

const (
	TypeUser MessageType = "user"
	TypeBot  MessageType = "bot"
)

// String returns the string representation of the type.
func (t MessageType) String() string {
	return string(t)
}

// DisplayName returns a human-readable name for the sender.
func (t MessageType) DisplayName() string {
	switch t {
	case TypeUser:
		return "You"
	case TypeBot:
		return "Assistant"
	default:
		return string(t)
	}
}

// =============================================================================
// MESSAGE
// =============================================================================

// Message is a single entry of a chat thread. Messages are values and are
// never modified after creation.
type Message struct {
	// ID is the creation time in Unix milliseconds. Two messages created in
	// the same millisecond share an ID.
	ID        int64       `json:"id"`
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(t MessageType, content string) Message {
	return NewMessageAt(t, content, time.Now())
}

// NewMessageAt creates a message stamped with the given time.
func NewMessageAt(t MessageType, content string, at time.Time) Message {
	return Message{
		ID:        at.UnixMilli(),
		Type:      t,
		Content:   content,
		Timestamp: at,
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(TypeUser, content)
}

// IsUser reports whether the message was sent by the user.
func (m Message) IsUser() bool {
	return m.Type == TypeUser
}

// Preview returns the first maxLen characters of the content, followed by
// "..." when the content is longer.
func (m Message) Preview(maxLen int) string {
	return util.Ellipsize(m.Content, maxLen)
}

// Clock formats the message time as HH:MM in local time.
func (m Message) Clock() string {
	return m.Timestamp.Local().Format("15:04")
}

// CloneMessages returns a copy of msgs that shares no backing array with it.
// A nil input yields an empty, non-nil slice so that it serializes as [].
func CloneMessages(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
