// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/jeranaias/shopdesk-tui/internal/util"
)

const (
	// TitleMaxRunes is the title length after which the first user message
	// is cut and suffixed with "...".
	TitleMaxRunes = 30

	// PreviewMaxRunes bounds the history preview of the last user message.
	PreviewMaxRunes = 50

	// DefaultTitle is shown for conversations saved without a title.
	DefaultTitle = "Conversation"

	// NoMessagesPreview is shown for conversations without user messages.
	NoMessagesPreview = "No messages"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is a saved thread. The ID is assigned by the chat API on the
// first successful exchange; Timestamp records when the conversation was
// created and is not touched by later exchanges.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Timestamp time.Time `json:"timestamp"`
}

// NewConversation builds the record saved after the first exchange of a
// session. The title is derived from the user's message.
func NewConversation(id, firstMessage string, messages []Message, at time.Time) Conversation {
	return Conversation{
		ID:        id,
		Title:     TitleFor(firstMessage),
		Messages:  CloneMessages(messages),
		Timestamp: at,
	}
}

// TitleFor derives a conversation title from the first user message.
func TitleFor(message string) string {
	return util.Ellipsize(message, TitleMaxRunes)
}

// WithMessages returns a copy of c with msgs appended to its messages.
// The receiver is not modified.
func (c Conversation) WithMessages(msgs ...Message) Conversation {
	out := c
	out.Messages = make([]Message, 0, len(c.Messages)+len(msgs))
	out.Messages = append(out.Messages, c.Messages...)
	out.Messages = append(out.Messages, msgs...)
	return out
}

// DisplayTitle returns the title, or DefaultTitle when it is empty.
func (c Conversation) DisplayTitle() string {
	if c.Title == "" {
		return DefaultTitle
	}
	return c.Title
}

// Preview returns the last user message, truncated for the history list.
func (c Conversation) Preview() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].IsUser() {
			return c.Messages[i].Preview(PreviewMaxRunes)
		}
	}
	return NoMessagesPreview
}

// MessageCount returns the number of messages in the conversation.
func (c Conversation) MessageCount() int {
	return len(c.Messages)
}

// LastBotMessage returns the most recent bot message, if any.
func LastBotMessage(msgs []Message) (Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == TypeBot {
			return msgs[i], true
		}
	}
	return Message{}, false
}

// FindConversation returns the index of the conversation with the given ID,
// or -1.
func FindConversation(convs []Conversation, id string) int {
	for i := range convs {
		if convs[i].ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// DATE FORMATTING
// =============================================================================

// FormatRelative formats a conversation timestamp for the history list:
// clock time within the last day, "Yesterday" within two days, the date
// otherwise.
func FormatRelative(ts, now time.Time) string {
	age := now.Sub(ts)
	switch {
	case age < 24*time.Hour:
		return ts.Local().Format("15:04")
	case age < 48*time.Hour:
		return "Yesterday"
	default:
		return ts.Local().Format("2006-01-02")
	}
}
