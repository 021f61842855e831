// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"github.com/jeranaias/shopdesk-tui/internal/model"
)

// State is a snapshot of a chat session.
type State struct {
	// Messages is the live thread: either unsaved messages of the active
	// session or the messages of the loaded conversation.
	Messages []model.Message

	// IsLoading is true while an exchange is waiting for the chat API.
	IsLoading bool

	// UserInput is the pending, unsent input text.
	UserInput string

	// Conversations is the saved history in creation order.
	Conversations []model.Conversation

	// CurrentConversationID is the saved conversation the live thread is
	// attached to. Empty until the first successful exchange of a session.
	CurrentConversationID string

	// SelectedConversationID is the conversation highlighted in history.
	SelectedConversationID string

	// conversationsRev increases every time Conversations is replaced.
	conversationsRev uint64
}

// Initial returns the state of a fresh session.
func Initial() State {
	return State{
		Messages:      []model.Message{},
		Conversations: []model.Conversation{},
	}
}

// ConversationsChanged reports whether the saved conversation list was
// replaced between prev and s.
func (s State) ConversationsChanged(prev State) bool {
	return s.conversationsRev != prev.conversationsRev
}

// HasCurrentConversation reports whether the live thread is attached to a
// saved conversation.
func (s State) HasCurrentConversation() bool {
	return s.CurrentConversationID != ""
}

// Conversation returns the saved conversation with the given ID.
func (s State) Conversation(id string) (model.Conversation, bool) {
	if i := model.FindConversation(s.Conversations, id); i >= 0 {
		return s.Conversations[i], true
	}
	return model.Conversation{}, false
}

// SelectedConversation returns the conversation highlighted in history.
func (s State) SelectedConversation() (model.Conversation, bool) {
	if s.SelectedConversationID == "" {
		return model.Conversation{}, false
	}
	return s.Conversation(s.SelectedConversationID)
}
