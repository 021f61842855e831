// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"github.com/jeranaias/shopdesk-tui/internal/model"
)

// Reduce applies cmd to s and returns the resulting state.
//
// Reduce is pure: s and every slice reachable from it or from cmd are left
// untouched. Unknown commands return s unchanged.
func Reduce(s State, cmd Command) State {
	switch c := cmd.(type) {
	case SetMessages:
		s.Messages = model.CloneMessages(c.Messages)

	case AddMessage:
		s.Messages = appendMessages(s.Messages, c.Message)

	case SetLoading:
		s.IsLoading = c.Loading

	case SetUserInput:
		s.UserInput = c.Text

	case SetConversations:
		s.Conversations = cloneConversations(c.Conversations)
		s.conversationsRev++

	case AddConversation:
		s.Conversations = appendConversation(s.Conversations, c.Conversation)
		s.conversationsRev++

	case SetCurrentConversation:
		s.CurrentConversationID = c.ID

	case SetSelectedConversation:
		s.SelectedConversationID = c.ID

	case LoadConversation:
		if conv, ok := s.Conversation(c.ID); ok {
			s.Messages = model.CloneMessages(conv.Messages)
		} else {
			s.Messages = []model.Message{}
		}
		s.CurrentConversationID = c.ID
		s.SelectedConversationID = c.ID

	case ClearMessages:
		s.Messages = []model.Message{}

	case StartNewConversation:
		s.Messages = []model.Message{}
		s.CurrentConversationID = ""
		s.SelectedConversationID = ""

	case DeleteConversation:
		s = reduceDelete(s, c)

	case RecordExchange:
		s = reduceRecord(s, c)
	}
	return s
}

func reduceDelete(s State, c DeleteConversation) State {
	idx := model.FindConversation(s.Conversations, c.ID)
	if idx < 0 {
		return s
	}

	convs := make([]model.Conversation, 0, len(s.Conversations)-1)
	convs = append(convs, s.Conversations[:idx]...)
	convs = append(convs, s.Conversations[idx+1:]...)
	s.Conversations = convs
	s.conversationsRev++

	if s.SelectedConversationID == c.ID {
		s.Messages = []model.Message{}
		s.CurrentConversationID = ""
		s.SelectedConversationID = ""
	}
	return s
}

func reduceRecord(s State, c RecordExchange) State {
	s.CurrentConversationID = c.ConversationID

	target := c.PriorID
	if target == "" {
		// A new session whose returned ID is already saved keeps IDs unique
		// by extending the existing record instead of adding a second one.
		if model.FindConversation(s.Conversations, c.ConversationID) < 0 {
			conv := model.NewConversation(c.ConversationID, c.User.Content, c.Thread, c.At)
			s.Conversations = appendConversation(s.Conversations, conv)
			s.conversationsRev++
			return s
		}
		target = c.ConversationID
	}

	idx := model.FindConversation(s.Conversations, target)
	if idx < 0 {
		return s
	}
	convs := cloneConversations(s.Conversations)
	convs[idx] = convs[idx].WithMessages(c.User, c.Bot)
	s.Conversations = convs
	s.conversationsRev++
	return s
}

// =============================================================================
// SLICE HELPERS
// =============================================================================

func appendMessages(msgs []model.Message, more ...model.Message) []model.Message {
	out := make([]model.Message, 0, len(msgs)+len(more))
	out = append(out, msgs...)
	return append(out, more...)
}

func appendConversation(convs []model.Conversation, conv model.Conversation) []model.Conversation {
	out := make([]model.Conversation, 0, len(convs)+1)
	out = append(out, convs...)
	return append(out, conv)
}

func cloneConversations(convs []model.Conversation) []model.Conversation {
	out := make([]model.Conversation, len(convs))
	copy(out, convs)
	return out
}
