// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"time"

	"github.com/jeranaias/shopdesk-tui/internal/model"
)

// Command is a state transition understood by Reduce.
type Command interface {
	isCommand()
}

// =============================================================================
// PRIMITIVE COMMANDS
// =============================================================================

// SetMessages replaces the live thread.
type SetMessages struct {
	Messages []model.Message
}

// AddMessage appends to the live thread. There is no deduplication.
type AddMessage struct {
	Message model.Message
}

// SetLoading toggles the loading flag.
type SetLoading struct {
	Loading bool
}

// SetUserInput updates the pending input.
type SetUserInput struct {
	Text string
}

// SetConversations replaces the saved conversation list.
type SetConversations struct {
	Conversations []model.Conversation
}

// AddConversation appends one saved conversation.
type AddConversation struct {
	Conversation model.Conversation
}

// SetCurrentConversation records which saved conversation the live thread
// belongs to. An empty ID detaches the thread.
type SetCurrentConversation struct {
	ID string
}

// SetSelectedConversation records which conversation is highlighted in
// history. An empty ID clears the highlight.
type SetSelectedConversation struct {
	ID string
}

// LoadConversation shows a saved conversation. An unknown ID empties the
// live thread; both IDs are set to ID either way.
type LoadConversation struct {
	ID string
}

// ClearMessages empties the live thread.
type ClearMessages struct{}

// =============================================================================
// COMPOSITE COMMANDS
// =============================================================================

// StartNewConversation empties the live thread and clears both IDs.
type StartNewConversation struct{}

// DeleteConversation removes a saved conversation. Deleting the selected
// conversation also empties the live thread and clears both IDs. Unknown IDs
// are ignored.
type DeleteConversation struct {
	ID string
}

// RecordExchange saves the outcome of a successful exchange.
//
// The current conversation becomes ConversationID. When PriorID is empty the
// exchange opened a new conversation built from Thread; otherwise User and Bot
// are appended to the saved conversation PriorID, as found in the state the
// command is applied to.
type RecordExchange struct {
	PriorID        string
	ConversationID string
	Thread         []model.Message
	User           model.Message
	Bot            model.Message
	At             time.Time
}

func (SetMessages) isCommand()             {}
func (AddMessage) isCommand()              {}
func (SetLoading) isCommand()              {}
func (SetUserInput) isCommand()            {}
func (SetConversations) isCommand()        {}
func (AddConversation) isCommand()         {}
func (SetCurrentConversation) isCommand()  {}
func (SetSelectedConversation) isCommand() {}
func (LoadConversation) isCommand()        {}
func (ClearMessages) isCommand()           {}
func (StartNewConversation) isCommand()    {}
func (DeleteConversation) isCommand()      {}
func (RecordExchange) isCommand()          {}
