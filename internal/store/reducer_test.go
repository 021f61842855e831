// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shopdesk-tui/internal/model"
)

var testTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func msgAt(t model.MessageType, content string, offset time.Duration) model.Message {
	return model.NewMessageAt(t, content, testTime.Add(offset))
}

func sampleConversations() []model.Conversation {
	return []model.Conversation{
		{
			ID:    "c1",
			Title: "Where is my order?",
			Messages: []model.Message{
				msgAt(model.TypeUser, "Where is my order?", 0),
				msgAt(model.TypeBot, "It ships tomorrow.", time.Second),
			},
			Timestamp: testTime,
		},
		{
			ID:        "c2",
			Title:     "Returns",
			Messages:  []model.Message{msgAt(model.TypeUser, "How do returns work?", time.Minute)},
			Timestamp: testTime.Add(time.Minute),
		},
	}
}

// =============================================================================
// PRIMITIVE COMMANDS
// =============================================================================

func TestReduce_InitialState(t *testing.T) {
	s := Initial()
	assert.Empty(t, s.Messages)
	assert.NotNil(t, s.Messages)
	assert.Empty(t, s.Conversations)
	assert.False(t, s.IsLoading)
	assert.Equal(t, "", s.UserInput)
	assert.False(t, s.HasCurrentConversation())
	assert.Equal(t, "", s.SelectedConversationID)
}

func TestReduce_AddMessage(t *testing.T) {
	m1 := msgAt(model.TypeUser, "hi", 0)
	m2 := msgAt(model.TypeBot, "hello", time.Second)

	s := Reduce(Initial(), AddMessage{Message: m1})
	s = Reduce(s, AddMessage{Message: m2})

	require.Len(t, s.Messages, 2)
	assert.Equal(t, m1, s.Messages[0])
	assert.Equal(t, m2, s.Messages[1])
}

func TestReduce_AddMessage_NoDeduplication(t *testing.T) {
	m := msgAt(model.TypeUser, "hi", 0)
	s := Reduce(Initial(), AddMessage{Message: m})
	s = Reduce(s, AddMessage{Message: m})
	assert.Len(t, s.Messages, 2)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	base := Reduce(Initial(), SetMessages{Messages: make([]model.Message, 0, 8)})
	a := Reduce(base, AddMessage{Message: msgAt(model.TypeUser, "a", 0)})
	b := Reduce(base, AddMessage{Message: msgAt(model.TypeUser, "b", 0)})

	assert.Empty(t, base.Messages)
	require.Len(t, a.Messages, 1)
	require.Len(t, b.Messages, 1)
	assert.Equal(t, "a", a.Messages[0].Content)
	assert.Equal(t, "b", b.Messages[0].Content)
}

func TestReduce_SetMessagesCopies(t *testing.T) {
	msgs := []model.Message{msgAt(model.TypeUser, "hi", 0)}
	s := Reduce(Initial(), SetMessages{Messages: msgs})
	msgs[0].Content = "changed"
	assert.Equal(t, "hi", s.Messages[0].Content)
}

func TestReduce_SetLoadingAndInput(t *testing.T) {
	s := Reduce(Initial(), SetLoading{Loading: true})
	assert.True(t, s.IsLoading)
	s = Reduce(s, SetUserInput{Text: "draft"})
	assert.Equal(t, "draft", s.UserInput)
	s = Reduce(s, SetLoading{Loading: false})
	assert.False(t, s.IsLoading)
	assert.Equal(t, "draft", s.UserInput)
}

func TestReduce_SetAndAddConversations(t *testing.T) {
	s0 := Initial()
	s1 := Reduce(s0, SetConversations{Conversations: sampleConversations()})
	require.Len(t, s1.Conversations, 2)
	assert.True(t, s1.ConversationsChanged(s0))

	extra := model.Conversation{ID: "c3", Title: "Sizes", Messages: []model.Message{}, Timestamp: testTime}
	s2 := Reduce(s1, AddConversation{Conversation: extra})
	require.Len(t, s2.Conversations, 3)
	assert.Equal(t, "c3", s2.Conversations[2].ID)
	assert.Len(t, s1.Conversations, 2)
	assert.True(t, s2.ConversationsChanged(s1))
}

func TestReduce_ConversationsChangedOnlyForListChanges(t *testing.T) {
	s0 := Reduce(Initial(), SetConversations{Conversations: sampleConversations()})
	cmds := []Command{
		AddMessage{Message: msgAt(model.TypeUser, "x", 0)},
		SetLoading{Loading: true},
		SetUserInput{Text: "x"},
		SetCurrentConversation{ID: "c1"},
		SetSelectedConversation{ID: "c1"},
		LoadConversation{ID: "c2"},
		ClearMessages{},
		StartNewConversation{},
		DeleteConversation{ID: "missing"},
	}
	for _, cmd := range cmds {
		s1 := Reduce(s0, cmd)
		assert.False(t, s1.ConversationsChanged(s0), "%T", cmd)
	}
}

func TestReduce_SetCurrentAndSelectedAreIndependent(t *testing.T) {
	s := Reduce(Initial(), SetCurrentConversation{ID: "c1"})
	assert.Equal(t, "c1", s.CurrentConversationID)
	assert.Equal(t, "", s.SelectedConversationID)

	s = Reduce(s, SetSelectedConversation{ID: "c2"})
	assert.Equal(t, "c1", s.CurrentConversationID)
	assert.Equal(t, "c2", s.SelectedConversationID)
}

func TestReduce_LoadConversation(t *testing.T) {
	s := Reduce(Initial(), SetConversations{Conversations: sampleConversations()})
	s = Reduce(s, AddMessage{Message: msgAt(model.TypeUser, "unsaved", 0)})

	s = Reduce(s, LoadConversation{ID: "c1"})
	require.Len(t, s.Messages, 2)
	assert.Equal(t, "Where is my order?", s.Messages[0].Content)
	assert.Equal(t, "c1", s.CurrentConversationID)
	assert.Equal(t, "c1", s.SelectedConversationID)

	// Mutating the live thread must not touch the saved record.
	s.Messages[0].Content = "edited"
	conv, ok := s.Conversation("c1")
	require.True(t, ok)
	assert.Equal(t, "Where is my order?", conv.Messages[0].Content)
}

func TestReduce_LoadConversation_UnknownID(t *testing.T) {
	s := Reduce(Initial(), SetConversations{Conversations: sampleConversations()})
	s = Reduce(s, AddMessage{Message: msgAt(model.TypeUser, "unsaved", 0)})

	s = Reduce(s, LoadConversation{ID: "nope"})
	assert.Empty(t, s.Messages)
	assert.NotNil(t, s.Messages)
	assert.Equal(t, "nope", s.CurrentConversationID)
	assert.Equal(t, "nope", s.SelectedConversationID)
}

func TestReduce_ClearMessagesKeepsIDs(t *testing.T) {
	s := Reduce(Initial(), SetConversations{Conversations: sampleConversations()})
	s = Reduce(s, LoadConversation{ID: "c1"})
	s = Reduce(s, ClearMessages{})
	assert.Empty(t, s.Messages)
	assert.Equal(t, "c1", s.CurrentConversationID)
	assert.Equal(t, "c1", s.SelectedConversationID)
	assert.Len(t, s.Conversations, 2)
}

func TestReduce_UnknownCommand(t *testing.T) {
	s := Reduce(Initial(), AddMessage{Message: msgAt(model.TypeUser, "x", 0)})
	assert.Equal(t, s, Reduce(s, nil))
}

// =============================================================================
// COMPOSITE COMMANDS
// =============================================================================

func TestReduce_StartNewConversation(t *testing.T) {
	s := Reduce(Initial(), SetConversations{Conversations: sampleConversations()})
	s = Reduce(s, LoadConversation{ID: "c2"})
	s = Reduce(s, StartNewConversation{})

	assert.Empty(t, s.Messages)
	assert.Equal(t, "", s.CurrentConversationID)
	assert.Equal(t, "", s.SelectedConversationID)
	assert.Len(t, s.Conversations, 2)
}

func TestReduce_DeleteConversation_Selected(t *testing.T) {
	s := Reduce(Initial(), SetConversations{Conversations: sampleConversations()})
	s = Reduce(s, LoadConversation{ID: "c1"})
	prev := s
	s = Reduce(s, DeleteConversation{ID: "c1"})

	require.Len(t, s.Conversations, 1)
	assert.Equal(t, "c2", s.Conversations[0].ID)
	assert.Empty(t, s.Messages)
	assert.Equal(t, "", s.CurrentConversationID)
	assert.Equal(t, "", s.SelectedConversationID)
	assert.True(t, s.ConversationsChanged(prev))
	assert.Len(t, prev.Conversations, 2)
}

func TestReduce_DeleteConversation_NotSelected(t *testing.T) {
	s := Reduce(Initial(), SetConversations{Conversations: sampleConversations()})
	s = Reduce(s, LoadConversation{ID: "c1"})
	s = Reduce(s, DeleteConversation{ID: "c2"})

	require.Len(t, s.Conversations, 1)
	assert.Len(t, s.Messages, 2)
	assert.Equal(t, "c1", s.CurrentConversationID)
	assert.Equal(t, "c1", s.SelectedConversationID)
}

func TestReduce_RecordExchange_NewConversation(t *testing.T) {
	user := msgAt(model.TypeUser, "Do you ship internationally to Canada and Mexico?", 0)
	bot := msgAt(model.TypeBot, "Yes, we do.", time.Second)

	s := Reduce(Initial(), AddMessage{Message: user})
	s = Reduce(s, AddMessage{Message: bot})
	s = Reduce(s, RecordExchange{
		ConversationID: "abc",
		Thread:         []model.Message{user, bot},
		User:           user,
		Bot:            bot,
		At:             testTime,
	})

	assert.Equal(t, "abc", s.CurrentConversationID)
	require.Len(t, s.Conversations, 1)
	conv := s.Conversations[0]
	assert.Equal(t, "abc", conv.ID)
	assert.Equal(t, "Do you ship internationally to...", conv.Title)
	assert.Equal(t, []model.Message{user, bot}, conv.Messages)
	assert.Equal(t, testTime, conv.Timestamp)
}

func TestReduce_RecordExchange_Continue(t *testing.T) {
	s := Reduce(Initial(), SetConversations{Conversations: sampleConversations()})
	s = Reduce(s, LoadConversation{ID: "c1"})

	user := msgAt(model.TypeUser, "Thanks", time.Hour)
	bot := msgAt(model.TypeBot, "You're welcome", time.Hour+time.Second)
	s = Reduce(s, RecordExchange{PriorID: "c1", ConversationID: "c1", User: user, Bot: bot, At: testTime})

	require.Len(t, s.Conversations, 2)
	conv, _ := s.Conversation("c1")
	require.Len(t, conv.Messages, 4)
	assert.Equal(t, "Thanks", conv.Messages[2].Content)
	assert.Equal(t, "You're welcome", conv.Messages[3].Content)
	assert.Equal(t, "Where is my order?", conv.Title)
	other, _ := s.Conversation("c2")
	assert.Len(t, other.Messages, 1)
}

func TestReduce_RecordExchange_UsesCurrentList(t *testing.T) {
	// The list changed after the exchange started; the append must be made
	// against the list as it is when the command is applied.
	s := Reduce(Initial(), SetConversations{Conversations: sampleConversations()})
	s = Reduce(s, AddConversation{Conversation: model.Conversation{ID: "c3", Messages: []model.Message{}}})

	user := msgAt(model.TypeUser, "more", 0)
	bot := msgAt(model.TypeBot, "sure", time.Second)
	s = Reduce(s, RecordExchange{PriorID: "c1", ConversationID: "c1", User: user, Bot: bot, At: testTime})

	require.Len(t, s.Conversations, 3)
	assert.Equal(t, "c3", s.Conversations[2].ID)
	conv, _ := s.Conversation("c1")
	assert.Len(t, conv.Messages, 4)
}

func TestReduce_RecordExchange_PriorDeleted(t *testing.T) {
	s := Reduce(Initial(), SetConversations{Conversations: sampleConversations()})
	s = Reduce(s, DeleteConversation{ID: "c1"})
	prev := s

	user := msgAt(model.TypeUser, "hello?", 0)
	bot := msgAt(model.TypeBot, "hi", time.Second)
	s = Reduce(s, RecordExchange{PriorID: "c1", ConversationID: "c1", User: user, Bot: bot, At: testTime})

	assert.Len(t, s.Conversations, 1)
	assert.False(t, s.ConversationsChanged(prev))
	assert.Equal(t, "c1", s.CurrentConversationID)
}

func TestReduce_RecordExchange_ExistingIDStaysUnique(t *testing.T) {
	s := Reduce(Initial(), SetConversations{Conversations: sampleConversations()})

	user := msgAt(model.TypeUser, "again", 0)
	bot := msgAt(model.TypeBot, "ok", time.Second)
	s = Reduce(s, RecordExchange{
		ConversationID: "c2",
		Thread:         []model.Message{user, bot},
		User:           user,
		Bot:            bot,
		At:             testTime,
	})

	require.Len(t, s.Conversations, 2)
	conv, _ := s.Conversation("c2")
	assert.Len(t, conv.Messages, 3)
}

func TestState_SelectedConversation(t *testing.T) {
	s := Reduce(Initial(), SetConversations{Conversations: sampleConversations()})
	_, ok := s.SelectedConversation()
	assert.False(t, ok)

	s = Reduce(s, SetSelectedConversation{ID: "c2"})
	conv, ok := s.SelectedConversation()
	require.True(t, ok)
	assert.Equal(t, "Returns", conv.Title)
}

func TestReduce_LoadConversationIdempotent(t *testing.T) {
	s := Reduce(Initial(), SetConversations{Conversations: sampleConversations()})
	once := Reduce(s, LoadConversation{ID: "c1"})
	twice := Reduce(once, LoadConversation{ID: "c1"})
	assert.Equal(t, once, twice)
}
