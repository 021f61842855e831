// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"sync"
	"time"

	"github.com/jeranaias/shopdesk-tui/internal/model"
)

// Listener is notified after every dispatched command with the state before
// and after it. Listeners run synchronously, in subscription order, while the
// store is locked: they must not call back into the Store.
type Listener func(prev, next State)

type subscription struct {
	id int
	fn Listener
}

// Store holds the current State and serializes all changes to it.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []subscription
	nextID    int
}

// New creates a store holding the initial state of a fresh session.
func New() *Store {
	return &Store{state: Initial()}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies each command in order and returns the final state.
// Listeners are notified once per command.
func (s *Store) Dispatch(cmds ...Command) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cmd := range cmds {
		prev := s.state
		s.state = Reduce(prev, cmd)
		for _, sub := range s.listeners {
			sub.fn(prev, s.state)
		}
	}
	return s.state
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// =============================================================================
// ACTIONS
// =============================================================================

// SetMessages replaces the live thread.
func (s *Store) SetMessages(msgs []model.Message) { s.Dispatch(SetMessages{Messages: msgs}) }

// AddMessage appends msg to the live thread.
func (s *Store) AddMessage(msg model.Message) { s.Dispatch(AddMessage{Message: msg}) }

// SetLoading toggles the loading flag.
func (s *Store) SetLoading(loading bool) { s.Dispatch(SetLoading{Loading: loading}) }

// SetUserInput updates the pending input.
func (s *Store) SetUserInput(text string) { s.Dispatch(SetUserInput{Text: text}) }

// SetConversations replaces the saved conversation list.
func (s *Store) SetConversations(convs []model.Conversation) {
	s.Dispatch(SetConversations{Conversations: convs})
}

// AddConversation appends one saved conversation.
func (s *Store) AddConversation(conv model.Conversation) {
	s.Dispatch(AddConversation{Conversation: conv})
}

// SetCurrentConversation attaches the live thread to a saved conversation.
func (s *Store) SetCurrentConversation(id string) { s.Dispatch(SetCurrentConversation{ID: id}) }

// SetSelectedConversation highlights a conversation in history.
func (s *Store) SetSelectedConversation(id string) { s.Dispatch(SetSelectedConversation{ID: id}) }

// LoadConversation shows a saved conversation as the live thread.
func (s *Store) LoadConversation(id string) { s.Dispatch(LoadConversation{ID: id}) }

// ClearMessages empties the live thread.
func (s *Store) ClearMessages() { s.Dispatch(ClearMessages{}) }

// StartNewConversation empties the live thread and detaches it from history.
func (s *Store) StartNewConversation() { s.Dispatch(StartNewConversation{}) }

// DeleteConversation removes a saved conversation.
func (s *Store) DeleteConversation(id string) { s.Dispatch(DeleteConversation{ID: id}) }

// RecordExchange saves the outcome of a successful exchange.
func (s *Store) RecordExchange(priorID, conversationID string, thread []model.Message, user, bot model.Message, at time.Time) {
	s.Dispatch(RecordExchange{
		PriorID:        priorID,
		ConversationID: conversationID,
		Thread:         thread,
		User:           user,
		Bot:            bot,
		At:             at,
	})
}
