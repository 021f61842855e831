// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session wires one shopdesk application session together.
package session

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/shopdesk-tui/internal/api"
	"github.com/jeranaias/shopdesk-tui/internal/config"
	"github.com/jeranaias/shopdesk-tui/internal/exchange"
	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/storage"
	"github.com/jeranaias/shopdesk-tui/internal/store"
)

// =============================================================================
// SESSION
// =============================================================================

// Session is one running instance of shopdesk.
type Session struct {
	// Store is the single source of truth for conversation state.
	Store *store.Store

	// Exchange sends messages and records replies.
	Exchange *exchange.Exchange

	// Client is the chat API client. Nil when the session was built with
	// a custom ChatClient.
	Client *api.Client

	cfg       *config.Config
	kv        storage.KV
	binding   *storage.Binding
	sessionID string
	startTime time.Time
	closeOnce sync.Once
	closeErr  error
}

// Open builds a session from cfg: the storage backend, the store with its
// saved history, the chat API client and the exchange.
func Open(cfg *config.Config) (*Session, error) {
	kv, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	client := NewClient(cfg.API)
	s := New(cfg, kv, client)
	s.Client = client
	return s, nil
}

// NewClient builds a chat API client from configuration.
func NewClient(cfg config.APIConfig) *api.Client {
	return api.NewClient(cfg.BaseURL).
		WithChatPath(cfg.ChatPath).
		WithTimeout(time.Duration(cfg.TimeoutSecs) * time.Second).
		WithUserAgent(cfg.UserAgent)
}

// New builds a session over an already opened backend and chat client.
// The session takes ownership of kv.
func New(cfg *config.Config, kv storage.KV, client exchange.ChatClient) *Session {
	st := store.New()
	binding := storage.Bind(st, kv, cfg.Storage.Key)

	s := &Session{
		Store:     st,
		Exchange:  exchange.New(st, client),
		cfg:       cfg,
		kv:        kv,
		binding:   binding,
		sessionID: generateSessionID(),
		startTime: time.Now(),
	}
	log.Printf("session %s started: %d saved conversations, %s storage", s.sessionID,
		len(st.State().Conversations), cfg.Storage.Backend)
	return s
}

// Close stops persistence and releases the storage backend.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.binding.Close()
		s.closeErr = s.kv.Close()
		log.Printf("session %s closed after %v", s.sessionID, s.Duration().Round(time.Second))
	})
	return s.closeErr
}

// =============================================================================
// SESSION STATE
// =============================================================================

// ID returns the session ID.
func (s *Session) ID() string {
	return s.sessionID
}

// StartTime returns when the session started.
func (s *Session) StartTime() time.Time {
	return s.startTime
}

// Duration returns how long the session has been active.
func (s *Session) Duration() time.Duration {
	return time.Since(s.startTime)
}

// Config returns the configuration the session was built from.
func (s *Session) Config() *config.Config {
	return s.cfg
}

// StorageErr returns the most recent persistence failure, if any.
func (s *Session) StorageErr() error {
	return s.binding.Err()
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Send runs one exchange.
func (s *Session) Send(ctx context.Context, text string) exchange.Outcome {
	return s.Exchange.Send(ctx, text)
}

// Conversations returns the saved conversation list.
func (s *Session) Conversations() []model.Conversation {
	return s.Store.State().Conversations
}

// Resolve finds a saved conversation by ID or by its 1-based position in the
// list.
func (s *Session) Resolve(ref string) (model.Conversation, bool) {
	ref = strings.TrimSpace(ref)
	state := s.Store.State()
	if conv, ok := state.Conversation(ref); ok {
		return conv, true
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(state.Conversations) {
		return state.Conversations[n-1], true
	}
	return model.Conversation{}, false
}

// Open shows a saved conversation in the live thread.
func (s *Session) Open(ref string) (model.Conversation, bool) {
	conv, ok := s.Resolve(ref)
	if ok {
		s.Store.LoadConversation(conv.ID)
	}
	return conv, ok
}

// Delete removes a saved conversation.
func (s *Session) Delete(ref string) (model.Conversation, bool) {
	conv, ok := s.Resolve(ref)
	if ok {
		s.Store.DeleteConversation(conv.ID)
	}
	return conv, ok
}

// NewConversation detaches the live thread from history.
func (s *Session) NewConversation() {
	s.Store.StartNewConversation()
}

// ClearHistory removes every saved conversation and empties the live thread.
func (s *Session) ClearHistory() {
	s.Store.Dispatch(store.SetConversations{Conversations: nil}, store.StartNewConversation{})
}

// generateSessionID creates a unique session ID.
func generateSessionID() string {
	return "sess_" + uuid.NewString()
}
