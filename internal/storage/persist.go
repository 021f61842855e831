// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the saved conversation list of shopdesk.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/store"
)

// CorruptSuffix is appended to the key under which an undecodable value is
// preserved before it is overwritten.
const CorruptSuffix = ".corrupt"

// =============================================================================
// ENCODING
// =============================================================================

// DecodeConversations parses a stored value. JSON null decodes to an empty
// list.
func DecodeConversations(raw string) ([]model.Conversation, error) {
	var convs []model.Conversation
	if err := json.Unmarshal([]byte(raw), &convs); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	if convs == nil {
		convs = []model.Conversation{}
	}
	for i := range convs {
		if convs[i].Messages == nil {
			convs[i].Messages = []model.Message{}
		}
	}
	return convs, nil
}

// EncodeConversations serializes the whole list. A nil list encodes as [].
func EncodeConversations(convs []model.Conversation) (string, error) {
	if convs == nil {
		convs = []model.Conversation{}
	}
	data, err := json.Marshal(convs)
	if err != nil {
		return "", fmt.Errorf("failed to encode conversations: %w", err)
	}
	return string(data), nil
}

// LoadConversations reads the list stored under key. A missing key yields an
// empty list.
func LoadConversations(kv KV, key string) ([]model.Conversation, error) {
	raw, err := kv.Get(key)
	if errors.Is(err, ErrNotFound) {
		return []model.Conversation{}, nil
	}
	if err != nil {
		return nil, err
	}
	return DecodeConversations(raw)
}

// =============================================================================
// BINDING
// =============================================================================

// Binding mirrors the saved conversation list of a store into a KV.
type Binding struct {
	kv          KV
	key         string
	unsubscribe func()

	mu      sync.Mutex
	writes  int
	lastErr error
	loadErr error
}

// Bind loads the list stored under key into s, then overwrites key with the
// whole list once and again after every change of the list.
//
// A value that cannot be decoded is logged, preserved under key+CorruptSuffix
// and treated as an empty list. Read failures are logged and kept in LoadErr.
// Write failures are logged and kept in Err until the next successful write.
func Bind(s *store.Store, kv KV, key string) *Binding {
	if key == "" {
		key = DefaultKey
	}
	b := &Binding{kv: kv, key: key}

	loaded := b.load()

	b.unsubscribe = s.Subscribe(func(prev, next store.State) {
		if next.ConversationsChanged(prev) {
			b.save(next.Conversations)
		}
	})
	s.SetConversations(loaded)

	return b
}

// Close stops mirroring. The stored value is left as last written.
func (b *Binding) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

// Key returns the storage key.
func (b *Binding) Key() string {
	return b.key
}

// Writes returns how many times the list has been written.
func (b *Binding) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

// Err returns the failure of the most recent write, if any.
func (b *Binding) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// LoadErr returns the failure that replaced the stored list with an empty
// one at bind time, if any.
func (b *Binding) LoadErr() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadErr
}

func (b *Binding) load() []model.Conversation {
	raw, err := b.kv.Get(b.key)
	if errors.Is(err, ErrNotFound) {
		return []model.Conversation{}
	}
	if err != nil {
		log.Printf("storage: failed to read %s: %v", b.key, err)
		b.setLoadErr(err)
		return []model.Conversation{}
	}

	convs, err := DecodeConversations(raw)
	if err != nil {
		log.Printf("storage: %s is corrupt, starting with an empty history: %v", b.key, err)
		b.setLoadErr(err)
		if serr := b.kv.Set(b.key+CorruptSuffix, raw); serr != nil {
			log.Printf("storage: failed to preserve corrupt value: %v", serr)
		}
		return []model.Conversation{}
	}
	return convs
}

func (b *Binding) save(convs []model.Conversation) {
	value, err := EncodeConversations(convs)
	if err == nil {
		err = b.kv.Set(b.key, value)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		log.Printf("storage: failed to save %s: %v", b.key, err)
		b.lastErr = err
		return
	}
	b.lastErr = nil
	b.writes++
}

func (b *Binding) setLoadErr(err error) {
	b.mu.Lock()
	b.loadErr = err
	b.mu.Unlock()
}
