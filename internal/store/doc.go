// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the conversation state of a shopdesk session.
//
// State changes are expressed as Commands and applied by Reduce, a pure
// function from (State, Command) to State that can be tested without any UI.
// Store wraps Reduce with a mutex, whole-state replacement and synchronous
// change listeners; it is the single source of truth that the terminal UI,
// the REPL and the persistence adapter read from.
//
// # Key Types
//
//   - State: live thread, loading flag, pending input, saved conversations
//     and the current/selected conversation IDs ("" means none)
//   - Command: tagged state transitions (SetMessages, AddMessage, ...)
//   - Store: mutex-guarded holder with Dispatch and Subscribe
//
// # Usage
//
//	s := store.New()
//	unsubscribe := s.Subscribe(func(prev, next store.State) {
//	    if next.ConversationsChanged(prev) {
//	        persist(next.Conversations)
//	    }
//	})
//	defer unsubscribe()
//
//	s.AddMessage(model.NewUserMessage("hi"))
//	s.LoadConversation("c1")
//
// Slices inside a State returned by Store.State are shared with the store and
// must be treated as read-only. Reduce never modifies a slice it was given.
package store
