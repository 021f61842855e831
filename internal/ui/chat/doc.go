// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen support chat for shopdesk.
//
// # Architecture
//
// Model is a Bubble Tea model over a *session.Session. It never holds
// conversation state of its own: every change goes through the session's
// store, and the model re-reads the store snapshot when a store listener
// signals it.
//
//	store.Dispatch ──> listener ──> changes chan ──> waitForChange ──> StateChangedMsg
//
// Sends run as tea.Cmds on their own goroutine and report back with
// SendDoneMsg.
//
// # Layout
//
//	+-------------------------------------------------+
//	| Header: brand, current conversation             |
//	+------------+------------------------------------+
//	| History    | Messages (viewport)                |
//	| (list)     |                                    |
//	+------------+------------------------------------+
//	| Quick actions: F1..F4                           |
//	| Input (textinput)                               |
//	| Status / key help                               |
//	+-------------------------------------------------+
//
// The history sidebar is hidden on narrow terminals.
package chat
