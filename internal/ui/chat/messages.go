// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen support chat for shopdesk.
//
// This file defines the Bubble Tea message types used by the chat model.
package chat

import (
	"github.com/jeranaias/shopdesk-tui/internal/exchange"
)

// =============================================================================
// STORE MESSAGES
// =============================================================================

// StateChangedMsg signals that the store state changed since the model last
// read it.
type StateChangedMsg struct{}

// =============================================================================
// EXCHANGE MESSAGES
// =============================================================================

// SendDoneMsg is delivered when a send finishes.
type SendDoneMsg struct {
	Text    string
	Outcome exchange.Outcome
}

// =============================================================================
// STATUS MESSAGES
// =============================================================================

// CopyDoneMsg reports the result of copying a reply to the clipboard.
type CopyDoneMsg struct {
	Size int
	Err  error
}

// StatusClearMsg clears the status line if it still shows status ID.
type StatusClearMsg struct {
	ID int
}
