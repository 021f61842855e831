// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen support chat for shopdesk.
//
// This file defines keyboard bindings for the chat interface. KeyMap
// implements help.KeyMap so the status bar can render it.
package chat

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	// Global
	Submit     key.Binding
	Quit       key.Binding
	FocusNext  key.Binding
	Copy       key.Binding
	NewChat    key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Help       key.Binding
	CloseHelp  key.Binding
	QuickSlots []key.Binding

	// History sidebar
	Open   key.Binding
	Delete key.Binding
	New    key.Binding
	Up     key.Binding
	Down   key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	km := KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "history/input"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy reply"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "scroll down"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help (history)"),
		),
		CloseHelp: key.NewBinding(
			key.WithKeys("esc", "?"),
			key.WithHelp("Esc", "close help"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "open"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next"),
		),
	}

	for i, qa := range QuickActions {
		km.QuickSlots = append(km.QuickSlots, key.NewBinding(
			key.WithKeys(fmt.Sprintf("f%d", i+1), fmt.Sprintf("alt+%d", i+1)),
			key.WithHelp(fmt.Sprintf("F%d", i+1), qa.Label),
		))
	}
	return km
}

// =============================================================================
// HELP
// =============================================================================

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.FocusNext, k.Copy, k.NewChat, k.Quit}
}

// FullHelp returns the bindings shown in the help overlay, grouped by column.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Copy, k.NewChat, k.PageUp, k.PageDown},
		{k.FocusNext, k.Up, k.Down, k.Open, k.Delete, k.New},
		k.QuickSlots,
		{k.CloseHelp, k.Quit},
	}
}

// QuickSlot returns the quick action index bound to keyStr, or -1.
func (k KeyMap) QuickSlot(keyStr string) int {
	for i, b := range k.QuickSlots {
		for _, bk := range b.Keys() {
			if bk == keyStr {
				return i
			}
		}
	}
	return -1
}
