// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen support chat for shopdesk.
//
// This file renders the saved conversation list with bubbles/list.
package chat

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/ui/styles"
	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// =============================================================================
// LIST ITEM
// =============================================================================

// conversationItem is one saved conversation in the sidebar.
type conversationItem struct {
	conv     model.Conversation
	selected bool
}

// FilterValue implements list.Item.
func (i conversationItem) FilterValue() string {
	return i.conv.DisplayTitle()
}

// conversationItems converts the saved list, marking the selected ID.
func conversationItems(convs []model.Conversation, selectedID string) []list.Item {
	items := make([]list.Item, len(convs))
	for i, c := range convs {
		items[i] = conversationItem{conv: c, selected: selectedID != "" && c.ID == selectedID}
	}
	return items
}

// =============================================================================
// DELEGATE
// =============================================================================

// conversationDelegate renders a conversation as three lines: title,
// preview, and age with message count.
type conversationDelegate struct {
	theme *styles.Theme
	now   func() time.Time
}

func newConversationDelegate(theme *styles.Theme) conversationDelegate {
	return conversationDelegate{theme: theme, now: time.Now}
}

// Height implements list.ItemDelegate.
func (d conversationDelegate) Height() int { return 3 }

// Spacing implements list.ItemDelegate.
func (d conversationDelegate) Spacing() int { return 1 }

// Update implements list.ItemDelegate.
func (d conversationDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

// Render implements list.ItemDelegate.
func (d conversationDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ci, ok := item.(conversationItem)
	if !ok {
		return
	}

	// Leave room for the style's left padding and the marker.
	width := m.Width() - 3
	if width < 8 {
		width = 8
	}

	marker := "  "
	if ci.selected {
		marker = d.theme.SidebarCurrentMarker.Render("*") + " "
	}

	title := util.TruncateWidth(util.SingleLine(ci.conv.DisplayTitle()), width)
	preview := util.TruncateWidth(util.SingleLine(ci.conv.Preview()), width)
	meta := fmt.Sprintf("%s - %d msgs",
		model.FormatRelative(ci.conv.Timestamp, d.now()), ci.conv.MessageCount())

	titleStyle := d.theme.SidebarItem
	if index == m.Index() {
		titleStyle = d.theme.SidebarItemSelected
	}

	fmt.Fprintf(w, "%s%s\n%s\n%s",
		marker,
		titleStyle.Render(util.PadRight(title, width)),
		d.theme.SidebarPreview.Render("  "+preview),
		d.theme.SidebarMeta.Render("  "+util.TruncateWidth(meta, width)),
	)
}

// =============================================================================
// LIST CONSTRUCTION
// =============================================================================

// newSidebar creates the conversation list widget.
func newSidebar(theme *styles.Theme, width, height int) list.Model {
	l := list.New(nil, newConversationDelegate(theme), width, height)
	l.Title = "History"
	l.Styles.Title = theme.SidebarTitle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("conversation", "conversations")
	l.DisableQuitKeybindings()
	return l
}

// selectedConversation returns the conversation under the list cursor.
func selectedConversation(l list.Model) (model.Conversation, bool) {
	ci, ok := l.SelectedItem().(conversationItem)
	if !ok {
		return model.Conversation{}, false
	}
	return ci.conv, true
}
