// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen support chat for shopdesk.
//
// This file renders the chat layout.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// maxWelcomeWidth caps the welcome box on wide terminals.
const maxWelcomeWidth = 70

func (m Model) render() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	bodyHeight := m.bodyHeight()

	var body string
	if m.showHelp {
		body = m.renderHelpOverlay(bodyHeight)
	} else {
		chat := m.theme.Pane.Render(m.viewport.View())
		if m.sidebarVisible() {
			sw := m.sidebarPaneWidth()
			pane := m.theme.Pane
			if m.focus == FocusSidebar {
				pane = m.theme.PaneFocused
			}
			side := pane.Render(lipgloss.NewStyle().
				Width(sw - 2).
				Height(bodyHeight - 2).
				MaxHeight(bodyHeight - 2).
				Render(m.sidebar.View()))
			body = lipgloss.JoinHorizontal(lipgloss.Top, side, chat)
		} else {
			body = chat
		}
	}

	rows := []string{m.renderHeader(), body}
	if m.showQuick {
		rows = append(rows, m.renderQuickActions())
	}
	rows = append(rows, m.renderInput(), m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("ShopDesk Support")

	var meta string
	if conv, ok := m.state.SelectedConversation(); ok {
		meta = conv.DisplayTitle()
	} else if m.state.HasCurrentConversation() {
		meta = "Conversation " + m.state.CurrentConversationID
	} else {
		meta = "New conversation"
	}
	meta = fmt.Sprintf("%s | %d saved", util.SingleLine(meta), len(m.state.Conversations))

	avail := m.width - lipgloss.Width(title) - 4
	return m.theme.Header.
		Width(m.width).
		MaxHeight(headerHeight).
		Render(title + "  " + m.theme.HeaderMeta.Render(util.TruncateWidth(meta, avail)))
}

// =============================================================================
// MESSAGES
// =============================================================================

// updateViewport re-renders the thread into the viewport. When toBottom is
// set, or the view was already at the bottom, it scrolls to the end.
func (m *Model) updateViewport(toBottom bool) {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if toBottom || atBottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) renderMessages() string {
	width := m.viewport.Width
	msgs := m.state.Messages

	if len(msgs) == 0 && m.state.SelectedConversationID == "" && !m.state.IsLoading {
		return m.renderWelcome(width)
	}

	parts := make([]string, 0, len(msgs)+1)
	for _, msg := range msgs {
		parts = append(parts, m.renderMessage(msg, width))
	}
	if m.state.IsLoading {
		parts = append(parts, m.spinner.View()+" "+m.theme.Thinking.Render("Assistant is typing"))
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderWelcome(width int) string {
	w := min(width-2, maxWelcomeWidth)
	if w < 20 {
		return WelcomeText
	}
	return m.theme.Welcome.Width(w).Render(WelcomeText)
}

func (m Model) renderMessage(msg model.Message, width int) string {
	bubbleWidth := min(max(width*4/5, 20), max(width-2, 1))

	if msg.IsUser() {
		label := m.theme.UserLabel.Render("You") + " " + m.theme.MessageTime.Render(msg.Clock())
		bubble := m.theme.UserBubble.Width(bubbleWidth).Render(msg.Content)
		block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}

	label := m.theme.BotLabel.Render("Assistant") + " " + m.theme.MessageTime.Render(msg.Clock())
	var bubble string
	if m.markdown {
		// Border and padding take four columns.
		bubble = m.theme.BotBubble.Render(m.md.render(msg.Content, bubbleWidth-4))
	} else {
		bubble = m.theme.BotBubble.Width(bubbleWidth).Render(msg.Content)
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
}

// =============================================================================
// INPUT, QUICK ACTIONS, STATUS
// =============================================================================

func (m Model) renderQuickActions() string {
	items := make([]string, len(QuickActions))
	for i, qa := range QuickActions {
		items[i] = m.theme.QuickKey.Render(fmt.Sprintf("F%d", i+1)) + " " + m.theme.QuickLabel.Render(qa.Label)
	}
	return lipgloss.NewStyle().
		PaddingLeft(1).
		MaxWidth(m.width).
		MaxHeight(quickHeight).
		Render(strings.Join(items, "   "))
}

func (m Model) renderInput() string {
	pane := m.theme.Pane
	if m.focus == FocusInput {
		pane = m.theme.PaneFocused
	}
	return pane.Width(max(m.width-2, 1)).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	style := m.theme.StatusBar.Width(m.width).MaxHeight(statusHeight)

	if m.status != "" {
		text := m.theme.Notice.Render(m.status)
		if m.statusIsErr {
			text = m.theme.ErrorText.Render(m.status)
		}
		return style.Render(text)
	}
	if err := m.sess.StorageErr(); err != nil {
		return style.Render(m.theme.ErrorText.Render("History not saved: " + err.Error()))
	}

	bindings := m.keys.ShortHelp()
	if m.focus == FocusSidebar {
		bindings = []key.Binding{m.keys.Open, m.keys.Delete, m.keys.New, m.keys.FocusNext, m.keys.Help}
	}
	return style.Render(m.help.ShortHelpView(bindings))
}

func (m Model) renderHelpOverlay(height int) string {
	box := m.theme.Welcome.Render(
		m.theme.SidebarTitle.Render("Keyboard shortcuts") + "\n\n" +
			m.help.FullHelpView(m.keys.FullHelp()))
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, box)
}
