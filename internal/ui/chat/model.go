// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen support chat for shopdesk.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/session"
	"github.com/jeranaias/shopdesk-tui/internal/store"
	"github.com/jeranaias/shopdesk-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus identifies which pane receives key input.
type Focus int

const (
	FocusInput   Focus = iota // Typing a message
	FocusSidebar              // Browsing saved conversations
)

// Fixed row heights of the layout, borders included.
const (
	headerHeight = 1
	inputHeight  = 3
	quickHeight  = 1
	statusHeight = 1
)

// statusTimeout is how long a status message stays on screen.
const statusTimeout = 3 * time.Second

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the support chat.
type Model struct {
	sess  *session.Session
	theme *styles.Theme
	keys  KeyMap
	ctx   context.Context

	// Dimensions
	width  int
	height int

	// Widgets
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	sidebar  list.Model
	help     help.Model
	md       *markdownRenderer

	// state is the last store snapshot the model rendered.
	state       store.State
	changes     chan struct{}
	unsubscribe func()
	closeOnce   *sync.Once

	// UI state
	focus        Focus
	showHelp     bool
	showQuick    bool
	markdown     bool
	sidebarWidth int
	sending      bool

	// Status line
	status      string
	statusIsErr bool
	statusID    int
}

// New creates a chat model over sess. Call Close when the program exits.
func New(sess *session.Session, theme *styles.Theme) Model {
	ui := sess.Config().UI

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type your message here..."
	ti.CharLimit = 4096
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = styles.DotsSpinner.Bubbles()
	sp.Style = theme.Spinner

	// The listener only signals; the model reads the store itself. A full
	// buffer means a signal is already pending.
	changes := make(chan struct{}, 1)
	unsubscribe := sess.Store.Subscribe(func(prev, next store.State) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	m := Model{
		sess:         sess,
		theme:        theme,
		keys:         DefaultKeyMap(),
		ctx:          context.Background(),
		viewport:     viewport.New(80, 20),
		input:        ti,
		spinner:      sp,
		sidebar:      newSidebar(theme, ui.SidebarWidth, 20),
		help:         help.New(),
		md:           newMarkdownRenderer(theme.GlamourStyle()),
		changes:      changes,
		unsubscribe:  unsubscribe,
		closeOnce:    &sync.Once{},
		focus:        FocusInput,
		showQuick:    ui.ShowQuickActions,
		markdown:     ui.Markdown,
		sidebarWidth: ui.SidebarWidth,
	}
	m.sync()
	return m
}

// WithContext sets the context sends run under.
func (m Model) WithContext(ctx context.Context) Model {
	m.ctx = ctx
	return m
}

// Close stops listening to the store.
func (m Model) Close() {
	m.closeOnce.Do(func() {
		m.unsubscribe()
		close(m.changes)
	})
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, waitForChange(m.changes)}
	if m.state.IsLoading {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.layout()
		m.updateViewport(true)
		return m, nil

	case StateChangedMsg:
		cmd := m.sync()
		return m, tea.Batch(waitForChange(m.changes), cmd)

	case SendDoneMsg:
		return m.handleSendDone(msg)

	case CopyDoneMsg:
		if msg.Err != nil {
			return m, m.setStatus("Failed to copy: "+msg.Err.Error(), true)
		}
		return m, m.setStatus(fmt.Sprintf("Copied reply to clipboard (%d chars)", msg.Size), false)

	case StatusClearMsg:
		if msg.ID == m.statusID {
			m.status = ""
			m.statusIsErr = false
		}
		return m, nil

	case spinner.TickMsg:
		if !m.state.IsLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.updateViewport(false)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and other widget messages
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the model.
func (m Model) View() string {
	return m.render()
}

// waitForChange blocks until the store signals a change. It returns nil once
// the model is closed.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return StateChangedMsg{}
	}
}

// sync reads the current store state and updates every widget that mirrors
// it. It returns a command that starts the spinner when loading begins.
func (m *Model) sync() tea.Cmd {
	prev := m.state
	m.state = m.sess.Store.State()

	if m.state.ConversationsChanged(prev) ||
		m.state.SelectedConversationID != prev.SelectedConversationID ||
		len(m.sidebar.Items()) != len(m.state.Conversations) {
		m.refreshSidebar()
	}

	if m.input.Value() != m.state.UserInput {
		m.input.SetValue(m.state.UserInput)
		m.input.CursorEnd()
	}

	grew := len(m.state.Messages) != len(prev.Messages) || m.state.IsLoading != prev.IsLoading
	m.updateViewport(grew)

	if m.state.IsLoading && !prev.IsLoading {
		return m.spinner.Tick
	}
	return nil
}

// refreshSidebar rebuilds the list items from the saved conversations.
func (m *Model) refreshSidebar() {
	idx := m.sidebar.Index()
	m.sidebar.SetItems(conversationItems(m.state.Conversations, m.state.SelectedConversationID))
	if n := len(m.state.Conversations); idx >= n && n > 0 {
		m.sidebar.Select(n - 1)
	}
}

// layout sizes the widgets for the current terminal size.
func (m *Model) layout() {
	bodyHeight := m.bodyHeight()

	chatWidth := m.width
	if m.sidebarVisible() {
		sw := m.sidebarPaneWidth()
		chatWidth -= sw
		m.sidebar.SetSize(sw-2, bodyHeight-2)
	}

	m.viewport.Width = max(chatWidth-2, 1)
	m.viewport.Height = max(bodyHeight-2, 1)

	// Border, padding and the "> " prompt
	m.input.Width = max(m.width-6, 10)
	m.help.Width = m.width
}

func (m Model) bodyHeight() int {
	h := m.height - headerHeight - inputHeight - statusHeight
	if m.showQuick {
		h -= quickHeight
	}
	return max(h, 3)
}

func (m Model) sidebarVisible() bool {
	return m.theme.GetLayoutMode().ShowSidebar()
}

func (m Model) sidebarPaneWidth() int {
	return min(m.sidebarWidth, m.width/2)
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.CloseHelp) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyLastReply()

	case key.Matches(msg, m.keys.NewChat):
		m.sess.NewConversation()
		m.setFocus(FocusInput)
		cmd := m.sync()
		return m, tea.Batch(cmd, m.setStatus("Started a new conversation", false))

	case key.Matches(msg, m.keys.FocusNext):
		if m.focus == FocusInput && m.sidebarVisible() {
			m.setFocus(FocusSidebar)
		} else {
			m.setFocus(FocusInput)
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	if slot := m.keys.QuickSlot(msg.String()); slot >= 0 && slot < len(QuickActions) {
		return m.sendText(QuickActions[slot].Prompt)
	}

	if m.focus == FocusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Open):
		conv, ok := selectedConversation(m.sidebar)
		if !ok {
			return m, nil
		}
		m.sess.Store.LoadConversation(conv.ID)
		m.setFocus(FocusInput)
		cmd := m.sync()
		m.viewport.GotoTop()
		return m, tea.Batch(cmd, m.setStatus("Opened: "+conv.DisplayTitle(), false))

	case key.Matches(msg, m.keys.Delete):
		conv, ok := selectedConversation(m.sidebar)
		if !ok {
			return m, nil
		}
		m.sess.Store.DeleteConversation(conv.ID)
		cmd := m.sync()
		return m, tea.Batch(cmd, m.setStatus("Deleted: "+conv.DisplayTitle(), false))

	case key.Matches(msg, m.keys.New):
		m.sess.NewConversation()
		m.setFocus(FocusInput)
		return m, m.sync()
	}

	var cmd tea.Cmd
	m.sidebar, cmd = m.sidebar.Update(msg)
	return m, cmd
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m.sendText(m.input.Value())
	case tea.KeyUp:
		m.viewport.LineUp(1)
		return m, nil
	case tea.KeyDown:
		m.viewport.LineDown(1)
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.sess.Store.SetUserInput(after)
		m.state = m.sess.Store.State()
	}
	return m, cmd
}

func (m *Model) setFocus(f Focus) {
	m.focus = f
	if f == FocusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// =============================================================================
// ACTIONS
// =============================================================================

// sendText starts an exchange for text unless one is already running.
func (m Model) sendText(text string) (tea.Model, tea.Cmd) {
	if m.sending || m.state.IsLoading {
		return m, m.setStatus("Please wait for the current reply", false)
	}
	if strings.TrimSpace(text) == "" {
		return m, nil
	}

	m.sending = true
	m.input.Reset()
	m.sess.Store.SetUserInput("")
	m.state = m.sess.Store.State()

	sess, ctx := m.sess, m.ctx
	return m, func() tea.Msg {
		return SendDoneMsg{Text: text, Outcome: sess.Send(ctx, text)}
	}
}

func (m Model) handleSendDone(msg SendDoneMsg) (tea.Model, tea.Cmd) {
	m.sending = false
	cmd := m.sync()

	out := msg.Outcome
	switch {
	case out.Sent && out.Err != nil:
		return m, tea.Batch(cmd, m.setStatus("Support server unavailable: "+out.Err.Error(), true))
	case !out.Sent && out.Err != nil:
		return m, tea.Batch(cmd, m.setStatus("Message not sent: "+out.Err.Error(), true))
	}
	return m, cmd
}

// copyLastReply copies the last assistant reply in the thread.
func (m *Model) copyLastReply() tea.Cmd {
	bot, ok := model.LastBotMessage(m.state.Messages)
	if !ok || bot.Content == "" {
		return m.setStatus("No reply to copy", false)
	}
	content := bot.Content
	return func() tea.Msg {
		return CopyDoneMsg{Size: len(content), Err: writeClipboard(content)}
	}
}

// setStatus shows text in the status line and schedules its removal.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusID++
	m.status = text
	m.statusIsErr = isErr
	id := m.statusID
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return StatusClearMsg{ID: id}
	})
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Focus returns the focused pane.
func (m Model) Focus() Focus {
	return m.focus
}

// Status returns the current status line text.
func (m Model) Status() string {
	return m.status
}

// Input returns the text in the input field.
func (m Model) Input() string {
	return m.input.Value()
}

// IsSending reports whether a send started by this model is in flight.
func (m Model) IsSending() bool {
	return m.sending
}
