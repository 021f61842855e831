// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/shopdesk-tui/internal/model"
)

// renderReply formats a bot reply for the terminal. Markdown is rendered
// only when enabled, otherwise the text is returned unchanged.
func renderReply(content string, markdown bool) string {
	if !markdown {
		return content
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()-4),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

// printMessage writes one message with its sender label.
func printMessage(w io.Writer, msg model.Message, markdown bool) {
	if msg.IsUser() {
		fmt.Fprintf(w, "%s %s\n", userLabel(msg.Type.DisplayName()+":"), msg.Content)
		return
	}
	body := renderReply(msg.Content, markdown)
	if markdown {
		fmt.Fprintf(w, "%s\n%s\n", botLabel(msg.Type.DisplayName()+":"), body)
		return
	}
	fmt.Fprintf(w, "%s %s\n", botLabel(msg.Type.DisplayName()+":"), body)
}

// printConversationList writes the numbered history list.
func printConversationList(w io.Writer, convs []model.Conversation, current string) {
	if len(convs) == 0 {
		fmt.Fprintln(w, dimText("No saved conversations."))
		return
	}
	now := nowFunc()
	for i, c := range convs {
		marker := " "
		if c.ID == current && current != "" {
			marker = "*"
		}
		fmt.Fprintf(w, "%s%3d. %-32s %s  %s\n", marker, i+1, c.DisplayTitle(),
			dimText(fmt.Sprintf("%d msgs", c.MessageCount())),
			dimText(model.FormatRelative(c.Timestamp, now)))
	}
}
