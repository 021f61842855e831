// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/shopdesk-tui/internal/ui/chat"
	"github.com/jeranaias/shopdesk-tui/internal/ui/styles"
)

func (a *App) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the full-screen chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}
}

// runTUI runs the Bubble Tea chat until the user quits.
func (a *App) runTUI(ctx context.Context) error {
	if !IsTTY() || !IsStdoutTTY() {
		return NewValidationErrorWithExample("terminal", "",
			"the full-screen chat needs an interactive terminal",
			`shopdesk ask "Where is my order?"`)
	}

	sess, err := a.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	theme := styles.NewTheme(a.cfg.UI.Theme)
	m := chat.New(sess, theme).WithContext(ctx)
	defer m.Close()

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			log.Printf("chat interrupted: %v", ctx.Err())
			return nil
		}
		return NewCommandError("tui", "run", "terminal UI stopped", err)
	}
	if err := sess.StorageErr(); err != nil {
		fmt.Fprintf(a.Err, "%s history may not have been saved: %v\n", warnLabel("warning:"), err)
	}
	return nil
}
