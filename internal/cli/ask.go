// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *App) askCmd() *cobra.Command {
	var conversation string

	cmd := &cobra.Command{
		Use:   "ask MESSAGE...",
		Short: "Send one message and print the reply",
		Long: `Send one message to the support assistant and print the reply.

The exchange is saved to history like any other. Use --conversation to
continue a saved conversation by ID or list number.`,
		Example: `  shopdesk ask "Is the blue hoodie in stock?"
  shopdesk ask --conversation 2 "And in size M?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return NewValidationErrorWithExample("message", "", "message cannot be empty",
					`shopdesk ask "Where is my order?"`)
			}

			sess, err := a.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			if conversation != "" {
				if _, ok := sess.Open(conversation); !ok {
					return NewNotFoundError("conversation", conversation)
				}
			}

			out := sess.Send(cmd.Context(), message)
			if out.Err != nil {
				if out.Sent {
					fmt.Fprintln(a.Out, out.Reply.Content)
				}
				return NewCommandError("ask", "send", "the support server did not answer", out.Err)
			}

			fmt.Fprintln(a.Out, renderReply(out.Reply.Content, a.StdoutTTY && a.cfg.UI.Markdown))
			fmt.Fprintf(a.Err, "%s %s\n", dimText("conversation:"), out.ConversationID)
			if err := sess.StorageErr(); err != nil {
				return NewCommandError("ask", "save", "reply received but history was not saved", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&conversation, "conversation", "", "continue a saved conversation (ID or list number)")
	return cmd
}
