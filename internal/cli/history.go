// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/shopdesk-tui/internal/export"
	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/session"
)

// nowFunc is the clock used for relative dates and export names.
var nowFunc = time.Now

func (a *App) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"hist"},
		Short:   "Manage saved conversations",
		Long: `Manage saved conversations.

REF is a conversation ID or its number in "shopdesk history list".`,
	}
	cmd.AddCommand(
		a.historyListCmd(),
		a.historyShowCmd(),
		a.historyDeleteCmd(),
		a.historyExportCmd(),
		a.historyClearCmd(),
	)
	return cmd
}

// withSession opens a session for the duration of fn.
func (a *App) withSession(fn func(sess *session.Session) error) error {
	sess, err := a.openSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := fn(sess); err != nil {
		return err
	}
	if err := sess.StorageErr(); err != nil {
		return NewCommandError("history", "save", "history was not saved", err)
	}
	return nil
}

func resolve(sess *session.Session, ref string) (model.Conversation, error) {
	conv, ok := sess.Resolve(ref)
	if !ok {
		return model.Conversation{}, NewNotFoundError("conversation", ref)
	}
	return conv, nil
}

func (a *App) historyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved conversations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(sess *session.Session) error {
				printConversationList(a.Out, sess.Conversations(), "")
				return nil
			})
		},
	}
}

func (a *App) historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show REF",
		Short: "Print a saved conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(sess *session.Session) error {
				conv, err := resolve(sess, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(a.Out, "%s\n%s\n\n", conv.DisplayTitle(),
					dimText(fmt.Sprintf("%s | %s | %d messages", conv.ID,
						conv.Timestamp.Local().Format("2006-01-02 15:04"), conv.MessageCount())))
				markdown := a.StdoutTTY && a.cfg.UI.Markdown
				for _, msg := range conv.Messages {
					printMessage(a.Out, msg, markdown)
				}
				return nil
			})
		},
	}
}

func (a *App) historyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete REF",
		Aliases: []string{"rm"},
		Short:   "Delete a saved conversation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(sess *session.Session) error {
				conv, ok := sess.Delete(args[0])
				if !ok {
					return NewNotFoundError("conversation", args[0])
				}
				fmt.Fprintf(a.Out, "Deleted %s (%s)\n", conv.DisplayTitle(), conv.ID)
				return nil
			})
		},
	}
}

func (a *App) historyExportCmd() *cobra.Command {
	var (
		format string
		output string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "export REF",
		Short: "Export a saved conversation to Markdown or JSON",
		Example: `  shopdesk history export 1
  shopdesk history export 1 --format json -o order.json
  shopdesk history export 1 -o - | less`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := export.DefaultOptions()
			opts.Now = nowFunc
			if dir != "" {
				opts.OutputDir = dir
			}
			exporter, err := export.ForFormat(format, opts)
			if err != nil {
				return NewValidationErrorWithExample("format", format,
					"must be one of "+strings.Join(export.Formats, ", "), "--format md")
			}

			return a.withSession(func(sess *session.Session) error {
				conv, err := resolve(sess, args[0])
				if err != nil {
					return err
				}

				switch output {
				case "-":
					data, err := exporter.Export(&conv)
					if err != nil {
						return NewCommandError("history", "export", "could not export conversation", err)
					}
					_, err = a.Out.Write(data)
					return err
				case "":
					path, err := export.ExportToFile(&conv, exporter, opts)
					if err != nil {
						return NewCommandError("history", "export", "could not export conversation", err)
					}
					fmt.Fprintf(a.Out, "Exported to %s\n", path)
				default:
					if err := export.WriteFile(&conv, exporter, output); err != nil {
						return NewCommandError("history", "export", "could not export conversation", err)
					}
					fmt.Fprintf(a.Out, "Exported to %s\n", output)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "md", "export format: md, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file ("-" for stdout)`)
	cmd.Flags().StringVar(&dir, "dir", "", "directory for the generated file name")
	return cmd
}

func (a *App) historyClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewValidationErrorWithExample("confirmation", "",
					"clearing history cannot be undone", "shopdesk history clear --yes")
			}
			return a.withSession(func(sess *session.Session) error {
				n := len(sess.Conversations())
				sess.ClearHistory()
				fmt.Fprintf(a.Out, "Deleted %d conversations\n", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}
