// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/shopdesk-tui/internal/session"
	"github.com/jeranaias/shopdesk-tui/internal/ui/chat"
)

// slashCommands lists the REPL commands offered by tab completion.
var slashCommands = []string{"/help", "/new", "/history", "/open", "/delete", "/quick", "/quit", "/exit"}

func (a *App) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Line-based chat with input history and slash commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			r := NewREPL(cmd.Context(), sess, a.Out, a.StdoutTTY && a.cfg.UI.Markdown)
			return r.Run()
		},
	}
}

// =============================================================================
// REPL
// =============================================================================

// REPL is the line-based chat loop.
type REPL struct {
	ctx      context.Context
	sess     *session.Session
	out      io.Writer
	markdown bool
}

// NewREPL creates a REPL writing to out.
func NewREPL(ctx context.Context, sess *session.Session, out io.Writer, markdown bool) *REPL {
	return &REPL{ctx: ctx, sess: sess, out: out, markdown: markdown}
}

// Run reads lines until /quit, Ctrl+C or end of input.
func (r *REPL) Run() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeSlash)

	historyFile := filepath.Join(r.sess.Config().Storage.Dir, "chat_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0700); err != nil {
			return
		}
		f, err := os.OpenFile(historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return
		}
		defer f.Close()
		line.WriteHistory(f)
	}()

	r.printWelcome()
	for {
		if r.ctx.Err() != nil {
			return nil
		}
		input, err := line.Prompt("You: ")
		if err != nil {
			// Ctrl+C (liner.ErrPromptAborted) or EOF end the chat.
			fmt.Fprintln(r.out)
			return nil
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if !r.handleLine(input) {
			return nil
		}
	}
}

func completeSlash(line string) []string {
	if !strings.HasPrefix(line, "/") {
		return nil
	}
	var out []string
	for _, c := range slashCommands {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

func (r *REPL) printWelcome() {
	fmt.Fprintln(r.out, botLabel("Assistant:"), chat.WelcomeText)
	fmt.Fprintln(r.out, dimText("Type /help for commands, /quit to leave."))
}

// handleLine processes one input line. It returns false when the chat
// should end.
func (r *REPL) handleLine(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return true
	}
	if !strings.HasPrefix(input, "/") {
		r.send(input)
		return true
	}

	fields := strings.Fields(input)
	cmd, arg := fields[0], ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}

	switch cmd {
	case "/quit", "/exit", "/q":
		return false
	case "/help", "/?":
		r.printHelp()
	case "/new":
		r.sess.NewConversation()
		fmt.Fprintln(r.out, successLabel("Started a new conversation."))
	case "/history", "/list":
		printConversationList(r.out, r.sess.Conversations(), r.sess.Store.State().CurrentConversationID)
	case "/open":
		if arg == "" {
			fmt.Fprintln(r.out, warnLabel("Usage: /open N"))
			break
		}
		conv, ok := r.sess.Open(arg)
		if !ok {
			fmt.Fprintln(r.out, warnLabel("No conversation "+arg))
			break
		}
		fmt.Fprintf(r.out, "%s %s\n", successLabel("Opened"), conv.DisplayTitle())
		for _, msg := range r.sess.Store.State().Messages {
			printMessage(r.out, msg, r.markdown)
		}
	case "/delete":
		if arg == "" {
			fmt.Fprintln(r.out, warnLabel("Usage: /delete N"))
			break
		}
		conv, ok := r.sess.Delete(arg)
		if !ok {
			fmt.Fprintln(r.out, warnLabel("No conversation "+arg))
			break
		}
		fmt.Fprintf(r.out, "%s %s\n", successLabel("Deleted"), conv.DisplayTitle())
	case "/quick":
		r.quick(arg)
	default:
		fmt.Fprintf(r.out, "%s %s (try /help)\n", warnLabel("Unknown command:"), cmd)
	}
	return true
}

func (r *REPL) quick(arg string) {
	if arg == "" {
		for i, qa := range chat.QuickActions {
			fmt.Fprintf(r.out, "  %d. %-14s %s\n", i+1, qa.Label, dimText(qa.Prompt))
		}
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(chat.QuickActions) {
		fmt.Fprintf(r.out, "%s pick 1-%d\n", warnLabel("Unknown quick action:"), len(chat.QuickActions))
		return
	}
	prompt := chat.QuickActions[n-1].Prompt
	fmt.Fprintf(r.out, "%s %s\n", userLabel("You:"), prompt)
	r.send(prompt)
}

func (r *REPL) send(text string) {
	fmt.Fprintln(r.out, dimText("Assistant is typing..."))
	out := r.sess.Send(r.ctx, text)
	if !out.Sent {
		return
	}
	printMessage(r.out, out.Reply, r.markdown && out.OK())
	if out.Err != nil {
		fmt.Fprintln(r.out, dimText(fmt.Sprintf("(error: %v)", out.Err)))
	}
}

func (r *REPL) printHelp() {
	fmt.Fprintln(r.out, "Commands:")
	fmt.Fprintln(r.out, "  /new          Start a new conversation")
	fmt.Fprintln(r.out, "  /history     List saved conversations")
	fmt.Fprintln(r.out, "  /open N       Open conversation N (number or ID)")
	fmt.Fprintln(r.out, "  /delete N     Delete conversation N")
	fmt.Fprintln(r.out, "  /quick [N]    List quick actions, or send quick action N")
	fmt.Fprintln(r.out, "  /quit         Leave the chat")
}
