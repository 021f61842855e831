// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shopdesk-tui/internal/api"
	"github.com/jeranaias/shopdesk-tui/internal/config"
	"github.com/jeranaias/shopdesk-tui/internal/exchange"
	"github.com/jeranaias/shopdesk-tui/internal/session"
	"github.com/jeranaias/shopdesk-tui/internal/storage"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fakeClient answers every message and hands out conversation IDs.
type fakeClient struct {
	mu   sync.Mutex
	next int
	err  error
}

func (c *fakeClient) Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	id := ""
	if req.ConversationID != nil {
		id = *req.ConversationID
	} else {
		c.next++
		id = fmt.Sprintf("conv-%d", c.next)
	}
	return &api.ChatResponse{Response: "reply to " + req.Message, ConversationID: id}, nil
}

// isolate points HOME and the working directory at a temp dir and clears
// the environment overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	chdir(t, dir)
	for _, name := range []string{
		"SHOPDESK_API_URL", "SHOPDESK_CHAT_PATH", "SHOPDESK_DATA_DIR", "SHOPDESK_DEBUG",
		"SHOPDESK_LOG_FILE", "SHOPDESK_STORAGE_BACKEND", "SHOPDESK_STORAGE_KEY",
		"SHOPDESK_THEME", "SHOPDESK_TIMEOUT_SECS",
	} {
		t.Setenv(name, "")
	}
	return dir
}

type result struct {
	code int
	out  string
	err  string
}

func run(t *testing.T, client exchange.ChatClient, args ...string) result {
	t.Helper()
	return runContext(t, context.Background(), client, args...)
}

func runContext(t *testing.T, ctx context.Context, client exchange.ChatClient, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	app := &App{
		In:  strings.NewReader(""),
		Out: &out,
		Err: &errOut,
		NewSession: func(cfg *config.Config) (*session.Session, error) {
			kv, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Dir)
			if err != nil {
				return nil, err
			}
			return session.New(cfg, kv, client), nil
		},
	}
	code := app.Execute(ctx, args)
	return result{code: code, out: out.String(), err: errOut.String()}
}

// =============================================================================
// ASK AND HISTORY
// =============================================================================

func TestAsk_SavesConversation(t *testing.T) {
	isolate(t)
	client := &fakeClient{}

	r := run(t, client, "ask", "Where", "is", "my", "order?")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "reply to Where is my order?")
	assert.Contains(t, r.err, "conversation: conv-1")

	r = run(t, client, "history", "list")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "Where is my order?")
	assert.Contains(t, r.out, "2 msgs")

	r = run(t, client, "ask", "--conversation", "1", "And", "the", "tracking", "number?")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.err, "conversation: conv-1")

	r = run(t, client, "history", "list")
	assert.Contains(t, r.out, "4 msgs")
	assert.NotContains(t, r.out, "  2. ")

	r = run(t, client, "history", "show", "conv-1")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "You: Where is my order?")
	assert.Contains(t, r.out, "Assistant: reply to And the tracking number?")
}

func TestAsk_CorruptHistoryIsNotAnError(t *testing.T) {
	dir := isolate(t)
	dataDir := filepath.Join(dir, ".shopdesk")
	require.NoError(t, os.MkdirAll(dataDir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "chatConversations.json"), []byte("not json"), 0600))
	client := &fakeClient{}

	r := run(t, client, "ask", "hi")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.NotContains(t, r.err, "[ERROR]")

	r = run(t, client, "history", "list")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "2 msgs")

	backup, err := os.ReadFile(filepath.Join(dataDir, "chatConversations.corrupt.json"))
	require.NoError(t, err)
	assert.Equal(t, "not json", string(backup))
}

func TestAsk_UnknownConversation(t *testing.T) {
	isolate(t)

	r := run(t, &fakeClient{}, "ask", "--conversation", "nope", "hello")
	assert.Equal(t, ExitNotFoundError, r.code)
	assert.Contains(t, r.err, "conversation not found: nope")
}

func TestAsk_ServerFailurePrintsFallback(t *testing.T) {
	isolate(t)
	client := &fakeClient{err: &api.APIError{Status: 502, Message: "bad gateway"}}

	r := run(t, client, "ask", "hello")
	assert.Equal(t, ExitNetworkError, r.code)
	assert.Contains(t, r.out, exchange.FallbackMessage)
	assert.Contains(t, r.err, "[ERROR]")

	// A failed first exchange is not saved.
	r = run(t, &fakeClient{}, "history", "list")
	assert.Contains(t, r.out, "No saved conversations.")
}

func TestAsk_CancelledBeforeSendPrintsNothing(t *testing.T) {
	isolate(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := runContext(t, ctx, &fakeClient{}, "ask", "hello")
	assert.Equal(t, ExitGeneralError, r.code)
	assert.Empty(t, r.out)
	assert.Contains(t, r.err, "context canceled")
}

func TestAsk_RequiresMessage(t *testing.T) {
	isolate(t)

	r := run(t, &fakeClient{}, "ask")
	assert.Equal(t, ExitGeneralError, r.code)

	r = run(t, &fakeClient{}, "ask", "   ")
	assert.Equal(t, ExitUsageError, r.code)
}

func TestHistory_DeleteAndClear(t *testing.T) {
	isolate(t)
	client := &fakeClient{}
	require.Equal(t, ExitSuccess, run(t, client, "ask", "first").code)
	require.Equal(t, ExitSuccess, run(t, client, "ask", "second").code)

	r := run(t, client, "history", "delete", "1")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "Deleted first (conv-1)")

	r = run(t, client, "history", "delete", "conv-9")
	assert.Equal(t, ExitNotFoundError, r.code)

	r = run(t, client, "history", "clear")
	assert.Equal(t, ExitUsageError, r.code)

	r = run(t, client, "history", "clear", "--yes")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "Deleted 1 conversations")

	r = run(t, client, "history", "list")
	assert.Contains(t, r.out, "No saved conversations.")
}

func TestHistory_ExportJSONToStdout(t *testing.T) {
	isolate(t)
	client := &fakeClient{}
	require.Equal(t, ExitSuccess, run(t, client, "ask", "Stock check").code)

	r := run(t, client, "history", "export", "1", "--format", "json", "-o", "-")
	require.Equal(t, ExitSuccess, r.code, r.err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.out), &got))
	assert.Equal(t, "conv-1", got["id"])
	assert.Equal(t, "Stock check", got["title"])
}

func TestHistory_ExportMarkdownFile(t *testing.T) {
	dir := isolate(t)
	client := &fakeClient{}
	require.Equal(t, ExitSuccess, run(t, client, "ask", "Top products").code)

	outDir := filepath.Join(dir, "exports")
	r := run(t, client, "history", "export", "conv-1", "--dir", outDir)
	require.Equal(t, ExitSuccess, r.code, r.err)

	matches, err := filepath.Glob(filepath.Join(outDir, "conversation_Top_products_*.md"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "reply to Top products")

	named := filepath.Join(dir, "chat.md")
	r = run(t, client, "history", "export", "1", "-o", named)
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.FileExists(t, named)

	r = run(t, client, "history", "export", "1", "--format", "pdf")
	assert.Equal(t, ExitUsageError, r.code)
}

func TestEphemeralBackendKeepsNothing(t *testing.T) {
	isolate(t)
	client := &fakeClient{}

	require.Equal(t, ExitSuccess, run(t, client, "--ephemeral", "ask", "hello").code)
	r := run(t, client, "history", "list")
	assert.Contains(t, r.out, "No saved conversations.")
}

// =============================================================================
// CONFIG AND VERSION
// =============================================================================

func TestConfigInitAndPath(t *testing.T) {
	dir := isolate(t)
	want := filepath.Join(dir, ".shopdesk", "config.toml")

	r := run(t, nil, "config", "path")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "(not created)")

	r = run(t, nil, "config", "init")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.FileExists(t, want)

	r = run(t, nil, "config", "init")
	assert.Equal(t, ExitUsageError, r.code)

	r = run(t, nil, "config", "init", "--force", "--api-url", "http://shop.example:9000")
	require.Equal(t, ExitSuccess, r.code, r.err)

	r = run(t, nil, "config", "path")
	assert.Equal(t, want+"\n", r.out)

	r = run(t, nil, "config", "show")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "# source: "+want)
	assert.Contains(t, r.out, "http://shop.example:9000")
}

func TestConfigShowCheck(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"message":"Shop API is running"}`)
	}))
	defer srv.Close()

	r := run(t, nil, "--api-url", srv.URL, "config", "show", "--check")
	require.Equal(t, ExitSuccess, r.code, r.err)
	assert.Contains(t, r.out, "reachable:")
	assert.Contains(t, r.out, "Shop API is running")
}

func TestConfigShowCheck_Unreachable(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := run(t, nil, "--api-url", url, "config", "show", "--check")
	assert.Equal(t, ExitNetworkError, r.code)
	assert.Contains(t, r.out, "unreachable:")
}

func TestInvalidBackendIsConfigError(t *testing.T) {
	isolate(t)

	r := run(t, &fakeClient{}, "--backend", "nope", "history", "list")
	assert.Equal(t, ExitConfigError, r.code)
	assert.Contains(t, r.err, "configuration error")
}

func TestVersion(t *testing.T) {
	isolate(t)

	r := run(t, nil, "version")
	require.Equal(t, ExitSuccess, r.code)
	assert.Contains(t, r.out, "shopdesk "+Version)
}

// =============================================================================
// REPL
// =============================================================================

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer) {
	t.Helper()
	isolate(t)
	cfg := config.Default()
	cfg.Storage.Backend = "memory"
	sess := session.New(cfg, storage.NewMemoryKV(), &fakeClient{})
	t.Cleanup(func() { sess.Close() })

	var out bytes.Buffer
	return NewREPL(context.Background(), sess, &out, false), &out
}

func TestREPL_SendAndHistory(t *testing.T) {
	r, out := newTestREPL(t)

	assert.True(t, r.handleLine("Do you ship abroad?"))
	assert.Contains(t, out.String(), "Assistant: reply to Do you ship abroad?")

	out.Reset()
	assert.True(t, r.handleLine("/history"))
	assert.Contains(t, out.String(), "*  1. Do you ship abroad?")

	out.Reset()
	assert.True(t, r.handleLine("/new"))
	assert.Empty(t, r.sess.Store.State().CurrentConversationID)

	out.Reset()
	assert.True(t, r.handleLine("/open 1"))
	assert.Contains(t, out.String(), "Opened Do you ship abroad?")
	assert.Contains(t, out.String(), "You: Do you ship abroad?")
	assert.Equal(t, "conv-1", r.sess.Store.State().CurrentConversationID)

	out.Reset()
	assert.True(t, r.handleLine("/delete 1"))
	assert.Contains(t, out.String(), "Deleted")
	assert.Empty(t, r.sess.Conversations())
}

func TestREPL_QuickActions(t *testing.T) {
	r, out := newTestREPL(t)

	assert.True(t, r.handleLine("/quick"))
	assert.Contains(t, out.String(), "Top Products")

	out.Reset()
	assert.True(t, r.handleLine("/quick 2"))
	assert.Contains(t, out.String(), "reply to ")
	require.Len(t, r.sess.Conversations(), 1)

	out.Reset()
	assert.True(t, r.handleLine("/quick 9"))
	assert.Contains(t, out.String(), "Unknown quick action")
}

func TestREPL_Commands(t *testing.T) {
	r, out := newTestREPL(t)

	assert.True(t, r.handleLine("   "))
	assert.Empty(t, out.String())

	assert.True(t, r.handleLine("/help"))
	assert.Contains(t, out.String(), "/open N")

	out.Reset()
	assert.True(t, r.handleLine("/open 3"))
	assert.Contains(t, out.String(), "No conversation 3")

	out.Reset()
	assert.True(t, r.handleLine("/bogus"))
	assert.Contains(t, out.String(), "Unknown command: /bogus")

	assert.False(t, r.handleLine("/quit"))
	assert.False(t, r.handleLine("/exit"))
}

func TestCompleteSlash(t *testing.T) {
	assert.Equal(t, []string{"/quick", "/quit"}, completeSlash("/qu"))
	assert.Nil(t, completeSlash("hello"))
}

// =============================================================================
// ERRORS
// =============================================================================

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitGeneralError},
		{"validation", NewValidationError("format", "x", "bad"), ExitUsageError},
		{"not found", NewNotFoundError("conversation", "7"), ExitNotFoundError},
		{"config", &ConfigError{Err: errors.New("bad toml")}, ExitConfigError},
		{"api", NewCommandError("ask", "send", "failed", &api.APIError{Status: 500}), ExitNetworkError},
		{"malformed", fmt.Errorf("x: %w", api.ErrMalformedResponse), ExitNetworkError},
		{"deadline", fmt.Errorf("request failed: %w", context.DeadlineExceeded), ExitTimeoutError},
		{"net timeout", fmt.Errorf("request failed: %w", timeoutErr{}), ExitTimeoutError},
		{"net refused", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, ExitNetworkError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError_ListsValidationErrors(t *testing.T) {
	var buf bytes.Buffer
	err := &ConfigError{Err: config.ValidateErrors{
		{Field: "storage.backend", Message: "bad backend"},
		{Field: "ui.theme", Message: "bad theme"},
	}}
	DisplayError(&buf, err)
	assert.Contains(t, buf.String(), "[ERROR] configuration error")
	assert.Contains(t, buf.String(), "  - ")
	assert.Contains(t, buf.String(), "bad theme")

	buf.Reset()
	DisplayError(&buf, nil)
	assert.Empty(t, buf.String())
}
