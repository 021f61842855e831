// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the shopdesk command line.
//
// # Commands
//
//	shopdesk                      Start the full-screen chat (default)
//	shopdesk tui                  Same as above
//	shopdesk chat                 Line-based chat with history and slash commands
//	shopdesk ask MESSAGE          Send one message and print the reply
//	shopdesk history list         List saved conversations
//	shopdesk history show REF     Print a saved conversation
//	shopdesk history delete REF   Delete a saved conversation
//	shopdesk history export REF   Export to Markdown or JSON
//	shopdesk history clear --yes  Delete every saved conversation
//	shopdesk config show|path|init
//	shopdesk version
//
// REF is a conversation ID or its number in "history list".
//
// # Global Flags
//
//	-c, --config PATH   Config file (default ~/.shopdesk/config.toml)
//	--api-url URL       Chat API base URL
//	--data-dir DIR      Directory for saved conversations
//	--backend NAME      Storage backend: file, sqlite, memory
//	--ephemeral         Keep history in memory only
//
// # Error Handling
//
// Commands return errors; Execute prints them once and maps them to an exit
// code with GetExitCode.
package cli
