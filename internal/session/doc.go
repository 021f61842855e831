// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session wires one shopdesk application session together.
//
// A Session owns the conversation store, the persistence binding, the chat
// API client and the exchange for as long as the application runs. Nothing is
// global: the CLI opens a Session and passes it to the UI or REPL.
//
// # Usage
//
//	sess, err := session.Open(cfg)
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//
//	out := sess.Send(ctx, "Where is my order?")
package session
