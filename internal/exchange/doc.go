// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package exchange runs one user-message/bot-reply cycle against the chat API
// and records the result in a store.Store.
//
// Sends are serialized: a send issued while another is in flight waits for it
// to settle before it touches any state, so a follow-up message always carries
// the conversation ID returned by the previous exchange. Failures never
// surface as errors to the user; they become the fixed FallbackMessage in the
// thread.
package exchange
