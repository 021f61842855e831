// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the shopdesk chat API.
//
// The chat API is a single endpoint: POST {base}/api/chat with
//
//	{"message": "...", "conversation_id": "..." | null}
//
// answered by
//
//	{"response": "...", "conversation_id": "...", "timestamp": "..."}
//
// The client issues exactly one request per call. It does not retry and adds
// no timeout beyond the one configured on its http.Client.
//
// # Errors
//
//   - *APIError: the server answered with a non-2xx status
//   - ErrMalformedResponse: the body could not be decoded or had no
//     conversation_id
//   - any other error: transport failure or context cancellation
package api
