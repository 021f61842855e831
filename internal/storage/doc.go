// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the saved conversation list of shopdesk.
//
// Storage is a single key holding the JSON array of conversations. The key is
// read once when a session starts and overwritten with the whole list every
// time the list changes. There are no deltas and no merge: the last write
// wins.
//
// # Key Types
//
//   - KV: minimal key/value backend (Get, Set, Close)
//   - FileKV: one JSON file per key in the data directory
//   - SQLiteKV: a kv table in shopdesk.db (pure Go SQLite)
//   - MemoryKV: in-process map for tests and ephemeral sessions
//   - Binding: keeps a store.Store and a KV in sync
//
// # Usage
//
//	kv, err := storage.Open(storage.BackendFile, dataDir)
//	if err != nil {
//	    return err
//	}
//	defer kv.Close()
//
//	binding := storage.Bind(st, kv, storage.DefaultKey)
//	defer binding.Close()
//
// # Storage Location
//
// By default data lives in ~/.shopdesk/: chatConversations.json for the file
// backend, shopdesk.db for the SQLite backend.
package storage
