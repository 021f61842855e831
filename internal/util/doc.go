// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across shopdesk packages.
//
// String Utilities:
//   - Ellipsize: keep the first n characters and append "..."
//   - TruncateRunes: UTF-8 safe truncation to a total length
//   - TruncateWidth, PadRight: display-width aware layout helpers
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	title := util.Ellipsize(firstMessage, 30)
//	cell := util.PadRight(util.TruncateWidth(title, 24), 24)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
