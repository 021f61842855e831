// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export provides conversation export functionality for shopdesk.
//
// # Key Types
//
//   - Exporter: Main export interface
//   - MarkdownExporter: Human-readable transcript with YAML frontmatter
//   - JSONExporter: The saved conversation record as indented JSON
//   - Options: Export configuration options
//
// # Usage
//
// Export a conversation:
//
//	exporter, err := export.ForFormat("md", nil)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ExportToFile(&conv, exporter, nil)
package export
