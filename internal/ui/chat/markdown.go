// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"
	"strings"

	"github.com/charmbracelet/glamour"
)

// minMarkdownWidth is the narrowest word wrap passed to glamour.
const minMarkdownWidth = 20

// markdownRenderer renders bot replies with glamour, caching output per
// content for the current wrap width.
type markdownRenderer struct {
	style string
	width int
	tr    *glamour.TermRenderer
	cache map[string]string
}

func newMarkdownRenderer(style string) *markdownRenderer {
	return &markdownRenderer{style: style}
}

// render returns content rendered for width. On renderer errors the content
// is returned unchanged.
func (r *markdownRenderer) render(content string, width int) string {
	width = max(width, minMarkdownWidth)

	if r.tr == nil || r.width != width {
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			log.Printf("markdown renderer unavailable: %v", err)
			return content
		}
		r.tr = tr
		r.width = width
		r.cache = make(map[string]string)
	}

	if out, ok := r.cache[content]; ok {
		return out
	}
	out, err := r.tr.Render(content)
	if err != nil {
		return content
	}
	out = strings.Trim(out, "\n")
	r.cache[content] = out
	return out
}
