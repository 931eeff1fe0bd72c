// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package output

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var (
	markdownOnce     sync.Once
	markdownRenderer *glamour.TermRenderer
)

// renderMarkdown renders markdown for terminal display. Returns the input
// unchanged if the renderer is unavailable or fails.
func renderMarkdown(md string) string {
	markdownOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
		if err == nil {
			markdownRenderer = r
		}
	})
	if markdownRenderer == nil {
		return strings.TrimRight(md, "\n")
	}

	rendered, err := markdownRenderer.Render(md)
	if err != nil {
		return strings.TrimRight(md, "\n")
	}
	return strings.TrimRight(rendered, "\n")
}
