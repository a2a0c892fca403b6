// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderScrollbar produces a single-column scrollbar of the given height
// for a pane showing visibleLines of totalLines starting at
// scrollOffset. When the content fits, the thumb spans the full height.
// The thumb uses the accent color when the pane has focus.
func RenderScrollbar(theme Theme, height, totalLines, visibleLines, scrollOffset int, focused bool) string {
	if height <= 0 {
		return ""
	}

	trackColor := theme.BorderColor
	thumbColor := theme.BorderColor
	if focused {
		thumbColor = theme.Accent
	}

	trackStyle := lipgloss.NewStyle().Foreground(trackColor)
	thumbStyle := lipgloss.NewStyle().Foreground(thumbColor)

	lines := make([]string, height)

	if totalLines <= visibleLines || totalLines <= 0 {
		for index := range lines {
			lines[index] = thumbStyle.Render("┃")
		}
		return strings.Join(lines, "\n")
	}

	thumbSize := max(height*visibleLines/totalLines, 1)

	scrollableRange := totalLines - visibleLines
	trackRange := height - thumbSize
	thumbOffset := 0
	if scrollableRange > 0 && trackRange > 0 {
		thumbOffset = min(scrollOffset, scrollableRange) * trackRange / scrollableRange
	}
	thumbOffset = max(min(thumbOffset, height-thumbSize), 0)

	for index := range lines {
		if index >= thumbOffset && index < thumbOffset+thumbSize {
			lines[index] = thumbStyle.Render("┃")
		} else {
			lines[index] = trackStyle.Render("│")
		}
	}

	return strings.Join(lines, "\n")
}
