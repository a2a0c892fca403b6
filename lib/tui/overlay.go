// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// SpliceOverlay replaces a rectangular region of a rendered view with
// overlay content placed at (anchorX, anchorY) in screen coordinates.
// Truncation is ANSI-aware, so styling in the underlying view survives
// on both sides of the overlay.
func SpliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}

	viewLines := strings.Split(view, "\n")
	overlayWidth := ansi.StringWidth(overlayLines[0])

	for index, overlayLine := range overlayLines {
		viewLineIndex := anchorY + index
		if viewLineIndex < 0 || viewLineIndex >= len(viewLines) {
			continue
		}

		viewLine := viewLines[viewLineIndex]
		viewLineWidth := ansi.StringWidth(viewLine)

		// prefix + reset + overlay + reset + suffix. Lines shorter
		// than the anchor are padded so the overlay stays aligned.
		var result strings.Builder
		if anchorX > 0 {
			prefix := ansi.Truncate(viewLine, anchorX, "")
			result.WriteString(prefix)
			if gap := anchorX - ansi.StringWidth(prefix); gap > 0 {
				result.WriteString(strings.Repeat(" ", gap))
			}
		}
		result.WriteString("\x1b[0m")
		result.WriteString(overlayLine)
		result.WriteString("\x1b[0m")

		suffixStart := anchorX + overlayWidth
		if suffixStart < viewLineWidth {
			suffix := ansi.TruncateLeft(viewLine, suffixStart, "")
			result.WriteString(suffix)
		}

		viewLines[viewLineIndex] = result.String()
	}

	return strings.Join(viewLines, "\n")
}

// PadOverlayLine pads styled content to innerWidth with one column of
// background-colored margin on each side.
func PadOverlayLine(styledContent string, innerWidth int, backgroundStyle lipgloss.Style) string {
	rightPad := max(innerWidth-ansi.StringWidth(styledContent), 0)
	return backgroundStyle.Render(" ") +
		styledContent +
		backgroundStyle.Render(strings.Repeat(" ", rightPad+1))
}
