// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/docdesk/lib/markup"
)

// Theme defines the color palette of the workspace. All colors are
// ANSI 256-color codes for broad terminal compatibility; the search
// highlight colors must be numeric because they are spliced into
// styled text as raw escapes.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	ErrorText  lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	HeaderBackground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Accent marks focus: the focused pane's scrollbar thumb, the
	// divider while dragging, the composer prompt.
	Accent lipgloss.Color

	// Transcript labels.
	UserLabel      lipgloss.Color
	AssistantLabel lipgloss.Color
	Timestamp      lipgloss.Color
	Notice         lipgloss.Color

	// Markdown headings and checked task boxes in answers.
	HeadingForeground lipgloss.Color
	CheckedForeground lipgloss.Color

	// Search match highlighting.
	SearchHighlightBackground lipgloss.Color // Background tint for matched characters.
	SearchCurrentBackground   lipgloss.Color // Background for the current match.

	// Modal boxes.
	ModalForeground lipgloss.Color
	ModalBackground lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),
	ErrorText:  lipgloss.Color("203"),

	HeaderForeground: lipgloss.Color("255"),
	HeaderBackground: lipgloss.Color("236"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	Accent: lipgloss.Color("220"), // yellow/amber

	UserLabel:      lipgloss.Color("114"), // green
	AssistantLabel: lipgloss.Color("75"),  // blue
	Timestamp:      lipgloss.Color("240"),
	Notice:         lipgloss.Color("141"), // light purple

	HeadingForeground: lipgloss.Color("75"),
	CheckedForeground: lipgloss.Color("114"),

	SearchHighlightBackground: lipgloss.Color("58"),  // dark amber
	SearchCurrentBackground:   lipgloss.Color("100"), // brighter amber for current match

	ModalForeground: lipgloss.Color("252"),
	ModalBackground: lipgloss.Color("237"),
}

// MarkupPalette returns the colors the answer renderer should use.
func (theme Theme) MarkupPalette() markup.Palette {
	return markup.Palette{
		Text:    theme.NormalText,
		Heading: theme.HeadingForeground,
		Faint:   theme.FaintText,
		Border:  theme.BorderColor,
		Accent:  theme.CheckedForeground,
	}
}
