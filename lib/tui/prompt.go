// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Prompt modal chrome: 2 columns of border plus 2 of padding; border,
// title, blank, input, error and footer rows.
const (
	promptChromeWidth = 4
	promptMinWidth    = 30
	promptMaxWidth    = 100
	promptMargin      = 2
)

// PromptModal is a centered single-line input box, used to ask for a
// file path. The owner decides what Enter and Esc mean; the modal only
// edits and draws.
type PromptModal struct {
	Title  string
	Footer string

	// Error is shown under the input in the error color, for example
	// when the entered path could not be opened.
	Error string

	Input LineInput
	theme Theme
}

// NewPromptModal creates a prompt with the input preset to initial.
func NewPromptModal(title, initial string, theme Theme) PromptModal {
	modal := PromptModal{
		Title:  title,
		Footer: "Enter confirm  Esc cancel",
		theme:  theme,
	}
	modal.Input.SetValue(initial)
	return modal
}

// Update routes an editing key to the input and clears a stale error
// once the user edits.
func (modal *PromptModal) Update(message tea.KeyMsg) bool {
	if !modal.Input.Update(message) {
		return false
	}
	modal.Error = ""
	return true
}

// Value returns the trimmed input text.
func (modal *PromptModal) Value() string {
	return strings.TrimSpace(modal.Input.Value())
}

// Render produces the modal lines and the top-left anchor that centers
// them on a screen of the given size.
func (modal *PromptModal) Render(screenWidth, screenHeight int) ([]string, int, int) {
	modalWidth := min(max(screenWidth-promptMargin*2, promptMinWidth), promptMaxWidth, screenWidth)
	innerWidth := max(modalWidth-promptChromeWidth, 1)

	backgroundStyle := lipgloss.NewStyle().Background(modal.theme.ModalBackground)
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(modal.theme.HeaderForeground).
		Background(modal.theme.ModalBackground)
	footerStyle := lipgloss.NewStyle().
		Foreground(modal.theme.FaintText).
		Background(modal.theme.ModalBackground)
	errorStyle := lipgloss.NewStyle().
		Foreground(modal.theme.ErrorText).
		Background(modal.theme.ModalBackground)

	fit := func(text string) string {
		return ansi.Truncate(text, innerWidth, "…")
	}

	rows := []string{
		titleStyle.Render(fit(modal.Title)),
		"",
		modal.Input.View(modal.theme, innerWidth, true),
		errorStyle.Render(fit(modal.Error)),
		footerStyle.Render(fit(modal.Footer)),
	}
	for index, row := range rows {
		rows[index] = PadOverlayLine(row, innerWidth, backgroundStyle)
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(modal.theme.BorderColor).
		BorderBackground(modal.theme.ModalBackground)
	lines := strings.Split(borderStyle.Render(strings.Join(rows, "\n")), "\n")

	renderedWidth := 0
	if len(lines) > 0 {
		renderedWidth = ansi.StringWidth(lines[0])
	}
	anchorX := max((screenWidth-renderedWidth)/2, 0)
	anchorY := max((screenHeight-len(lines))/2, 0)
	return lines, anchorX, anchorY
}
