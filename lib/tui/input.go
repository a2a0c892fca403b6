// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// LineInput is a single-line text editor with a cursor. The owner
// routes key messages to Update and draws it with View.
type LineInput struct {
	// Placeholder is shown faint when the input is empty.
	Placeholder string

	value  []rune
	cursor int // Rune index, 0 <= cursor <= len(value).
}

// Value returns the current text.
func (input *LineInput) Value() string {
	return string(input.value)
}

// SetValue replaces the text and moves the cursor to the end.
func (input *LineInput) SetValue(value string) {
	input.value = []rune(value)
	input.cursor = len(input.value)
}

// Reset clears the text.
func (input *LineInput) Reset() {
	input.value = nil
	input.cursor = 0
}

// Empty reports whether the input holds only whitespace.
func (input *LineInput) Empty() bool {
	return strings.TrimSpace(string(input.value)) == ""
}

// Cursor returns the rune index of the cursor.
func (input *LineInput) Cursor() int {
	return input.cursor
}

// Update applies an editing key. Returns true when the key was an
// editing key (whether or not the text changed); the owner handles
// everything else, including Enter and Esc.
func (input *LineInput) Update(message tea.KeyMsg) bool {
	switch message.Type {
	case tea.KeyRunes:
		for _, character := range message.Runes {
			input.insert(character)
		}

	case tea.KeySpace:
		input.insert(' ')

	case tea.KeyBackspace:
		if input.cursor > 0 {
			input.value = append(input.value[:input.cursor-1], input.value[input.cursor:]...)
			input.cursor--
		}

	case tea.KeyDelete:
		if input.cursor < len(input.value) {
			input.value = append(input.value[:input.cursor], input.value[input.cursor+1:]...)
		}

	case tea.KeyLeft:
		if input.cursor > 0 {
			input.cursor--
		}

	case tea.KeyRight:
		if input.cursor < len(input.value) {
			input.cursor++
		}

	case tea.KeyHome, tea.KeyCtrlA:
		input.cursor = 0

	case tea.KeyEnd, tea.KeyCtrlE:
		input.cursor = len(input.value)

	case tea.KeyCtrlU:
		input.value = append([]rune(nil), input.value[input.cursor:]...)
		input.cursor = 0

	case tea.KeyCtrlK:
		input.value = input.value[:input.cursor]

	case tea.KeyCtrlW:
		input.deleteWordBackward()

	default:
		return false
	}
	return true
}

// insert adds one rune at the cursor. Pasted newlines and tabs become
// spaces; other control characters are dropped.
func (input *LineInput) insert(character rune) {
	switch {
	case character == '\n' || character == '\r' || character == '\t':
		character = ' '
	case unicode.IsControl(character):
		return
	}
	input.value = append(input.value, 0)
	copy(input.value[input.cursor+1:], input.value[input.cursor:])
	input.value[input.cursor] = character
	input.cursor++
}

func (input *LineInput) deleteWordBackward() {
	start := input.cursor
	for start > 0 && unicode.IsSpace(input.value[start-1]) {
		start--
	}
	for start > 0 && !unicode.IsSpace(input.value[start-1]) {
		start--
	}
	input.value = append(input.value[:start], input.value[input.cursor:]...)
	input.cursor = start
}

// View renders the input into exactly width columns. The text scrolls
// horizontally so the cursor stays visible. The cursor is drawn only
// when focused.
func (input *LineInput) View(theme Theme, width int, focused bool) string {
	if width <= 0 {
		return ""
	}
	textStyle := lipgloss.NewStyle().Foreground(theme.NormalText)
	cursorStyle := lipgloss.NewStyle().Reverse(true)

	if len(input.value) == 0 {
		var rendered string
		if focused {
			rendered = cursorStyle.Render(" ")
		}
		if remaining := width - ansi.StringWidth(rendered); input.Placeholder != "" && remaining > 0 {
			placeholder := ansi.Truncate(input.Placeholder, remaining, "…")
			rendered += lipgloss.NewStyle().Foreground(theme.FaintText).Render(placeholder)
		}
		return padRight(rendered, width)
	}

	// Reserve one column for a cursor parked after the last rune.
	start := input.scrollStart(width - 1)
	var builder strings.Builder
	used := 0
	for index := start; index <= len(input.value); index++ {
		if index == len(input.value) {
			if focused && index == input.cursor && used < width {
				builder.WriteString(cursorStyle.Render(" "))
				used++
			}
			break
		}
		character := string(input.value[index])
		characterWidth := ansi.StringWidth(character)
		if used+characterWidth > width {
			break
		}
		if focused && index == input.cursor {
			builder.WriteString(cursorStyle.Render(character))
		} else {
			builder.WriteString(textStyle.Render(character))
		}
		used += characterWidth
	}
	return padRight(builder.String(), width)
}

// scrollStart returns the first rune index to draw so that the cursor
// lands within the visible columns.
func (input *LineInput) scrollStart(visibleWidth int) int {
	visibleWidth = max(visibleWidth, 1)
	start := input.cursor
	used := 0
	for start > 0 {
		characterWidth := ansi.StringWidth(string(input.value[start-1]))
		if used+characterWidth > visibleWidth {
			break
		}
		used += characterWidth
		start--
	}
	return start
}

func padRight(rendered string, width int) string {
	if gap := width - ansi.StringWidth(rendered); gap > 0 {
		return rendered + strings.Repeat(" ", gap)
	}
	return rendered
}
