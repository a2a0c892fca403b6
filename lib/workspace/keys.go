// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the workspace key bindings. Bindings in the document
// group apply only while the document pane has focus; in the chat pane
// those keys are typed into the composer.
type KeyMap struct {
	// Global.
	Open        key.Binding // Open the document path prompt.
	FocusToggle key.Binding
	Quit        key.Binding

	// Modal, composer and search input.
	Confirm key.Binding
	Cancel  key.Binding

	// Document pane.
	QuitDocument key.Binding // Quit that only applies with document focus.
	SplitGrow    key.Binding
	SplitShrink  key.Binding
	ZoomIn       key.Binding
	ZoomOut      key.Binding
	NextPage     key.Binding
	PreviousPage key.Binding
	FirstPage    key.Binding
	LastPage     key.Binding
	Search       key.Binding
	SearchNext   key.Binding
	SearchPrev   key.Binding
	FullScreen   key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Open: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("C-o", "open"),
	),
	FocusToggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "focus"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "send"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
	QuitDocument: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	SplitGrow: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "grow"),
	),
	SplitShrink: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "shrink"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "next page"),
	),
	PreviousPage: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "previous page"),
	),
	FirstPage: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "first page"),
	),
	LastPage: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "last page"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	SearchNext: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next match"),
	),
	SearchPrev: key.NewBinding(
		key.WithKeys("N"),
		key.WithHelp("N", "previous match"),
	),
	FullScreen: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "full screen"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	HalfPageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	HalfPageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
}
