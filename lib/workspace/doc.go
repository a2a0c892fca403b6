// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package workspace is the terminal front end of docdesk: a bubbletea
// model that shows a document pane and a chat pane side by side.
//
// The model owns no domain logic of its own. It composes the layout
// controller (divider position), the zoom controller (modified wheel
// over the document), the chat controller (session and transcript), a
// [document.Viewer] for the preview and a [markup.Renderer] for
// answers, and translates terminal events into calls on them.
//
// Backend requests never run on the update loop. Submitting a document
// or a question yields a [chat.Pending] that a tea.Cmd runs in the
// background; its outcome returns as a message and is applied on the
// loop, so all controller state is mutated from one goroutine.
//
// Layout, top to bottom:
//
//	header row    document toolbar │ "Chat Bot" title
//	content       document page    │ transcript
//	                               │ notice
//	                               │ composer
//	separator
//	status row    key help, search input or the latest warning
package workspace
