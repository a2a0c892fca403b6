// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the terminal components shared by the docdesk
// workspace: the color theme, a single-line text input, a centered
// prompt modal, scrollbars, overlay splicing, and fuzzy and substring
// match highlighting over ANSI-styled text.
//
// Components follow the bubbletea conventions but are not tea.Models
// themselves. The owning model routes key messages to them and asks
// them to render into a given width; each component keeps only its own
// editing or match state.
package tui
