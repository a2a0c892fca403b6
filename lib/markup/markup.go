// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package markup renders backend answers, which arrive as markdown, into
// styled terminal text.
//
// Answers are untrusted. Before parsing, [Sanitize] removes every
// terminal escape sequence and control character from the input, so an
// answer can style itself only through markdown, never by smuggling raw
// sequences to the terminal. Raw HTML is reduced to its text content and
// links render as text followed by the destination in parentheses; the
// renderer never emits OSC 8 hyperlinks or any other sequence that the
// terminal would act on beyond SGR styling.
package markup

import (
	"io"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Renderer converts markup text into display text wrapped to width
// columns.
type Renderer interface {
	Render(text string, width int) string
}

// Palette holds the colors the terminal renderer styles with.
type Palette struct {
	Text    lipgloss.Color
	Heading lipgloss.Color
	Faint   lipgloss.Color
	Border  lipgloss.Color
	Accent  lipgloss.Color
}

// DefaultPalette matches the default workspace theme.
var DefaultPalette = Palette{
	Text:    lipgloss.Color("252"),
	Heading: lipgloss.Color("75"),
	Faint:   lipgloss.Color("243"),
	Border:  lipgloss.Color("238"),
	Accent:  lipgloss.Color("114"),
}

// CodeStyle is the chroma style for fenced code blocks.
const CodeStyle = "monokai"

var (
	parserInstance goldmark.Markdown
	parserOnce     sync.Once
)

// parser returns the shared goldmark instance. Parsing keeps per-call
// state in the reader and AST, so one instance serves every render.
func parser() goldmark.Markdown {
	parserOnce.Do(func() {
		parserInstance = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.DefinitionList,
			),
		)
	})
	return parserInstance
}

// Terminal renders markdown as ANSI-styled terminal text. Safe for
// concurrent use.
type Terminal struct {
	palette     Palette
	lipRenderer *lipgloss.Renderer
}

// NewTerminal creates a terminal renderer. The color profile is forced
// to ANSI256: output always goes into the TUI, and auto-detection would
// produce uncolored output whenever stderr is not a terminal.
func NewTerminal(palette Palette) *Terminal {
	lipRenderer := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)
	return &Terminal{palette: palette, lipRenderer: lipRenderer}
}

// Render implements Renderer. Soft line breaks inside paragraphs become
// spaces so hard-wrapped source reflows at any width.
func (terminal *Terminal) Render(input string, width int) string {
	input = Sanitize(input)
	if strings.TrimSpace(input) == "" {
		return ""
	}
	source := []byte(input)
	document := parser().Parser().Parse(text.NewReader(source))

	walker := &walker{
		source:      source,
		palette:     terminal.palette,
		width:       width,
		lipRenderer: terminal.lipRenderer,
	}
	ast.Walk(document, walker.walk)
	return strings.TrimRight(walker.output.String(), "\n")
}

// Plain is a Renderer that shows text verbatim apart from sanitizing
// and wrapping. The workspace uses it for user-authored messages.
type Plain struct{}

// Render implements Renderer.
func (Plain) Render(input string, width int) string {
	input = strings.TrimRight(Sanitize(input), "\n")
	if width <= 0 {
		return input
	}
	return ansi.Wrap(input, width, " ,.;-+|")
}

// Sanitize strips terminal escape sequences and control characters,
// keeping newlines. CRLF and lone CR become LF; tabs become four spaces.
func Sanitize(input string) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")
	input = strings.ReplaceAll(input, "\t", "    ")
	input = ansi.Strip(input)
	return strings.Map(func(character rune) rune {
		if character == '\n' {
			return character
		}
		if unicode.IsControl(character) {
			return -1
		}
		return character
	}, input)
}

// stripHTMLTags keeps only the text outside angle-bracketed tags.
func stripHTMLTags(html string) string {
	var result strings.Builder
	inTag := false
	for _, character := range html {
		switch {
		case character == '<':
			inTag = true
		case character == '>':
			inTag = false
		case !inTag:
			result.WriteRune(character)
		}
	}
	return result.String()
}
