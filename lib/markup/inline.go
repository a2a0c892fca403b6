// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"strings"

	"github.com/yuin/goldmark/ast"
)

// styled applies the current emphasis state to content.
func (walker *walker) styled(content string) string {
	style := walker.style().Foreground(walker.palette.Text)
	if walker.bold > 0 {
		style = style.Bold(true)
	}
	if walker.italic > 0 {
		style = style.Italic(true)
	}
	if walker.strikethrough > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

func (walker *walker) text(node *ast.Text) {
	walker.inline.WriteString(walker.styled(string(node.Segment.Value(walker.source))))
	switch {
	case node.HardLineBreak():
		walker.inline.WriteString("\n")
	case node.SoftLineBreak():
		walker.inline.WriteString(" ")
	}
}

func (walker *walker) emphasis(node *ast.Emphasis, entering bool) {
	counter := &walker.italic
	if node.Level >= 2 {
		counter = &walker.bold
	}
	if entering {
		*counter++
	} else {
		*counter--
	}
}

func (walker *walker) codeSpan(node ast.Node) {
	var code strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch child := child.(type) {
		case *ast.Text:
			code.Write(child.Segment.Value(walker.source))
		case *ast.String:
			code.Write(child.Value)
		}
	}
	walker.inline.WriteString(walker.faint().Render(code.String()))
}

// destination appends a link or image target as faint text. Targets are
// shown, never made clickable.
func (walker *walker) destination(target string) {
	if target == "" {
		return
	}
	walker.inline.WriteString(" " + walker.faint().Render("("+target+")"))
}

func (walker *walker) rawHTML(node *ast.RawHTML) {
	var html strings.Builder
	for index := 0; index < node.Segments.Len(); index++ {
		segment := node.Segments.At(index)
		html.Write(segment.Value(walker.source))
	}
	if stripped := stripHTMLTags(html.String()); stripped != "" {
		walker.inline.WriteString(walker.faint().Render(stripped))
	}
}

// collectInline renders the children of node into a string without
// disturbing the caller's inline buffer or emphasis state.
func (walker *walker) collectInline(node ast.Node) string {
	saved := walker.inline.String()
	bold, italic, strikethrough := walker.bold, walker.italic, walker.strikethrough

	walker.inline.Reset()
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		ast.Walk(child, walker.walk)
	}
	result := walker.inline.String()

	walker.inline.Reset()
	walker.inline.WriteString(saved)
	walker.bold, walker.italic, walker.strikethrough = bold, italic, strikethrough
	return result
}
