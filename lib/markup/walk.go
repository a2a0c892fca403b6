// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

// wrapBreakpoints are the characters ansi.Wrap may break a line after.
const wrapBreakpoints = " ,.;-+|"

// minimumContentWidth keeps deeply nested content from wrapping to
// nothing.
const minimumContentWidth = 10

// walker accumulates styled output during one AST walk. Inline content
// collects in inline until its block closes, then is wrapped as a unit
// and written to output with the current line prefixes.
type walker struct {
	source      []byte
	palette     Palette
	width       int
	lipRenderer *lipgloss.Renderer

	output strings.Builder
	inline strings.Builder

	// Nested block containers (blockquotes, list items) each push a
	// prefix. prefix is the concatenation; prefixWidth its visible width.
	prefixes    []prefixLevel
	prefix      string
	prefixWidth int

	// bullet, when set, replaces prefix for the next emitted line only.
	bullet string

	// Counters rather than booleans so nested emphasis unwinds
	// correctly.
	bold          int
	italic        int
	strikethrough int

	lists []listState

	trailingNewlines int
}

type prefixLevel struct {
	text  string
	width int
}

type listState struct {
	ordered bool
	counter int
	tight   bool
}

func (walker *walker) style() lipgloss.Style {
	return walker.lipRenderer.NewStyle()
}

func (walker *walker) faint() lipgloss.Style {
	return walker.style().Foreground(walker.palette.Faint)
}

func (walker *walker) contentWidth() int {
	return max(walker.width-walker.prefixWidth, minimumContentWidth)
}

func (walker *walker) pushPrefix(text string, width int) {
	walker.prefixes = append(walker.prefixes, prefixLevel{text: text, width: width})
	walker.prefix += text
	walker.prefixWidth += width
}

func (walker *walker) popPrefix() {
	if len(walker.prefixes) == 0 {
		return
	}
	top := walker.prefixes[len(walker.prefixes)-1]
	walker.prefixes = walker.prefixes[:len(walker.prefixes)-1]
	walker.prefix = walker.prefix[:len(walker.prefix)-len(top.text)]
	walker.prefixWidth -= top.width
}

func (walker *walker) inTightList() bool {
	return len(walker.lists) > 0 && walker.lists[len(walker.lists)-1].tight
}

// write appends to output and tracks how many newlines it ends with.
func (walker *walker) write(s string) {
	if s == "" {
		return
	}
	walker.output.WriteString(s)

	trimmed := strings.TrimRight(s, "\n")
	trailing := len(s) - len(trimmed)
	if trimmed == "" {
		walker.trailingNewlines += trailing
	} else {
		walker.trailingNewlines = trailing
	}
}

func (walker *walker) ensureNewline() {
	if walker.trailingNewlines < 1 {
		walker.write("\n")
	}
}

func (walker *walker) ensureBlankLine() {
	// Nothing written yet: no leading blank lines.
	if walker.output.Len() == 0 {
		return
	}
	for walker.trailingNewlines < 2 {
		walker.write("\n")
	}
}

func (walker *walker) takeLinePrefix() string {
	if walker.bullet != "" {
		bullet := walker.bullet
		walker.bullet = ""
		return bullet
	}
	return walker.prefix
}

// withPrefixes puts the line prefix (or pending bullet) in front of the
// first line and the plain prefix in front of every later line.
func (walker *walker) withPrefixes(content string) string {
	lines := strings.Split(content, "\n")
	var result strings.Builder
	for index, line := range lines {
		if index == 0 {
			result.WriteString(walker.takeLinePrefix())
		} else {
			result.WriteByte('\n')
			result.WriteString(walker.prefix)
		}
		result.WriteString(line)
	}
	return result.String()
}

func (walker *walker) flushInline() string {
	content := walker.inline.String()
	walker.inline.Reset()
	if content == "" {
		return ""
	}
	return walker.withPrefixes(ansi.Wrap(content, walker.contentWidth(), wrapBreakpoints))
}

func (walker *walker) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			walker.inline.Reset()
			break
		}
		if flushed := walker.flushInline(); flushed != "" {
			walker.write(flushed)
			walker.ensureNewline()
			if !walker.inTightList() {
				walker.ensureBlankLine()
			}
		}

	case ast.KindHeading:
		if entering {
			walker.inline.Reset()
		} else {
			walker.leaveHeading(node.(*ast.Heading))
		}

	case ast.KindFencedCodeBlock:
		if entering {
			block := node.(*ast.FencedCodeBlock)
			walker.writeCode(walker.highlight(walker.lines(block), string(block.Language(walker.source))))
		}
		return ast.WalkSkipChildren, nil

	case ast.KindCodeBlock:
		if entering {
			walker.writeCode(walker.faint().Render(walker.lines(node)))
		}
		return ast.WalkSkipChildren, nil

	case ast.KindBlockquote:
		if entering {
			walker.pushPrefix("│ ", 2)
		} else {
			walker.popPrefix()
			walker.ensureBlankLine()
		}

	case ast.KindList:
		if entering {
			walker.enterList(node.(*ast.List))
		} else {
			walker.leaveList()
		}

	case ast.KindListItem:
		if entering {
			walker.enterListItem()
		} else {
			walker.leaveListItem()
		}

	case ast.KindThematicBreak:
		if entering {
			rule := walker.style().Foreground(walker.palette.Border).Render(strings.Repeat("─", walker.contentWidth()))
			walker.ensureBlankLine()
			walker.write(walker.withPrefixes(rule))
			walker.ensureNewline()
			walker.ensureBlankLine()
		}

	case ast.KindHTMLBlock:
		if entering {
			if stripped := strings.TrimSpace(stripHTMLTags(walker.lines(node))); stripped != "" {
				walker.write(walker.withPrefixes(walker.faint().Render(stripped)))
				walker.ensureNewline()
				walker.ensureBlankLine()
			}
		}
		return ast.WalkSkipChildren, nil

	case ast.KindText:
		if entering {
			walker.text(node.(*ast.Text))
		}

	case ast.KindString:
		if entering {
			walker.inline.WriteString(walker.styled(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		walker.emphasis(node.(*ast.Emphasis), entering)

	case ast.KindCodeSpan:
		if entering {
			walker.codeSpan(node)
		}
		return ast.WalkSkipChildren, nil

	case ast.KindLink:
		if entering {
			link := node.(*ast.Link)
			walker.inline.WriteString(walker.collectInline(link))
			walker.destination(string(link.Destination))
		}
		return ast.WalkSkipChildren, nil

	case ast.KindAutoLink:
		if entering {
			walker.inline.WriteString(walker.faint().Render(string(node.(*ast.AutoLink).URL(walker.source))))
		}
		return ast.WalkSkipChildren, nil

	case ast.KindImage:
		if entering {
			image := node.(*ast.Image)
			walker.inline.WriteString(walker.faint().Render("[" + ansi.Strip(walker.collectInline(image)) + "]"))
			walker.destination(string(image.Destination))
		}
		return ast.WalkSkipChildren, nil

	case ast.KindRawHTML:
		if entering {
			walker.rawHTML(node.(*ast.RawHTML))
		}
		return ast.WalkSkipChildren, nil

	case extast.KindStrikethrough:
		if entering {
			walker.strikethrough++
		} else {
			walker.strikethrough--
		}

	case extast.KindTable:
		if entering {
			walker.table(node.(*extast.Table))
		}
		return ast.WalkSkipChildren, nil

	case extast.KindTaskCheckBox:
		if entering {
			if node.(*extast.TaskCheckBox).IsChecked {
				walker.inline.WriteString(walker.style().Foreground(walker.palette.Accent).Render("[x]") + " ")
			} else {
				walker.inline.WriteString(walker.styled("[ ] "))
			}
		}

	case extast.KindDefinitionTerm:
		if entering {
			walker.inline.Reset()
			break
		}
		content := ansi.Strip(walker.inline.String())
		walker.inline.Reset()
		if content != "" {
			term := walker.style().Foreground(walker.palette.Text).Bold(true)
			walker.write(walker.withPrefixes(term.Render(content)))
			walker.ensureNewline()
		}

	case extast.KindDefinitionDescription:
		if entering {
			walker.pushPrefix("  ", 2)
		} else {
			walker.popPrefix()
		}
	}

	return ast.WalkContinue, nil
}

// lines joins the raw source lines of a block node.
func (walker *walker) lines(node ast.Node) string {
	var content strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		content.Write(segment.Value(walker.source))
	}
	return content.String()
}

func (walker *walker) leaveHeading(heading *ast.Heading) {
	content := ansi.Strip(walker.inline.String())
	walker.inline.Reset()
	if content == "" {
		return
	}

	style := walker.style().Bold(true).Foreground(walker.palette.Text)
	if heading.Level <= 2 {
		style = style.Foreground(walker.palette.Heading)
	}
	walker.ensureBlankLine()
	walker.write(walker.withPrefixes(ansi.Wrap(style.Render(content), walker.contentWidth(), wrapBreakpoints)))
	walker.ensureNewline()
	walker.ensureBlankLine()
}

// highlight returns chroma-highlighted code, or faint plain code when
// the language is unknown or unset.
func (walker *walker) highlight(code, language string) string {
	if language != "" {
		var buffer strings.Builder
		if err := quick.Highlight(&buffer, code, language, "terminal256", CodeStyle); err == nil {
			return buffer.String()
		}
	}
	return walker.faint().Render(code)
}

// writeCode writes a preformatted block line by line. Code is never
// reflowed.
func (walker *walker) writeCode(code string) {
	walker.ensureBlankLine()
	for _, line := range strings.Split(strings.TrimRight(code, "\n"), "\n") {
		walker.write(walker.takeLinePrefix() + line)
		walker.ensureNewline()
	}
	walker.ensureBlankLine()
}

func (walker *walker) enterList(list *ast.List) {
	state := listState{ordered: list.IsOrdered(), tight: list.IsTight}
	if state.ordered {
		state.counter = list.Start
	}
	walker.lists = append(walker.lists, state)
}

func (walker *walker) leaveList() {
	if len(walker.lists) > 0 {
		walker.lists = walker.lists[:len(walker.lists)-1]
	}
	if !walker.inTightList() {
		walker.ensureBlankLine()
	}
}

func (walker *walker) enterListItem() {
	if len(walker.lists) == 0 {
		return
	}
	top := &walker.lists[len(walker.lists)-1]

	bullet := "- "
	if top.ordered {
		bullet = fmt.Sprintf("%d. ", top.counter)
		top.counter++
	}
	// Bullets are ASCII, so byte length is visible width.
	walker.bullet = walker.prefix + bullet
	walker.pushPrefix(strings.Repeat(" ", len(bullet)), len(bullet))
}

func (walker *walker) leaveListItem() {
	walker.popPrefix()
	if walker.inTightList() {
		walker.ensureNewline()
	} else {
		walker.ensureBlankLine()
	}
}
