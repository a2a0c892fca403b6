// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

var testTerminal = NewTerminal(DefaultPalette)

// stripped renders markdown and returns the visible text.
func stripped(input string, width int) string {
	return ansi.Strip(testTerminal.Render(input, width))
}

func raw(input string, width int) string {
	return testTerminal.Render(input, width)
}

func TestRenderEmpty(t *testing.T) {
	for _, input := range []string{"", "  \n\n", "\x1b[31m\x1b[0m"} {
		if result := raw(input, 80); result != "" {
			t.Errorf("Render(%q): expected empty output, got %q", input, result)
		}
	}
}

func TestRenderParagraphReflow(t *testing.T) {
	input := "This is a paragraph that was\nwritten at a narrow width with\nhard line breaks embedded in it."
	result := stripped(input, 120)

	if strings.Contains(result, "\n") {
		t.Errorf("expected a single line at width 120, got:\n%s", result)
	}
	if !strings.Contains(result, "was written at") {
		t.Errorf("expected soft break converted to space, got:\n%s", result)
	}
}

func TestRenderParagraphWrapsToWidth(t *testing.T) {
	input := "The quarterly revenue grew by twelve percent while operating costs stayed flat."
	for _, line := range strings.Split(stripped(input, 30), "\n") {
		if ansi.StringWidth(line) > 30 {
			t.Errorf("line exceeds width 30: %q", line)
		}
	}
}

func TestRenderHardLineBreak(t *testing.T) {
	result := stripped("Line one  \nLine two", 80)
	if !strings.Contains(result, "Line one\nLine two") {
		t.Errorf("expected hard line break preserved, got:\n%s", result)
	}
}

func TestRenderHeadingHasNoLeadingBlankLines(t *testing.T) {
	result := stripped("# Summary\n\nThe answer is 42.", 80)
	if !strings.HasPrefix(result, "Summary\n\nThe answer is 42.") {
		t.Errorf("unexpected heading layout:\n%q", result)
	}
	if raw("# Summary", 80) == "Summary" {
		t.Error("expected ANSI styling on heading")
	}
}

func TestRenderEmphasis(t *testing.T) {
	input := "This is *italic* and **bold** and ~~gone~~."
	result := stripped(input, 80)
	if result != "This is italic and bold and gone." {
		t.Errorf("visible text: got %q", result)
	}
	if raw(input, 80) == result {
		t.Error("expected ANSI styling for emphasis")
	}
}

func TestRenderFencedCode(t *testing.T) {
	input := "Before.\n\n```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```\n\nAfter."
	result := stripped(input, 80)
	for _, want := range []string{"Before.", "func main() {", "println", "After."} {
		if !strings.Contains(result, want) {
			t.Errorf("missing %q in:\n%s", want, result)
		}
	}
	if !strings.Contains(raw("```go\npackage main\n```", 80), "\x1b[") {
		t.Error("expected ANSI escapes from syntax highlighting")
	}
}

func TestRenderCodeNotReflowed(t *testing.T) {
	result := stripped("```\nshort\nlines\nhere\n```", 80)
	if !strings.Contains(result, "short\nlines\nhere") {
		t.Errorf("expected code lines preserved, got:\n%s", result)
	}
}

func TestRenderBlockquote(t *testing.T) {
	input := "> A long quoted paragraph that\n> was written at a narrow width."
	for _, line := range strings.Split(stripped(input, 80), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "│") {
			t.Errorf("expected quote prefix on every line, got %q", line)
		}
	}
}

func TestRenderLists(t *testing.T) {
	result := stripped("- Item one\n- Item two\n\n1. First\n2. Second", 80)
	for _, want := range []string{"- Item one", "- Item two", "1. First", "2. Second"} {
		if !strings.Contains(result, want) {
			t.Errorf("missing %q in:\n%s", want, result)
		}
	}
}

func TestRenderNestedListIndents(t *testing.T) {
	result := stripped("- Outer\n  - Inner\n- Outer two", 80)

	var outerIndent, innerIndent int
	for _, line := range strings.Split(result, "\n") {
		indent := len(line) - len(strings.TrimLeft(line, " "))
		switch {
		case strings.Contains(line, "Inner"):
			innerIndent = indent
		case strings.Contains(line, "Outer") && !strings.Contains(line, "two"):
			outerIndent = indent
		}
	}
	if innerIndent <= outerIndent {
		t.Errorf("inner list not indented: outer=%d inner=%d", outerIndent, innerIndent)
	}
}

func TestRenderTable(t *testing.T) {
	result := stripped("| Name | Pages |\n|------|------:|\n| Intro | 3 |\n| Methods | 12 |", 80)
	for _, want := range []string{"Name", "Pages", "Intro", "Methods", "───"} {
		if !strings.Contains(result, want) {
			t.Errorf("missing %q in:\n%s", want, result)
		}
	}
}

func TestRenderTableShrinksToWidth(t *testing.T) {
	input := "| " + strings.Repeat("a", 40) + " | " + strings.Repeat("b", 40) + " |\n|---|---|\n| x | y |"
	for _, line := range strings.Split(stripped(input, 30), "\n") {
		if ansi.StringWidth(line) > 30 {
			t.Errorf("table line exceeds width 30: %q", line)
		}
	}
}

func TestRenderLinksShowDestination(t *testing.T) {
	result := stripped("See [the report](https://example.com/r) and ![chart](c.png).", 80)
	for _, want := range []string{"the report", "(https://example.com/r)", "[chart]", "(c.png)"} {
		if !strings.Contains(result, want) {
			t.Errorf("missing %q in:\n%s", want, result)
		}
	}
}

func TestRenderNeverEmitsHyperlinks(t *testing.T) {
	for _, input := range []string{
		"[click](https://example.com)",
		"<https://example.com>",
		"https://example.com",
		"\x1b]8;;https://evil.example\x07click\x1b]8;;\x07",
	} {
		result := raw(input, 80)
		if strings.Contains(result, "\x1b]") {
			t.Errorf("Render(%q) emitted an OSC sequence: %q", input, result)
		}
	}
}

func TestRenderStripsInputEscapes(t *testing.T) {
	input := "\x1b[2J\x1b[31mred\x1b[0m text\x07 with\x08 controls"
	result := raw(input, 80)

	for _, forbidden := range []string{"\x1b[2J", "\x1b[31m", "\x07", "\x08"} {
		if strings.Contains(result, forbidden) {
			t.Errorf("output contains %q: %q", forbidden, result)
		}
	}
	if got := ansi.Strip(result); got != "red text with controls" {
		t.Errorf("visible text: got %q", got)
	}
}

func TestRenderReducesHTMLToText(t *testing.T) {
	result := stripped("<div><script>alert(1)</script></div>\n\nInline <b>bold</b> tag.", 80)
	if strings.Contains(result, "<") || strings.Contains(result, ">") {
		t.Errorf("HTML tags survived:\n%s", result)
	}
	if !strings.Contains(result, "alert(1)") || !strings.Contains(result, "bold") {
		t.Errorf("HTML text content lost:\n%s", result)
	}
}

func TestPlainRenderer(t *testing.T) {
	result := Plain{}.Render("**not bold**\x1b[31m\r\nnext", 80)
	if result != "**not bold**\nnext" {
		t.Errorf("got %q", result)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"tab\tand\nnewline", "tab    and\nnewline"},
		{"crlf\r\nline", "crlf\nline"},
		{"\x1b[1mbold\x1b[0m", "bold"},
		{"bell\x07", "bell"},
	}
	for _, test := range tests {
		if got := Sanitize(test.input); got != test.want {
			t.Errorf("Sanitize(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestStripHTMLTags(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>hello</p>", "hello"},
		{"no tags", "no tags"},
		{"<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"<br/>", ""},
		{"", ""},
	}
	for _, test := range tests {
		if got := stripHTMLTags(test.input); got != test.want {
			t.Errorf("stripHTMLTags(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}
