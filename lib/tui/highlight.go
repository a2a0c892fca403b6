// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/junegunn/fzf/src/util"
)

// backgroundOff restores the default background.
const backgroundOff = "\x1b[49m"

// Match locates one highlighted occurrence in a body of text.
type Match struct {
	Line   int // 0-based line in the body.
	Column int // Rune position in the line's visible text.
}

// lineSpan is a half-open range of rune positions in one line's visible
// text, tagged with the body-wide index of the match it belongs to.
type lineSpan struct {
	start int
	end   int
	match int
}

// HighlightSubstring tints every case-insensitive occurrence of query
// in an ANSI-styled body. Existing foreground styling is kept; only the
// background changes. The match with index current gets the brighter
// current-match tint; pass -1 for none.
func HighlightSubstring(body, query string, current int, theme Theme) (string, []Match) {
	if query == "" {
		return body, nil
	}
	needle := []rune(strings.ToLower(query))

	lines := strings.Split(body, "\n")
	var matches []Match
	for lineNumber, line := range lines {
		visible := []rune(strings.ToLower(ansi.Strip(line)))

		var spans []lineSpan
		for from := 0; ; {
			index := runeIndex(visible[from:], needle)
			if index < 0 {
				break
			}
			start := from + index
			spans = append(spans, lineSpan{start: start, end: start + len(needle), match: len(matches)})
			matches = append(matches, Match{Line: lineNumber, Column: start})
			from = start + len(needle)
		}
		if len(spans) > 0 {
			lines[lineNumber] = spliceHighlights(line, spans, current, theme)
		}
	}
	return strings.Join(lines, "\n"), matches
}

// HighlightFuzzy tints, on every line that fuzzily matches pattern, the
// characters fzf aligned with the pattern. Each matching line counts as
// one match.
func HighlightFuzzy(body string, pattern []rune, current int, theme Theme, slab *util.Slab) (string, []Match) {
	if len(pattern) == 0 {
		return body, nil
	}

	lines := strings.Split(body, "\n")
	var matches []Match
	for lineNumber, line := range lines {
		result := FuzzyMatch(ansi.Strip(line), pattern, slab)
		if result.Score <= 0 || len(result.Positions) == 0 {
			continue
		}
		matchIndex := len(matches)
		matches = append(matches, Match{Line: lineNumber, Column: result.Positions[0]})
		lines[lineNumber] = spliceHighlights(line, positionSpans(result.Positions, matchIndex), current, theme)
	}
	return strings.Join(lines, "\n"), matches
}

// positionSpans merges ascending rune positions into contiguous spans.
func positionSpans(positions []int, matchIndex int) []lineSpan {
	var spans []lineSpan
	for _, position := range positions {
		if count := len(spans); count > 0 && spans[count-1].end == position {
			spans[count-1].end++
			continue
		}
		spans = append(spans, lineSpan{start: position, end: position + 1, match: matchIndex})
	}
	return spans
}

// spliceHighlights walks an ANSI-styled line with DecodeSequence,
// counting visible runes, and inserts background escapes around the
// given spans. Styled fragments often end in a full SGR reset, so the
// background is re-asserted after every escape inside a span.
func spliceHighlights(line string, spans []lineSpan, current int, theme Theme) string {
	highlightOn := ansiBackground(theme.SearchHighlightBackground)
	currentOn := ansiBackground(theme.SearchCurrentBackground)

	var result strings.Builder
	result.Grow(len(line) + len(spans)*24)

	position := 0
	pointer := 0
	active := ""

	var state byte
	remaining := line
	for len(remaining) > 0 {
		sequence, width, byteCount, newState := ansi.DecodeSequence(remaining, state, nil)
		state = newState
		remaining = remaining[byteCount:]

		if width == 0 {
			result.WriteString(sequence)
			if active != "" {
				result.WriteString(active)
			}
			continue
		}

		if active != "" && pointer < len(spans) && position >= spans[pointer].end {
			result.WriteString(backgroundOff)
			active = ""
			pointer++
		}
		if active == "" && pointer < len(spans) && position >= spans[pointer].start {
			active = highlightOn
			if spans[pointer].match == current {
				active = currentOn
			}
			result.WriteString(active)
		}

		result.WriteString(sequence)
		position += utf8.RuneCountInString(sequence)
	}
	if active != "" {
		result.WriteString(backgroundOff)
	}
	return result.String()
}

// runeIndex is strings.Index over rune slices.
func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
	for index := 0; index+len(needle) <= len(haystack); index++ {
		if slices.Equal(haystack[index:index+len(needle)], needle) {
			return index
		}
	}
	return -1
}

// ansiBackground returns the raw escape selecting a 256-color
// background. The color must be a numeric palette index.
func ansiBackground(color lipgloss.Color) string {
	return "\x1b[48;5;" + string(color) + "m"
}
