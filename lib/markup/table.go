// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
)

const (
	columnSeparator    = "  "
	minimumColumnWidth = 3
)

func (walker *walker) table(table *extast.Table) {
	var header []string
	var rows [][]string
	for child := table.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.Kind() {
		case extast.KindTableHeader:
			header = walker.tableRow(child)
		case extast.KindTableRow:
			rows = append(rows, walker.tableRow(child))
		}
	}

	columns := len(header)
	if columns == 0 && len(rows) > 0 {
		columns = len(rows[0])
	}
	if columns == 0 {
		return
	}
	widths := walker.columnWidths(columns, append([][]string{header}, rows...))

	walker.ensureBlankLine()
	if len(header) > 0 {
		bold := walker.style().Bold(true).Foreground(walker.palette.Text)
		walker.write(walker.takeLinePrefix() + formatRow(header, widths, table.Alignments, bold))
		walker.ensureNewline()

		rules := make([]string, len(widths))
		for index, width := range widths {
			rules[index] = strings.Repeat("─", width)
		}
		border := walker.style().Foreground(walker.palette.Border)
		walker.write(walker.prefix + border.Render(strings.Join(rules, columnSeparator)))
		walker.ensureNewline()
	}
	for _, row := range rows {
		walker.write(walker.prefix + formatRow(row, widths, table.Alignments, walker.style()))
		walker.ensureNewline()
	}
	walker.ensureBlankLine()
}

func (walker *walker) tableRow(row ast.Node) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if cell.Kind() == extast.KindTableCell {
			cells = append(cells, walker.collectInline(cell))
		}
	}
	return cells
}

// columnWidths sizes each column to its widest cell, shrinking all
// columns proportionally when the table would overflow the content
// width.
func (walker *walker) columnWidths(columns int, rows [][]string) []int {
	widths := make([]int, columns)
	for _, row := range rows {
		for index, cell := range row {
			if index < columns {
				widths[index] = max(widths[index], lipgloss.Width(cell))
			}
		}
	}

	separators := len(columnSeparator) * (columns - 1)
	total := separators
	for _, width := range widths {
		total += width
	}
	available := walker.contentWidth()
	if total <= available {
		return widths
	}

	usable := max(available-separators, columns*minimumColumnWidth)
	for index := range widths {
		widths[index] = max(widths[index]*usable/total, minimumColumnWidth)
	}
	return widths
}

func formatRow(cells []string, widths []int, alignments []extast.Alignment, style lipgloss.Style) string {
	parts := make([]string, len(widths))
	for index, width := range widths {
		var cell string
		if index < len(cells) {
			cell = cells[index]
		}
		if lipgloss.Width(cell) > width {
			cell = ansi.Truncate(cell, width, "…")
		}
		padding := max(width-lipgloss.Width(cell), 0)

		alignment := extast.AlignNone
		if index < len(alignments) {
			alignment = alignments[index]
		}
		switch alignment {
		case extast.AlignRight:
			cell = strings.Repeat(" ", padding) + cell
		case extast.AlignCenter:
			left := padding / 2
			cell = strings.Repeat(" ", left) + cell + strings.Repeat(" ", padding-left)
		default:
			cell += strings.Repeat(" ", padding)
		}
		parts[index] = cell
	}
	return style.Render(strings.Join(parts, columnSeparator))
}
