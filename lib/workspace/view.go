// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/docdesk/lib/chat"
	"github.com/bureau-foundation/docdesk/lib/tui"
)

// toolbarAction is a clickable control in the document toolbar.
type toolbarAction int

const (
	actionZoomOut toolbarAction = iota + 1
	actionZoomIn
	actionPreviousPage
	actionNextPage
	actionSearch
	actionFullScreen
	actionOpen
)

// toolbarHit maps a horizontal span of the header row to an action.
type toolbarHit struct {
	startX int // Inclusive.
	endX   int // Exclusive.
	action toolbarAction
}

// leftWidth returns the document pane width, including its scrollbar.
func (model Model) leftWidth() int {
	if model.fullScreen {
		return model.screen.width
	}
	return min(model.split.Width(), model.screen.width)
}

// rightWidth returns the chat pane width, including its scrollbar.
func (model Model) rightWidth() int {
	if model.fullScreen {
		return 0
	}
	return max(model.screen.width-model.leftWidth()-1, 0)
}

// contentHeight returns the rows between the header and the separator.
func (model Model) contentHeight() int {
	return max(model.screen.height-chromeRows, 1)
}

func (model Model) documentContentWidth() int {
	return max(model.leftWidth()-1, 1)
}

// setViewportSizes applies the current geometry to both viewports.
func (model *Model) setViewportSizes() {
	height := model.contentHeight()
	model.documentView.Width = model.documentContentWidth()
	model.documentView.Height = height
	model.transcriptView.Width = max(model.rightWidth()-1, 1)
	model.transcriptView.Height = max(height-chatFooterRows, 1)
}

// resizePanes re-renders both panes for the current geometry. Search
// positions are left alone; it runs on every drag motion.
func (model *Model) resizePanes() {
	model.setViewportSizes()
	model.refreshDocument()
	model.refreshTranscript()
}

// resize is resizePanes plus a search rescan.
func (model *Model) resize() {
	model.setViewportSizes()
	model.recomputeSearch()
	model.refreshDocument()
	model.refreshTranscript()
}

// refreshDocument renders the current page into the document viewport.
func (model *Model) refreshDocument() {
	if _, ok := model.viewer.Source(); !ok {
		model.documentView.SetContent("")
		return
	}
	body := model.viewer.Render(model.documentContentWidth())
	model.documentView.SetContent(model.search.highlight(body, model.viewer.Page(), model.theme))
}

// refreshTranscript renders the conversation into the transcript
// viewport. New messages scroll it to the bottom; otherwise the reading
// position is kept.
func (model *Model) refreshTranscript() {
	model.transcriptView.SetContent(model.renderTranscript(model.transcriptView.Width))
	if count := model.chat.Len(); count != model.transcriptLength {
		model.transcriptLength = count
		model.transcriptView.GotoBottom()
	}
}

// transcriptCache holds the rendered block of every message for one
// pane width. Messages never change once appended, so only new ones
// are rendered until the width changes.
type transcriptCache struct {
	width  int
	blocks []string
}

func (model Model) renderTranscript(width int) string {
	messages := model.chat.Transcript()
	if len(messages) == 0 {
		faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
		return faint.Render(ansi.Wrap("Open a document with Ctrl+O, then ask about it here.", width, ""))
	}

	cache := model.transcript
	if cache.width != width || len(cache.blocks) > len(messages) {
		cache.width = width
		cache.blocks = cache.blocks[:0]
	}
	for _, message := range messages[len(cache.blocks):] {
		cache.blocks = append(cache.blocks, model.renderMessage(message, width))
	}
	return strings.Join(cache.blocks, "\n\n")
}

// renderMessage draws one transcript entry: a label and time header
// over the body, indented two columns.
func (model Model) renderMessage(message chat.Message, width int) string {
	labelColor := model.theme.AssistantLabel
	if message.Sender == chat.User {
		labelColor = model.theme.UserLabel
	}
	body := model.markup.Render(message.Text, max(width-2, 1))
	header := lipgloss.NewStyle().Bold(true).Foreground(labelColor).Render(message.Sender.Label()+":") +
		"  " + lipgloss.NewStyle().Foreground(model.theme.Timestamp).Render(message.At.Format("15:04"))
	return header + "\n" + indent(body, "  ")
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for index, line := range lines {
		if line != "" {
			lines[index] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// fitWidth truncates or pads a styled line to exactly width columns.
func fitWidth(line string, width int) string {
	if width <= 0 {
		return ""
	}
	line = ansi.Truncate(line, width, "…")
	if gap := width - ansi.StringWidth(line); gap > 0 {
		line += strings.Repeat(" ", gap)
	}
	return line
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	height := model.contentHeight()
	content := model.renderDocumentPane(model.leftWidth(), height)
	if !model.fullScreen {
		panes := []string{content, model.renderDivider(height)}
		if right := model.rightWidth(); right > 0 {
			panes = append(panes, model.renderChatPane(right, height))
		}
		content = lipgloss.JoinHorizontal(lipgloss.Top, panes...)
	}

	separator := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.screen.width))

	output := strings.Join([]string{model.renderHeader(), content, separator, model.renderStatus()}, "\n")

	if model.prompt != nil {
		lines, anchorX, anchorY := model.prompt.Render(model.screen.width, model.screen.height)
		output = tui.SpliceOverlay(output, lines, anchorX, anchorY)
	}
	return output
}

// toolbar renders the document toolbar and reports where each control
// landed.
func (model Model) toolbar() (string, []toolbarHit) {
	type segment struct {
		text   string
		action toolbarAction
	}
	percent := int(math.Round(model.viewer.Scale() * 100))
	segments := []segment{
		{" ", 0},
		{"[-]", actionZoomOut},
		{fmt.Sprintf(" %d%% ", percent), 0},
		{"[+]", actionZoomIn},
		{"  ", 0},
		{"[<]", actionPreviousPage},
		{fmt.Sprintf(" %d/%d ", model.viewer.Page(), model.viewer.PageCount()), 0},
		{"[>]", actionNextPage},
		{"  ", 0},
		{"[/]", actionSearch},
		{" ", 0},
		{"[F]", actionFullScreen},
		{" ", 0},
		{"[O]", actionOpen},
		{"  ", 0},
	}

	buttonStyle := lipgloss.NewStyle().Foreground(model.theme.Accent)
	textStyle := lipgloss.NewStyle().Foreground(model.theme.HeaderForeground)

	var builder strings.Builder
	var hits []toolbarHit
	x := 0
	for _, part := range segments {
		width := ansi.StringWidth(part.text)
		if part.action != 0 {
			hits = append(hits, toolbarHit{startX: x, endX: x + width, action: part.action})
			builder.WriteString(buttonStyle.Render(part.text))
		} else {
			builder.WriteString(textStyle.Render(part.text))
		}
		x += width
	}

	if source, ok := model.viewer.Source(); ok {
		builder.WriteString(lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render(source.Name))
		builder.WriteString(lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(" " + source.ShortDigest()))
	}
	return builder.String(), hits
}

func (model Model) renderHeader() string {
	toolbar, _ := model.toolbar()
	if model.fullScreen {
		return fitWidth(toolbar, model.screen.width)
	}

	header := fitWidth(toolbar, model.leftWidth()) +
		lipgloss.NewStyle().Foreground(model.theme.BorderColor).Render("│")
	if right := model.rightWidth(); right > 0 {
		title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render(" " + chatTitle)
		state := lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("  " + sessionLabel(model.chat.State()))
		header += fitWidth(title+state, right)
	}
	return header
}

func sessionLabel(state chat.State) string {
	switch state {
	case chat.Uploading:
		return "processing"
	case chat.SessionActive:
		return "ready"
	default:
		return "no document"
	}
}

func (model Model) renderDocumentPane(width, height int) string {
	contentWidth := max(width-1, 0)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var body string
	source, loaded := model.viewer.Source()
	switch {
	case !loaded:
		body = lipgloss.Place(contentWidth, height, lipgloss.Center, lipgloss.Center,
			faint.Render(noDocumentPlaceholder))
	case model.viewer.PageCount() == 0:
		message := "No text could be extracted from " + source.Name
		if reporter, ok := model.viewer.(interface{ LoadError() error }); ok && reporter.LoadError() != nil {
			message = "Preview unavailable: " + reporter.LoadError().Error()
		}
		body = lipgloss.Place(contentWidth, height, lipgloss.Center, lipgloss.Center,
			faint.Render(ansi.Wrap(message, max(contentWidth-4, 1), "")))
	default:
		body = model.documentView.View()
	}
	body = lipgloss.NewStyle().Width(contentWidth).Height(height).MaxHeight(height).Render(body)

	focused := model.focus == FocusDocument || model.focus == FocusSearch
	scrollbar := tui.RenderScrollbar(model.theme, height,
		model.documentView.TotalLineCount(), model.documentView.Height, model.documentView.YOffset, focused)
	return lipgloss.JoinHorizontal(lipgloss.Top, body, scrollbar)
}

// renderDivider draws the one-column divider, highlighted while it is
// being dragged.
func (model Model) renderDivider(height int) string {
	color := model.theme.BorderColor
	if model.split.Dragging() {
		color = model.theme.Accent
	}
	lines := make([]string, height)
	for index := range lines {
		lines[index] = "│"
	}
	return lipgloss.NewStyle().Foreground(color).Width(1).Height(height).Render(strings.Join(lines, "\n"))
}

func (model Model) renderChatPane(width, height int) string {
	transcriptHeight := max(height-chatFooterRows, 1)
	contentWidth := max(width-1, 0)

	transcript := lipgloss.NewStyle().
		Width(contentWidth).
		Height(transcriptHeight).
		MaxHeight(transcriptHeight).
		Render(model.transcriptView.View())
	scrollbar := tui.RenderScrollbar(model.theme, transcriptHeight,
		model.transcriptView.TotalLineCount(), model.transcriptView.Height, model.transcriptView.YOffset,
		model.focus == FocusChat)

	notice := model.chat.Notice()
	if notice == "" && model.chat.AwaitingAnswer() {
		notice = "Waiting for an answer..."
	}
	noticeLine := fitWidth(lipgloss.NewStyle().Italic(true).Foreground(model.theme.Notice).Render(" "+notice), width)

	marker := lipgloss.NewStyle().Foreground(model.theme.Accent).Render("› ")
	composer := fitWidth(marker+model.composer.View(model.theme, max(width-2, 1), model.focus == FocusChat), width)

	return strings.Join([]string{
		lipgloss.JoinHorizontal(lipgloss.Top, transcript, scrollbar),
		noticeLine,
		composer,
	}, "\n")
}

func (model Model) renderStatus() string {
	width := model.screen.width

	if model.focus == FocusSearch || model.search.query() != "" {
		inputWidth := max(min(40, width-24), 8)
		line := lipgloss.NewStyle().Foreground(model.theme.Accent).Render(" / ") +
			model.search.input.View(model.theme, inputWidth, model.focus == FocusSearch)
		count := len(model.search.hits)
		summary := "  no matches"
		if count > 0 {
			summary = fmt.Sprintf("  %d/%d", model.search.current+1, count)
			if model.search.fuzzy {
				summary += " fuzzy"
			}
		}
		line += lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(summary)
		return fitWidth(line, width)
	}

	if model.status != "" {
		color := model.theme.Notice
		if model.statusLevel >= slog.LevelError {
			color = model.theme.ErrorText
		}
		return fitWidth(lipgloss.NewStyle().Foreground(color).Render(" "+model.status), width)
	}

	var help string
	switch model.focus {
	case FocusChat:
		help = "Enter send  Tab document  ↑↓ scroll  C-o open  C-c quit"
	case FocusPrompt:
		help = "Enter confirm  Esc cancel"
	default:
		help = "C-o open  Tab chat  ]/[ resize  +/- zoom  h/l page  / search  f full  q quit"
	}
	line := fmt.Sprintf(" [%s] ", model.focus)
	if label := failureLabel(model.chat.LastFailure()); label != "" {
		line += lipgloss.NewStyle().Foreground(model.theme.ErrorText).Render("! "+label) + "  "
	}
	line += lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(help)
	return fitWidth(line, width)
}

// failureLabel names the most recent failed operation for the status
// line. A later success clears it.
func failureLabel(failure chat.Failure) string {
	switch failure {
	case chat.UploadFailed:
		return "upload failed"
	case chat.QuerySessionExpired:
		return "session expired"
	case chat.QueryFailed:
		return "query failed"
	default:
		return ""
	}
}
