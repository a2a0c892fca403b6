// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/docdesk/lib/chat"
	"github.com/bureau-foundation/docdesk/lib/clock"
	"github.com/bureau-foundation/docdesk/lib/docqa"
	"github.com/bureau-foundation/docdesk/lib/document"
	"github.com/bureau-foundation/docdesk/lib/layout"
	"github.com/bureau-foundation/docdesk/lib/markup"
	"github.com/bureau-foundation/docdesk/lib/tui"
	"github.com/bureau-foundation/docdesk/lib/zoom"
)

// Focus identifies the component receiving keyboard input.
type Focus int

const (
	FocusDocument Focus = iota
	FocusChat
	FocusSearch
	FocusPrompt
)

// String returns the status bar label for the focus.
func (focus Focus) String() string {
	switch focus {
	case FocusDocument:
		return "DOC"
	case FocusChat:
		return "CHAT"
	case FocusSearch:
		return "SEARCH"
	case FocusPrompt:
		return "OPEN"
	default:
		return fmt.Sprintf("Focus(%d)", int(focus))
	}
}

// Modifier names the key that turns a wheel event over the document
// into a zoom gesture.
type Modifier string

const (
	ModifierShift Modifier = "shift"
	ModifierCtrl  Modifier = "ctrl"
	ModifierAlt   Modifier = "alt"
)

// ParseModifier validates a modifier name.
func ParseModifier(name string) (Modifier, error) {
	switch modifier := Modifier(name); modifier {
	case ModifierShift, ModifierCtrl, ModifierAlt:
		return modifier, nil
	default:
		return "", fmt.Errorf("unknown zoom modifier %q (want shift, ctrl or alt)", name)
	}
}

func (modifier Modifier) held(event tea.MouseMsg) bool {
	switch modifier {
	case ModifierCtrl:
		return event.Ctrl
	case ModifierAlt:
		return event.Alt
	default:
		return event.Shift
	}
}

// DefaultLayout is the split geometry in terminal columns.
var DefaultLayout = layout.Config{
	MinWidth:               24,
	InitialWidth:           60,
	DividerWidth:           1,
	FallbackContainerWidth: 80,
}

const (
	// doubleClickThreshold is the maximum interval between two clicks
	// on the divider to count as a double-click.
	doubleClickThreshold = 400 * time.Millisecond

	// wheelLines is how far one wheel notch scrolls a pane.
	wheelLines = 3

	// splitStep is how far [ and ] move the divider.
	splitStep = 4

	// chromeRows is the header row plus the separator and status rows.
	chromeRows = 3

	// chatFooterRows is the notice row plus the composer row.
	chatFooterRows = 2

	noDocumentPlaceholder = "Upload a PDF to preview"
	chatTitle             = "Chat Bot"
)

// Options configures a Model. Backend is required.
type Options struct {
	Backend chat.Backend

	// Viewer renders the document pane. Defaults to a TextViewer.
	Viewer document.Viewer

	// Renderer formats assistant answers. Defaults to the terminal
	// markdown renderer.
	Renderer markup.Renderer

	Theme  tui.Theme
	Keys   KeyMap
	Layout layout.Config
	Zoom   zoom.Config

	// ZoomModifier selects the wheel modifier that zooms. Defaults to
	// shift.
	ZoomModifier Modifier

	// RequestTimeout bounds each upload and query.
	RequestTimeout time.Duration

	// Document, when set, is opened and uploaded at startup.
	Document string

	Clock  clock.Clock
	Logger *slog.Logger

	// Context parents every backend request. Quitting the workspace
	// cancels requests still in flight.
	Context context.Context
}

// screenSize is shared between the model and the layout controller's
// container width function. The model is copied on every update; the
// pointer keeps the function reading the live size.
type screenSize struct {
	width  int
	height int
}

// Model is the bubbletea model of the document workspace: a document
// pane and a chat pane separated by a draggable divider.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
	clock  clock.Clock

	theme    tui.Theme
	keys     KeyMap
	timeout  time.Duration
	document string

	screen     *screenSize
	transcript *transcriptCache
	ready      bool

	split    *layout.SplitPane
	zoom     *zoom.Controller
	modifier Modifier
	chat     *chat.Controller
	viewer   document.Viewer
	markup   markup.Renderer

	focus      Focus
	priorFocus Focus // Restored when the prompt or search input closes.
	fullScreen bool

	documentView   viewport.Model
	transcriptView viewport.Model
	composer       tui.LineInput
	search         documentSearch
	prompt         *tui.PromptModal

	dragX            int       // Pointer X of the last drag event.
	lastDividerClick time.Time // For double-click detection.
	transcriptLength int       // Messages in the last rendered transcript.

	status       string
	statusLevel  slog.Level
	statusSerial uint64
}

// outcomeMsg delivers a finished backend request to the update loop.
type outcomeMsg struct {
	outcome chat.Outcome
}

// openDocumentMsg asks the update loop to open and upload a file.
type openDocumentMsg struct {
	path string
}

// NewModel creates a workspace model.
func NewModel(options Options) Model {
	if options.Viewer == nil {
		options.Viewer = document.NewTextViewer()
	}
	if options.Theme == (tui.Theme{}) {
		options.Theme = tui.DefaultTheme
	}
	if options.Renderer == nil {
		options.Renderer = markup.NewTerminal(options.Theme.MarkupPalette())
	}
	if options.Keys.Quit.Keys() == nil {
		options.Keys = DefaultKeyMap
	}
	if options.Layout.MinWidth <= 0 {
		options.Layout.MinWidth = DefaultLayout.MinWidth
	}
	if options.Layout.InitialWidth <= 0 {
		options.Layout.InitialWidth = DefaultLayout.InitialWidth
	}
	if options.Layout.FallbackContainerWidth <= 0 {
		options.Layout.FallbackContainerWidth = DefaultLayout.FallbackContainerWidth
	}
	// The divider is drawn as a single column.
	options.Layout.DividerWidth = DefaultLayout.DividerWidth
	if options.ZoomModifier == "" {
		options.ZoomModifier = ModifierShift
	}
	if options.RequestTimeout <= 0 {
		options.RequestTimeout = docqa.DefaultTimeout
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}
	if options.Context == nil {
		options.Context = context.Background()
	}

	screen := &screenSize{}
	viewer := options.Viewer
	ctx, cancel := context.WithCancel(options.Context)

	model := Model{
		ctx:        ctx,
		cancel:     cancel,
		logger:     options.Logger,
		clock:      options.Clock,
		theme:      options.Theme,
		keys:       options.Keys,
		timeout:    options.RequestTimeout,
		document:   options.Document,
		screen:     screen,
		transcript: &transcriptCache{},
		split:      layout.NewSplitPane(options.Layout, func() int { return screen.width }),
		zoom:       zoom.New(options.Zoom, viewer),
		modifier:   options.ZoomModifier,
		chat: chat.NewController(chat.Config{
			Backend: options.Backend,
			Preview: viewer.Load,
			Clock:   options.Clock,
			Logger:  options.Logger,
		}),
		viewer:         viewer,
		markup:         options.Renderer,
		documentView:   viewport.New(0, 0),
		transcriptView: viewport.New(0, 0),
		search:         newDocumentSearch(),
	}
	model.updateComposerPlaceholder()
	return model
}

// Chat exposes the session controller, for inspection by the caller.
func (model Model) Chat() *chat.Controller {
	return model.chat
}

// Init implements tea.Model. Opens the startup document, if any.
func (model Model) Init() tea.Cmd {
	if model.document == "" {
		return nil
	}
	path := model.document
	return func() tea.Msg {
		return openDocumentMsg{path: path}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.MouseMsg:
		model.handleMouse(message)

	case tea.WindowSizeMsg:
		model.screen.width = message.Width
		model.screen.height = message.Height
		model.ready = true
		model.split.Clamp()
		model.resize()

	case tea.BlurMsg:
		// A release delivered while the terminal is unfocused never
		// reaches us; end the drag now rather than on some later click.
		model.split.EndDrag()

	case openDocumentMsg:
		source, err := document.OpenFile(message.path)
		if err != nil {
			model.logger.Error("cannot open document", "path", message.path, "error", err)
			return model, nil
		}
		return model, model.submitDocument(source)

	case outcomeMsg:
		model.chat.Apply(message.outcome)
		model.updateComposerPlaceholder()
		model.refreshTranscript()

	case logRecordMsg:
		model.statusSerial++
		model.status = message.summary
		model.statusLevel = message.level
		serial := model.statusSerial
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{serial: serial}
		})

	case logRecordFadeMsg:
		if message.serial == model.statusSerial {
			model.status = ""
		}
	}
	return model, nil
}

// quit releases the drag, cancels outstanding requests and stops the
// program.
func (model *Model) quit() tea.Cmd {
	model.split.EndDrag()
	model.cancel()
	return tea.Quit
}

// run executes a pending backend request off the update loop.
func (model *Model) run(pending *chat.Pending) tea.Cmd {
	if pending == nil {
		return nil
	}
	parent := model.ctx
	timeout := model.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return outcomeMsg{outcome: pending.Run(ctx)}
	}
}

// submitDocument previews and uploads a source.
func (model *Model) submitDocument(source document.Source) tea.Cmd {
	pending := model.chat.SubmitDocument(source)
	model.search.clear()
	if model.focus == FocusSearch {
		model.focus = FocusDocument
	}
	model.documentView.GotoTop()
	model.refreshDocument()
	model.updateComposerPlaceholder()
	model.refreshTranscript()
	return model.run(pending)
}

// submitQuery sends the composer text. The text stays in the composer
// when the controller refuses it (no session yet).
func (model *Model) submitQuery() tea.Cmd {
	pending := model.chat.SubmitQuery(model.composer.Value())
	if pending == nil {
		return nil
	}
	model.composer.Reset()
	model.refreshTranscript()
	return model.run(pending)
}

func (model *Model) updateComposerPlaceholder() {
	switch model.chat.State() {
	case chat.Uploading:
		model.composer.Placeholder = "Waiting for the document to process"
	case chat.SessionActive:
		model.composer.Placeholder = "Ask a question about the document"
	default:
		model.composer.Placeholder = "Upload a document to start chatting"
	}
}

// handleKey routes a key by focus. ctrl+c quits from anywhere.
func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(message, model.keys.Quit) {
		return model, model.quit()
	}

	switch model.focus {
	case FocusPrompt:
		return model, model.handlePromptKey(message)
	case FocusSearch:
		model.handleSearchKey(message)
		return model, nil
	}

	switch {
	case key.Matches(message, model.keys.Open):
		model.openPrompt()
		return model, nil

	case key.Matches(message, model.keys.FocusToggle):
		if model.focus == FocusChat {
			model.focus = FocusDocument
		} else if !model.fullScreen {
			model.focus = FocusChat
		}
		return model, nil
	}

	if model.focus == FocusChat {
		return model, model.handleChatKey(message)
	}
	return model, model.handleDocumentKey(message)
}

func (model *Model) openPrompt() {
	initial := ""
	if source, ok := model.viewer.Source(); ok && source.Path != "" {
		initial = source.Path
	}
	prompt := tui.NewPromptModal("Open document", initial, model.theme)
	prompt.Input.Placeholder = "path to a PDF or text file"
	model.prompt = &prompt
	model.priorFocus = model.focus
	model.focus = FocusPrompt
}

func (model *Model) closePrompt() {
	model.prompt = nil
	model.focus = model.priorFocus
}

func (model *Model) handlePromptKey(message tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.closePrompt()
		return nil

	case key.Matches(message, model.keys.Confirm):
		path := model.prompt.Value()
		if path == "" {
			model.prompt.Error = "enter a file path"
			return nil
		}
		source, err := document.OpenFile(path)
		if err != nil {
			model.prompt.Error = err.Error()
			return nil
		}
		model.closePrompt()
		return model.submitDocument(source)
	}
	model.prompt.Update(message)
	return nil
}

func (model *Model) handleSearchKey(message tea.KeyMsg) {
	switch {
	case key.Matches(message, model.keys.Cancel):
		model.search.clear()
		model.focus = FocusDocument
		model.refreshDocument()

	case key.Matches(message, model.keys.Confirm):
		model.search.active = false
		model.focus = FocusDocument

	default:
		if model.search.input.Update(message) {
			model.search.current = 0
			model.recomputeSearch()
			model.jumpToCurrentHit()
		}
	}
}

func (model *Model) handleChatKey(message tea.KeyMsg) tea.Cmd {
	if key.Matches(message, model.keys.Confirm) {
		return model.submitQuery()
	}
	switch message.Type {
	case tea.KeyUp:
		model.transcriptView.LineUp(1)
	case tea.KeyDown:
		model.transcriptView.LineDown(1)
	case tea.KeyPgUp:
		model.transcriptView.HalfViewUp()
	case tea.KeyPgDown:
		model.transcriptView.HalfViewDown()
	default:
		model.composer.Update(message)
	}
	return nil
}

func (model *Model) handleDocumentKey(message tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(message, model.keys.QuitDocument):
		return model.quit()

	case key.Matches(message, model.keys.Cancel):
		if model.search.query() != "" {
			model.search.clear()
			model.refreshDocument()
		}

	case key.Matches(message, model.keys.SplitGrow):
		model.split.Nudge(splitStep)
		model.resize()

	case key.Matches(message, model.keys.SplitShrink):
		model.split.Nudge(-splitStep)
		model.resize()

	case key.Matches(message, model.keys.ZoomIn):
		model.zoom.ZoomIn()
		model.rescale()

	case key.Matches(message, model.keys.ZoomOut):
		model.zoom.ZoomOut()
		model.rescale()

	case key.Matches(message, model.keys.NextPage):
		model.turnPage(model.viewer.Page() + 1)

	case key.Matches(message, model.keys.PreviousPage):
		model.turnPage(model.viewer.Page() - 1)

	case key.Matches(message, model.keys.FirstPage):
		model.turnPage(1)

	case key.Matches(message, model.keys.LastPage):
		model.turnPage(model.viewer.PageCount())

	case key.Matches(message, model.keys.Search):
		if model.viewer.PageCount() > 0 {
			model.search.active = true
			model.focus = FocusSearch
		}

	case key.Matches(message, model.keys.SearchNext):
		model.search.step(1)
		model.jumpToCurrentHit()

	case key.Matches(message, model.keys.SearchPrev):
		model.search.step(-1)
		model.jumpToCurrentHit()

	case key.Matches(message, model.keys.FullScreen):
		model.toggleFullScreen()

	case key.Matches(message, model.keys.ScrollUp):
		model.documentView.LineUp(1)

	case key.Matches(message, model.keys.ScrollDown):
		model.documentView.LineDown(1)

	case key.Matches(message, model.keys.HalfPageUp):
		model.documentView.HalfViewUp()

	case key.Matches(message, model.keys.HalfPageDown):
		model.documentView.HalfViewDown()
	}
	return nil
}

func (model *Model) toggleFullScreen() {
	model.fullScreen = !model.fullScreen
	if model.fullScreen {
		model.split.EndDrag()
		model.focus = FocusDocument
	}
	model.resize()
}

// turnPage moves to page n (clamped by the viewer) and scrolls to its
// top.
func (model *Model) turnPage(n int) {
	if model.viewer.PageCount() == 0 {
		return
	}
	before := model.viewer.Page()
	model.viewer.SetPage(n)
	if model.viewer.Page() != before {
		model.documentView.GotoTop()
	}
	model.refreshDocument()
}

// rescale re-renders after a zoom. Wrapping depends on the scale, so
// match positions are recomputed too.
func (model *Model) rescale() {
	model.recomputeSearch()
	model.refreshDocument()
}

func (model *Model) recomputeSearch() {
	model.search.recompute(model.viewer, model.documentContentWidth(), model.theme)
}

// jumpToCurrentHit shows the page of the selected hit and centers its
// line.
func (model *Model) jumpToCurrentHit() {
	hit, ok := model.search.currentHit()
	if !ok {
		model.refreshDocument()
		return
	}
	model.viewer.SetPage(hit.page)
	model.refreshDocument()
	model.documentView.SetYOffset(max(hit.line-model.documentView.Height/2, 0))
}
