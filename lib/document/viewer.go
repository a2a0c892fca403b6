// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// DefaultScale is the render scale of a freshly created viewer.
const DefaultScale = 1.0

// Viewer is the rendering collaborator for the document pane. It owns
// the current page and the render scale; the zoom controller adjusts the
// scale only through Zoom.
type Viewer interface {
	// Load replaces the current source. The previous source is
	// discarded and the page resets to 1, even when Load fails.
	Load(source Source) error

	// Source returns the loaded source, false when none is loaded.
	Source() (Source, bool)

	// PageCount is zero when nothing is loaded or the source had no
	// extractable pages.
	PageCount() int

	// Page returns the 1-based current page, zero when empty.
	Page() int

	// SetPage moves to page n, clamped to [1, PageCount].
	SetPage(n int)

	// PageText returns the text of 1-based page n, empty when out of
	// range.
	PageText(n int) string

	Scale() float64

	// Zoom replaces the scale with adjust(current scale).
	Zoom(adjust func(current float64) float64)

	// Render draws the current page at the current scale into lines at
	// most width columns wide.
	Render(width int) string
}

// TextViewer is a Viewer that previews documents as extracted text. At
// scale 1 the text wraps to the pane width; other scales wrap to
// width*scale columns and crop whatever overflows the pane.
type TextViewer struct {
	extractPDF  PageExtractor
	extractText PageExtractor

	source    Source
	loaded    bool
	loadError error
	pages     []string
	page      int
	scale     float64
}

// ViewerOption configures a TextViewer.
type ViewerOption func(*TextViewer)

// WithPDFExtractor replaces the PDF text extractor.
func WithPDFExtractor(extractor PageExtractor) ViewerOption {
	return func(viewer *TextViewer) {
		viewer.extractPDF = extractor
	}
}

// NewTextViewer creates an empty viewer.
func NewTextViewer(options ...ViewerOption) *TextViewer {
	viewer := &TextViewer{
		extractPDF:  ExtractPDFPages,
		extractText: ExtractTextPages,
		scale:       DefaultScale,
	}
	for _, option := range options {
		option(viewer)
	}
	return viewer
}

// Load implements Viewer.
func (viewer *TextViewer) Load(source Source) error {
	viewer.source = source
	viewer.loaded = true
	viewer.loadError = nil
	viewer.pages = nil
	viewer.page = 0

	extract := viewer.extractText
	if source.IsPDF() {
		extract = viewer.extractPDF
	}
	pages, err := extract(source.Data)
	if err != nil {
		viewer.loadError = err
		return err
	}
	viewer.pages = pages
	if len(pages) > 0 {
		viewer.page = 1
	}
	return nil
}

// LoadError returns the error from the last Load, if any.
func (viewer *TextViewer) LoadError() error {
	return viewer.loadError
}

// Source implements Viewer.
func (viewer *TextViewer) Source() (Source, bool) {
	return viewer.source, viewer.loaded
}

// PageCount implements Viewer.
func (viewer *TextViewer) PageCount() int {
	return len(viewer.pages)
}

// Page implements Viewer.
func (viewer *TextViewer) Page() int {
	return viewer.page
}

// SetPage implements Viewer.
func (viewer *TextViewer) SetPage(n int) {
	if len(viewer.pages) == 0 {
		return
	}
	viewer.page = max(1, min(n, len(viewer.pages)))
}

// PageText implements Viewer.
func (viewer *TextViewer) PageText(n int) string {
	if n < 1 || n > len(viewer.pages) {
		return ""
	}
	return viewer.pages[n-1]
}

// Scale implements Viewer.
func (viewer *TextViewer) Scale() float64 {
	return viewer.scale
}

// Zoom implements Viewer. Non-positive results are ignored.
func (viewer *TextViewer) Zoom(adjust func(current float64) float64) {
	if next := adjust(viewer.scale); next > 0 {
		viewer.scale = next
	}
}

// Render implements Viewer.
func (viewer *TextViewer) Render(width int) string {
	if width <= 0 || viewer.page == 0 {
		return ""
	}
	wrapWidth := max(1, int(float64(width)*viewer.scale))
	wrapped := ansi.Wrap(viewer.pages[viewer.page-1], wrapWidth, " ,.;-+|")

	lines := strings.Split(wrapped, "\n")
	for index, line := range lines {
		if ansi.StringWidth(line) > width {
			lines[index] = ansi.Truncate(line, width, "")
		}
	}
	return strings.Join(lines, "\n")
}
