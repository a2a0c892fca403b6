// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/docdesk/lib/document"
	"github.com/bureau-foundation/docdesk/lib/tui"
)

// searchHit is one match somewhere in the document.
type searchHit struct {
	page  int // 1-based page.
	index int // Match index within the page's rendered text.
	line  int // Rendered line of the match, for scrolling.
}

// documentSearch finds a query across every page of the loaded
// document. Substring matches are tried first; when the query occurs
// nowhere verbatim, each rendered line is matched fuzzily instead, so a
// query like "termconv" still finds "Termination for Convenience".
type documentSearch struct {
	input  tui.LineInput
	active bool // The search input has keyboard focus.

	fuzzy   bool
	hits    []searchHit
	current int
	slab    *util.Slab
}

func newDocumentSearch() documentSearch {
	search := documentSearch{slab: tui.NewFuzzySlab()}
	search.input.Placeholder = "search the document"
	return search
}

func (search *documentSearch) query() string {
	return search.input.Value()
}

// clear drops the query and every hit.
func (search *documentSearch) clear() {
	search.input.Reset()
	search.active = false
	search.fuzzy = false
	search.hits = nil
	search.current = 0
}

// recompute rescans all pages of viewer rendered at width. The viewer
// is left on the page it was on.
func (search *documentSearch) recompute(viewer document.Viewer, width int, theme tui.Theme) {
	search.hits = nil
	search.fuzzy = false
	query := search.query()
	if query == "" || viewer.PageCount() == 0 {
		search.current = 0
		return
	}

	original := viewer.Page()
	defer viewer.SetPage(original)

	bodies := make([]string, viewer.PageCount())
	for page := 1; page <= viewer.PageCount(); page++ {
		viewer.SetPage(page)
		bodies[page-1] = viewer.Render(width)
		_, matches := tui.HighlightSubstring(bodies[page-1], query, -1, theme)
		search.appendHits(page, matches)
	}
	if len(search.hits) == 0 {
		search.fuzzy = true
		pattern := []rune(query)
		for page, body := range bodies {
			_, matches := tui.HighlightFuzzy(body, pattern, -1, theme, search.slab)
			search.appendHits(page+1, matches)
		}
	}
	search.current = min(search.current, max(len(search.hits)-1, 0))
}

func (search *documentSearch) appendHits(page int, matches []tui.Match) {
	for index, match := range matches {
		search.hits = append(search.hits, searchHit{page: page, index: index, line: match.Line})
	}
}

// currentHit returns the selected hit, false when there are none.
func (search *documentSearch) currentHit() (searchHit, bool) {
	if len(search.hits) == 0 {
		return searchHit{}, false
	}
	return search.hits[search.current], true
}

// step moves the selection by delta, wrapping at both ends.
func (search *documentSearch) step(delta int) {
	count := len(search.hits)
	if count == 0 {
		return
	}
	search.current = ((search.current+delta)%count + count) % count
}

// highlight tints the matches on one rendered page. The selected hit is
// drawn with the current-match color when it lies on this page.
func (search *documentSearch) highlight(body string, page int, theme tui.Theme) string {
	if search.query() == "" || len(search.hits) == 0 {
		return body
	}
	current := -1
	if hit, ok := search.currentHit(); ok && hit.page == page {
		current = hit.index
	}
	var highlighted string
	if search.fuzzy {
		highlighted, _ = tui.HighlightFuzzy(body, []rune(search.query()), current, theme, search.slab)
	} else {
		highlighted, _ = tui.HighlightSubstring(body, search.query(), current, theme)
	}
	return highlighted
}
