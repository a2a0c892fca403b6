// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/docdesk/lib/zoom"
)

// handleMouse routes mouse events. A left press on the divider starts a
// drag that follows the pointer until release; a second press within
// doubleClickThreshold toggles between a wide and a narrow document
// pane. The wheel scrolls the pane under the pointer, except that a
// modified wheel over the document pane zooms instead.
func (model *Model) handleMouse(message tea.MouseMsg) {
	if model.split.Dragging() {
		switch message.Action {
		case tea.MouseActionRelease:
			model.endDrag()
		case tea.MouseActionMotion:
			model.split.DragDelta(message.X - model.dragX)
			model.dragX = message.X
			model.resizePanes()
		}
		return
	}

	// The prompt is modal.
	if model.focus == FocusPrompt {
		return
	}
	if message.Action == tea.MouseActionMotion {
		return
	}

	leftWidth := model.leftWidth()
	contentStart := 1
	inContentArea := message.Y >= contentStart && message.Y < contentStart+model.contentHeight()
	onDivider := !model.fullScreen && message.X == leftWidth
	inDocumentPane := message.X >= 0 && message.X < leftWidth
	inChatPane := !model.fullScreen && message.X > leftWidth

	switch message.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		if !inContentArea {
			return
		}
		deltaY := float64(wheelLines)
		if message.Button == tea.MouseButtonWheelUp {
			deltaY = -deltaY
		}
		if inDocumentPane {
			result := model.zoom.Handle(zoom.Gesture{
				Modifier: model.modifier.held(message),
				DeltaY:   deltaY,
			})
			if result.Handled {
				model.rescale()
				return
			}
			scrollViewport(&model.documentView, deltaY)
		} else if inChatPane {
			scrollViewport(&model.transcriptView, deltaY)
		}

	case tea.MouseButtonLeft:
		if message.Action != tea.MouseActionPress {
			return
		}
		if message.Y == 0 {
			if inDocumentPane {
				model.handleToolbarClick(message.X)
			}
			return
		}
		if !inContentArea {
			return
		}
		if onDivider {
			now := model.clock.Now()
			if now.Sub(model.lastDividerClick) <= doubleClickThreshold {
				model.toggleSplit()
				model.lastDividerClick = time.Time{}
				return
			}
			model.lastDividerClick = now
			model.split.BeginDrag()
			model.dragX = message.X
			return
		}
		if inDocumentPane {
			if model.focus == FocusSearch {
				model.search.active = false
			}
			model.focus = FocusDocument
		} else if inChatPane {
			if model.focus == FocusSearch {
				model.search.active = false
			}
			model.focus = FocusChat
		}
	}
}

// endDrag closes a divider drag and settles anything that depends on
// the final width.
func (model *Model) endDrag() {
	model.split.EndDrag()
	model.resize()
}

// toggleSplit flips the divider between a wide and a narrow document
// pane.
func (model *Model) toggleSplit() {
	container := model.screen.width
	if model.split.Width() > container/2 {
		model.split.SetWidth(container / 4)
	} else {
		model.split.SetWidth(container * 3 / 4)
	}
	model.resize()
}

func (model *Model) handleToolbarClick(x int) {
	_, hits := model.toolbar()
	for _, hit := range hits {
		if x < hit.startX || x >= hit.endX {
			continue
		}
		switch hit.action {
		case actionZoomOut:
			model.zoom.ZoomOut()
			model.rescale()
		case actionZoomIn:
			model.zoom.ZoomIn()
			model.rescale()
		case actionPreviousPage:
			model.turnPage(model.viewer.Page() - 1)
		case actionNextPage:
			model.turnPage(model.viewer.Page() + 1)
		case actionSearch:
			if model.viewer.PageCount() > 0 {
				model.search.active = true
				model.focus = FocusSearch
			}
		case actionFullScreen:
			model.toggleFullScreen()
		case actionOpen:
			model.openPrompt()
		}
		return
	}
}

func scrollViewport(view *viewport.Model, deltaY float64) {
	if deltaY < 0 {
		view.LineUp(int(-deltaY))
	} else {
		view.LineDown(int(deltaY))
	}
}
