// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package layout owns the split between the document pane and the chat
// pane. A [SplitPane] converts raw horizontal drag deltas into a clamped
// left-pane width; it has no I/O and no knowledge of how the panes are
// drawn.
//
// The container width is pulled through a [ContainerWidthFunc] on every
// delta rather than cached when a drag begins, so a terminal resize in
// the middle of a drag never leaves the divider clamped against a stale
// bound.
package layout

// Reference geometry of the original workspace, in pixels. Terminal
// front ends pass their own values (in columns) through [Config].
const (
	DefaultMinWidth       = 200
	DefaultInitialWidth   = 500
	DefaultDividerWidth   = 6
	DefaultContainerWidth = 800
)

// ContainerWidthFunc reports the current width of the container that
// holds both panes and the divider. A non-positive result means the
// container is not laid out yet; [DefaultContainerWidth] (or the
// configured fallback) is used instead.
type ContainerWidthFunc func() int

// Config holds the tunable geometry of a SplitPane. Zero fields take
// the reference defaults.
type Config struct {
	// MinWidth is the minimum width of each pane.
	MinWidth int

	// InitialWidth is the left pane width before any drag.
	InitialWidth int

	// DividerWidth is the width of the draggable divider between the
	// panes. It does not participate in the clamp bounds.
	DividerWidth int

	// FallbackContainerWidth is used when the container reports a
	// non-positive width.
	FallbackContainerWidth int
}

func (config Config) withDefaults() Config {
	if config.MinWidth <= 0 {
		config.MinWidth = DefaultMinWidth
	}
	if config.InitialWidth <= 0 {
		config.InitialWidth = DefaultInitialWidth
	}
	if config.DividerWidth < 0 {
		config.DividerWidth = 0
	}
	if config.FallbackContainerWidth <= 0 {
		config.FallbackContainerWidth = DefaultContainerWidth
	}
	return config
}

// SplitPane is the layout controller. The left pane width is the only
// mutable state; it changes only through DragDelta (inside a drag),
// Nudge, SetWidth and Clamp, and every one of those paths applies the
// same clamp to the result.
//
// When the container is narrower than twice MinWidth the width is pinned
// at MinWidth and the right pane falls below the minimum. That
// degenerate state is accepted silently.
type SplitPane struct {
	config    Config
	container ContainerWidthFunc
	width     int
	dragging  bool
}

// NewSplitPane creates a SplitPane reading its container width from
// container. A nil container func behaves as an unmounted container.
func NewSplitPane(config Config, container ContainerWidthFunc) *SplitPane {
	config = config.withDefaults()
	if container == nil {
		container = func() int { return 0 }
	}
	return &SplitPane{
		config:    config,
		container: container,
		width:     config.InitialWidth,
	}
}

// BeginDrag opens a drag gesture. Deltas delivered outside a
// BeginDrag/EndDrag bracket are ignored.
func (pane *SplitPane) BeginDrag() {
	pane.dragging = true
}

// DragDelta moves the divider by dx and clamps the result against the
// container width as it is right now. A delta that pushes past a bound
// leaves the width pinned at the bound; the overshoot is not remembered.
func (pane *SplitPane) DragDelta(dx int) {
	if !pane.dragging {
		return
	}
	pane.width = pane.clamp(pane.width + dx)
}

// EndDrag closes the drag gesture. Safe to call when no drag is active.
func (pane *SplitPane) EndDrag() {
	pane.dragging = false
}

// Dragging reports whether a drag gesture is open.
func (pane *SplitPane) Dragging() bool {
	return pane.dragging
}

// Nudge moves the divider by dx without a drag bracket (keyboard
// resize).
func (pane *SplitPane) Nudge(dx int) {
	pane.width = pane.clamp(pane.width + dx)
}

// SetWidth moves the divider to an absolute width, clamped.
func (pane *SplitPane) SetWidth(width int) {
	pane.width = pane.clamp(width)
}

// Clamp re-applies the bounds to the current width. Call after the
// container resizes outside a drag.
func (pane *SplitPane) Clamp() {
	pane.width = pane.clamp(pane.width)
}

// Width returns the left pane width.
func (pane *SplitPane) Width() int {
	return pane.width
}

// RightWidth returns the right pane width: container minus left pane
// minus divider, never negative.
func (pane *SplitPane) RightWidth() int {
	right := pane.containerWidth() - pane.width - pane.config.DividerWidth
	if right < 0 {
		return 0
	}
	return right
}

// MinWidth returns the configured minimum pane width.
func (pane *SplitPane) MinWidth() int {
	return pane.config.MinWidth
}

// Degenerate reports whether the container is too narrow to honor the
// minimum on both sides.
func (pane *SplitPane) Degenerate() bool {
	return pane.containerWidth() < 2*pane.config.MinWidth
}

func (pane *SplitPane) containerWidth() int {
	width := pane.container()
	if width <= 0 {
		return pane.config.FallbackContainerWidth
	}
	return width
}

// clamp bounds a proposed width to [MinWidth, container-MinWidth]. The
// lower bound wins when the interval is empty.
func (pane *SplitPane) clamp(proposed int) int {
	minimum := pane.config.MinWidth
	maximum := pane.containerWidth() - minimum
	if proposed > maximum {
		proposed = maximum
	}
	if proposed < minimum {
		proposed = minimum
	}
	return proposed
}
