// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package zoom turns modified scroll gestures over the document viewport
// into relative zoom commands. The render scale itself belongs to the
// rendering collaborator behind [Scaler]; the controller never reads it
// except inside the delta function it hands over.
package zoom

import "math"

// Reference step and floor of the original viewer.
const (
	DefaultStep  = 0.1
	DefaultFloor = 0.1
)

// scalePrecision is the rounding grid for computed scales. Rounding
// keeps 0.15-0.1 from landing a hair under the floor and keeps repeated
// steps from drifting.
const scalePrecision = 1e9

// Gesture is one scroll event over the viewport.
type Gesture struct {
	// Modifier is true when the configured modifier key was held.
	Modifier bool

	// DeltaY is the primary scroll delta. Negative is "forward" (wheel
	// up, zoom in); positive is "backward" (wheel down, zoom out).
	DeltaY float64
}

// Result reports what Handle did with a gesture.
type Result struct {
	// Handled is true when the gesture was consumed as a zoom. The
	// caller must then suppress its default scroll for that event.
	Handled bool
}

// Scaler is the rendering collaborator's relative zoom entry point.
// The function receives the current scale and returns the new one.
type Scaler interface {
	Zoom(adjust func(current float64) float64)
}

// Config holds the tunables. Zero fields take the defaults.
type Config struct {
	Step  float64
	Floor float64
}

// Controller is a stateless transform from gesture to zoom delta.
type Controller struct {
	step   float64
	floor  float64
	scaler Scaler
}

// New creates a Controller driving scaler.
func New(config Config, scaler Scaler) *Controller {
	if config.Step <= 0 {
		config.Step = DefaultStep
	}
	if config.Floor <= 0 {
		config.Floor = DefaultFloor
	}
	return &Controller{
		step:   config.Step,
		floor:  config.Floor,
		scaler: scaler,
	}
}

// Handle applies a gesture. Without the modifier, or with a zero delta,
// the gesture passes through untouched: no scale change and Handled is
// false, so ordinary scrolling still works.
func (controller *Controller) Handle(gesture Gesture) Result {
	if !gesture.Modifier || gesture.DeltaY == 0 {
		return Result{}
	}
	if gesture.DeltaY < 0 {
		controller.ZoomIn()
	} else {
		controller.ZoomOut()
	}
	return Result{Handled: true}
}

// ZoomIn increases the scale by one step.
func (controller *Controller) ZoomIn() {
	controller.scaler.Zoom(controller.increase)
}

// ZoomOut decreases the scale by one step, floored.
func (controller *Controller) ZoomOut() {
	controller.scaler.Zoom(controller.decrease)
}

func (controller *Controller) increase(current float64) float64 {
	return round(current + controller.step)
}

func (controller *Controller) decrease(current float64) float64 {
	return math.Max(round(current-controller.step), controller.floor)
}

func round(value float64) float64 {
	return math.Round(value*scalePrecision) / scalePrecision
}
