// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg carries a log record into the update loop for display in
// the status bar.
type logRecordMsg struct {
	summary string
	level   slog.Level
}

// logRecordFadeMsg clears a status bar record. The serial identifies
// which record the fade belongs to, so an older timer cannot clear a
// newer record.
type logRecordFadeMsg struct {
	serial uint64
}

// logRecordFadeDelay is how long a record stays in the status bar.
const logRecordFadeDelay = 5 * time.Second

// Sender is the part of a tea.Program the log handler needs.
type Sender interface {
	Send(message tea.Msg)
}

// StatusLogHandler is a slog.Handler that forwards records into the
// workspace program so background failures (uploads, queries, document
// loads) show in the status bar instead of corrupting the alt screen.
//
// The handler is created before the program exists; records arriving
// before SetProgram are dropped. Handlers derived through WithAttrs and
// WithGroup share the program pointer, so one SetProgram call reaches
// all of them.
type StatusLogHandler struct {
	level   slog.Level
	program *atomic.Pointer[Sender]
	attrs   []slog.Attr
	groups  []string
}

// NewStatusLogHandler creates a handler forwarding records at or above
// level.
func NewStatusLogHandler(level slog.Level) *StatusLogHandler {
	return &StatusLogHandler{
		level:   level,
		program: &atomic.Pointer[Sender]{},
	}
}

// SetProgram sets the receiver of forwarded records. Safe to call from
// any goroutine.
func (handler *StatusLogHandler) SetProgram(program Sender) {
	handler.program.Store(&program)
}

// Enabled implements slog.Handler.
func (handler *StatusLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level
}

// Handle formats the record as "message (key=value, ...)" and sends it
// to the program.
func (handler *StatusLogHandler) Handle(_ context.Context, record slog.Record) error {
	program := handler.program.Load()
	if program == nil {
		return nil
	}

	prefix := ""
	if len(handler.groups) > 0 {
		prefix = strings.Join(handler.groups, ".") + "."
	}
	var parts []string
	for _, attr := range handler.attrs {
		parts = append(parts, attr.Key+"="+attr.Value.String())
	}
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, prefix+attr.Key+"="+attr.Value.String())
		return true
	})

	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}
	(*program).Send(logRecordMsg{summary: summary, level: record.Level})
	return nil
}

// WithAttrs implements slog.Handler.
func (handler *StatusLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := ""
	if len(handler.groups) > 0 {
		prefix = strings.Join(handler.groups, ".") + "."
	}
	derived := slices.Clone(handler.attrs)
	for _, attr := range attrs {
		derived = append(derived, slog.Attr{Key: prefix + attr.Key, Value: attr.Value})
	}
	return &StatusLogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   derived,
		groups:  slices.Clone(handler.groups),
	}
}

// WithGroup implements slog.Handler.
func (handler *StatusLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handler
	}
	return &StatusLogHandler{
		level:   handler.level,
		program: handler.program,
		attrs:   slices.Clone(handler.attrs),
		groups:  append(slices.Clone(handler.groups), name),
	}
}
