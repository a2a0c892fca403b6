// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"log/slog"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type recordingSender struct {
	mu       sync.Mutex
	messages []tea.Msg
}

func (sender *recordingSender) Send(message tea.Msg) {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	sender.messages = append(sender.messages, message)
}

func (sender *recordingSender) records() []logRecordMsg {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	var records []logRecordMsg
	for _, message := range sender.messages {
		if record, ok := message.(logRecordMsg); ok {
			records = append(records, record)
		}
	}
	return records
}

func TestStatusLogHandlerDropsBeforeProgram(t *testing.T) {
	handler := NewStatusLogHandler(slog.LevelWarn)
	logger := slog.New(handler)
	logger.Error("too early")

	sender := &recordingSender{}
	handler.SetProgram(sender)
	if len(sender.records()) != 0 {
		t.Fatal("record sent before SetProgram was delivered")
	}
}

func TestStatusLogHandlerLevel(t *testing.T) {
	handler := NewStatusLogHandler(slog.LevelWarn)
	sender := &recordingSender{}
	handler.SetProgram(sender)
	logger := slog.New(handler)

	logger.Info("routine")
	logger.Warn("query failed", "elapsed", "2s")

	records := sender.records()
	if len(records) != 1 {
		t.Fatalf("records: got %d, want 1", len(records))
	}
	if records[0].summary != "query failed (elapsed=2s)" {
		t.Errorf("summary: %q", records[0].summary)
	}
	if records[0].level != slog.LevelWarn {
		t.Errorf("level: %v", records[0].level)
	}
}

func TestStatusLogHandlerDerivedShareProgram(t *testing.T) {
	handler := NewStatusLogHandler(slog.LevelWarn)
	logger := slog.New(handler).With("document", "report.pdf").WithGroup("upload")

	sender := &recordingSender{}
	handler.SetProgram(sender)
	logger.Error("failed", "status", 503)

	records := sender.records()
	if len(records) != 1 {
		t.Fatalf("records: got %d, want 1", len(records))
	}
	if want := "failed (document=report.pdf, upload.status=503)"; records[0].summary != want {
		t.Errorf("summary: got %q, want %q", records[0].summary, want)
	}
}
