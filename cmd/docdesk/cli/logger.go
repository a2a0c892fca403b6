// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the logger used before the terminal UI
// starts and after it exits. When stderr is a terminal it writes
// human-readable text; when stderr is piped or redirected it writes
// JSON.
func NewCommandLogger(level slog.Level) *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level)
}

func newLogger(output io.Writer, terminal bool, level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if terminal {
		handler = slog.NewTextHandler(output, options)
	} else {
		handler = slog.NewJSONHandler(output, options)
	}
	return slog.New(handler)
}
