// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"os"
)

// openFileLogHandler creates a slog.JSONHandler that writes every
// record to path. The file is created or truncated. The returned func
// closes it.
func openFileLogHandler(path string) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return handler, func() { file.Close() }, nil
}

// fanoutHandler sends each record to every sub-handler enabled for its
// level. A record is enabled if any sub-handler is.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
