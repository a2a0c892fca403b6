// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP I/O helpers for the document backend
// client.
//
// Response helpers bound every body read at MaxResponseSize so a
// misbehaving server cannot exhaust memory. Error helpers classify
// transport failures so callers can tell a timeout apart from a server
// that answered with an error status.
package netutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
)

// MaxResponseSize bounds JSON response body reads: 16 MB. Upload and
// query responses are a few hundred bytes; the limit only guards
// against a pathological server.
const MaxResponseSize int64 = 16 << 20

// maxErrorSnippet bounds how much of an error body is quoted in an
// error message.
const maxErrorSnippet = 512

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a JSON response body (up to MaxResponseSize
// bytes) and decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// ErrorBody reads an error response body and returns a trimmed,
// length-limited snippet for diagnostic messages. Read errors are
// ignored: a partial or empty snippet is still useful.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxErrorSnippet+1))
	snippet := strings.TrimSpace(string(data))
	if len(snippet) > maxErrorSnippet {
		snippet = snippet[:maxErrorSnippet] + "…"
	}
	return snippet
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netError net.Error
	return errors.As(err, &netError) && netError.Timeout()
}

// IsCanceled reports whether err stems from context cancellation
// (typically the workspace shutting down with a request in flight).
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
