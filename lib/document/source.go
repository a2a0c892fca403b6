// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package document holds the user-selected document and the rendering
// collaborator that previews it.
//
// A [Source] is immutable once created: the bytes that are previewed are
// the bytes that are uploaded. Its BLAKE3 digest identifies the document
// in the pane header and in log records, so an upload outcome can be
// matched to the file that produced it.
package document

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// MaxSourceSize bounds the files OpenFile will read: 256 MB.
const MaxSourceSize = 256 << 20

// Source is a user-selected document.
type Source struct {
	// Name is the file name sent to the backend and shown in the
	// document pane header.
	Name string

	// Path is the absolute filesystem path, empty for in-memory sources.
	Path string

	// Data is the raw document content.
	Data []byte

	// PreviewURL is a file:// URL for the source, empty for in-memory
	// sources. It is the locator handed to external viewers.
	PreviewURL string

	// Digest is the BLAKE3-256 hash of Data.
	Digest [32]byte
}

// NewSource creates an in-memory source.
func NewSource(name string, data []byte) Source {
	return Source{
		Name:   name,
		Data:   data,
		Digest: blake3.Sum256(data),
	}
}

// OpenFile reads a document from disk. A leading "~/" expands to the
// home directory.
func OpenFile(path string) (Source, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Source{}, fmt.Errorf("document path is empty")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return Source{}, fmt.Errorf("expanding %q: %w", path, err)
		}
		path = filepath.Join(home, path[2:])
	}
	absolute, err := filepath.Abs(path)
	if err != nil {
		return Source{}, fmt.Errorf("resolving %q: %w", path, err)
	}

	info, err := os.Stat(absolute)
	if err != nil {
		return Source{}, err
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("%s is a directory", absolute)
	}
	if info.Size() > MaxSourceSize {
		return Source{}, fmt.Errorf("%s is %d bytes, larger than the %d byte limit", absolute, info.Size(), MaxSourceSize)
	}

	data, err := os.ReadFile(absolute)
	if err != nil {
		return Source{}, err
	}

	source := NewSource(filepath.Base(absolute), data)
	source.Path = absolute
	source.PreviewURL = (&url.URL{Scheme: "file", Path: filepath.ToSlash(absolute)}).String()
	return source, nil
}

// ShortDigest returns the first 12 hex characters of the digest.
func (source Source) ShortDigest() string {
	return hex.EncodeToString(source.Digest[:6])
}

// IsPDF reports whether the source looks like a PDF, by magic number
// or, failing that, by extension.
func (source Source) IsPDF() bool {
	if bytes.HasPrefix(source.Data, []byte("%PDF-")) {
		return true
	}
	return strings.EqualFold(filepath.Ext(source.Name), ".pdf")
}
