// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/ledongthuc/pdf"
)

// PageExtractor turns raw document bytes into per-page text.
type PageExtractor func(data []byte) ([]string, error)

// ExtractPDFPages extracts the plain text of every page of a PDF.
// Pages without a content dictionary yield an empty string so page
// numbering stays aligned with the file.
//
// The PDF reader panics on some malformed inputs; those panics are
// returned as errors.
func ExtractPDFPages(data []byte) (pages []string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			pages = nil
			err = fmt.Errorf("malformed PDF: %v", recovered)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}

	count := reader.NumPage()
	pages = make([]string, 0, count)
	for index := 1; index <= count; index++ {
		page := reader.Page(index)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d: %w", index, err)
		}
		pages = append(pages, normalizeText(text))
	}
	return pages, nil
}

// ExtractTextPages treats the whole input as a single plain-text page.
// Binary input is rejected.
func ExtractTextPages(data []byte) ([]string, error) {
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, fmt.Errorf("binary content cannot be previewed")
	}
	return []string{normalizeText(string(data))}, nil
}

// normalizeText repairs invalid UTF-8, unifies line endings and expands
// tabs so column arithmetic in the renderer holds. Document text is
// untrusted: escape sequences and control characters other than
// newline are removed before anything reaches the terminal.
func normalizeText(text string) string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	text = ansi.Strip(text)
	text = strings.Map(func(character rune) rune {
		if character != '\n' && unicode.IsControl(character) {
			return -1
		}
		return character
	}, text)
	return strings.TrimRight(text, "\n ")
}
