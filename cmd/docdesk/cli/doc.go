// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli holds the command-line plumbing of the docdesk binary:
// categorized errors ([ToolError]) with optional remediation hints, and
// [NewCommandLogger] for output written before the terminal UI takes
// over the screen.
package cli
