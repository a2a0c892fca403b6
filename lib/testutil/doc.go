// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for docdesk packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so that tests driving real goroutines (an HTTP backend, a
// request running off the update loop) fail with a message instead of
// hanging. They are the only place in the test suite where real
// wall-clock timeouts are used.
//
// All helpers call t.Fatalf on failure rather than returning errors.
//
// This package has no docdesk-internal dependencies.
package testutil
