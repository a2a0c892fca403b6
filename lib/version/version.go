// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build information for the docdesk binary.
//
// Values are injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/docdesk/lib/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"io"
	"runtime"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// Info returns a formatted version string suitable for --version output.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// UserAgent returns the HTTP User-Agent for backend requests.
func UserAgent() string {
	return "docdesk/" + Version
}

// Print writes "<binary> <info>" plus the Go toolchain and platform.
func Print(output io.Writer, binary string) {
	fmt.Fprintf(output, "%s %s\n  Go: %s\n  Platform: %s/%s\n",
		binary, Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
