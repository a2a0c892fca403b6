// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads docdesk configuration.
//
// Configuration comes from a single file named by the --config flag
// (via [LoadFile]) or the DOCDESK_CONFIG environment variable (via
// [Load]). With neither, the built-in defaults from [Default] apply.
// There is no directory search.
//
// Files ending in .json or .jsonc are read as JSON with comments and
// trailing commas; anything else is read as YAML. Both formats use the
// same keys.
//
// The file may carry development and production sections that override
// base values when [Config].Environment matches. Production without an
// explicit section raises the logging level to warn.
//
// ${VAR} and ${VAR:-default} are expanded in server.base_url and
// logging.output after loading. No other environment variables override
// config values.
//
// This package depends on no other docdesk packages.
package config
