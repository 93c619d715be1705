// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for iqreport.
//
// Configuration is loaded from a single file specified by either the
// IQREPORT_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file
// search: a reporting host's identity (environment id, VM address)
// comes from exactly one auditable place.
//
// Files ending in .json or .jsonc are read as JSON with comments;
// everything else is YAML. Both use the same keys.
//
// The file may contain environment-specific sections (development,
// staging, production) that override base values when
// [Config].Environment matches. Production defaults are stricter:
// logging drops to warnings unless the file says otherwise.
//
// ${HOME}, ${VAR}, and ${VAR:-default} patterns are expanded in the
// platform address and token path after loading. Command-line flags
// override file values; that merge happens in the command, not here.
//
// Key exports:
//
//   - [Config] -- master struct with VM, Events, Platform, Logging
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports every problem at once
package config
