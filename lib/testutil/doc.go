// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [SocketDir] creates a short temporary directory for Unix domain
// sockets. Socket paths are limited to 108 bytes (sun_path), and
// t.TempDir() paths under a build system's TEST_TMPDIR routinely
// exceed that.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests waiting on a sink or a server goroutine fail
// instead of hanging.
//
// All helpers call t.Fatalf on failure. This package has no
// dependencies on the rest of the module.
package testutil
