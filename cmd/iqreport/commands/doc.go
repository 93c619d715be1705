// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the iqreport command tree.
//
// [Root] assembles send, windows, decode, sink, and version. Commands
// write through a [Streams] value rather than the process's standard
// files, so tests drive the whole tree in-process.
package commands
