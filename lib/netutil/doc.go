// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides network and HTTP I/O helpers for the
// platform clients.
//
// HTTP response helpers ([ReadResponse], [DecodeResponse],
// [ErrorBody]) bound body reads at [MaxResponseSize]. Platform
// responses are tiny acknowledgments; anything larger is a
// misbehaving endpoint.
//
// [IsExpectedCloseError] classifies errors seen while tearing down a
// stream connection that the peer may already have closed.
package netutil
