// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds platform tokens in memory that is kept out of
// swap and, where the OS allows, out of crash dumps.
//
// [Buffer] allocates outside the Go heap so the garbage collector never
// copies the token:
//
//   - Linux: mmap(MAP_ANONYMOUS), mlock, and madvise(MADV_DONTDUMP).
//   - Windows: VirtualAlloc and VirtualLock.
//   - Elsewhere: an ordinary heap slice, still zeroed on Close.
//
// On Close the memory is zeroed and released. Any access after Close
// panics; Close is idempotent.
//
// [ReadFile] loads a token file (trimmed of surrounding whitespace)
// into a Buffer. The socket and HTTP platform clients read their token
// when a session opens and close it when the session ends.
package secret
