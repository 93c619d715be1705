// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

// Package description packs several text fields into the single
// description string carried by a platform event.
//
// The platform splits a description on the ASCII unit separator
// (U+001F) to recover the summary, the event ID, and the message, so
// the parts must be joined in that order and none of them may contain
// the separator itself. [Encode] enforces both: a part containing the
// separator fails with [ErrEncodingConflict] instead of producing a
// description the platform would split at the wrong place.
//
//	text, err := description.Encode("Service Control Manager", "7036", "The service entered the stopped state.")
//	parts := description.Decode(text) // the three parts again
package description
