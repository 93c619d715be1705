// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package description

import (
	"errors"
	"fmt"
	"strings"
)

// Separator is the ASCII unit separator. Its position in a
// description is meaningful to the platform; it never appears inside
// a part.
const Separator = '\x1f'

const (
	minParts = 2
	maxParts = 3
)

var (
	// ErrEncodingConflict is matched (via errors.Is) by every error
	// Encode returns for a part that contains Separator.
	ErrEncodingConflict = errors.New("description part contains the unit separator")

	// ErrInvalidParts is returned for the wrong number of parts or an
	// empty part.
	ErrInvalidParts = errors.New("invalid description parts")
)

// ConflictError reports which part contained the separator.
type ConflictError struct {
	// Index is the zero-based position of the offending part.
	Index int
	// Offset is the byte offset of the first separator within the
	// part.
	Offset int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("description part %d contains the unit separator at byte %d", e.Index, e.Offset)
}

// Is makes errors.Is(err, ErrEncodingConflict) true for any
// *ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrEncodingConflict
}

// Encode joins 2 or 3 non-empty parts with Separator, in the order
// given.
func Encode(parts ...string) (string, error) {
	if len(parts) < minParts || len(parts) > maxParts {
		return "", fmt.Errorf("%w: got %d parts, want %d or %d", ErrInvalidParts, len(parts), minParts, maxParts)
	}
	for index, part := range parts {
		if part == "" {
			return "", fmt.Errorf("%w: part %d is empty", ErrInvalidParts, index)
		}
		if offset := strings.IndexRune(part, Separator); offset >= 0 {
			return "", &ConflictError{Index: index, Offset: offset}
		}
	}
	return strings.Join(parts, string(Separator)), nil
}

// Decode splits a description into its parts. For any output of
// Encode, Decode returns the original parts.
func Decode(description string) []string {
	return strings.Split(description, string(Separator))
}

// Printable renders a description with each separator shown as " | "
// for logs and terminal output. The result is not decodable.
func Printable(description string) string {
	return strings.ReplaceAll(description, string(Separator), " | ")
}
