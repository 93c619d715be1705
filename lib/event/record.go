// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/siostechcorp/Windows-Signal/lib/vmref"
)

// EnvironmentID identifies the monitored environment that owns a
// batch of events.
type EnvironmentID int64

// ParseEnvironmentID parses a decimal environment ID. IDs are
// positive.
func ParseEnvironmentID(text string) (EnvironmentID, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("environment id %q: %w", text, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("environment id %q: must be positive", text)
	}
	return EnvironmentID(value), nil
}

func (id EnvironmentID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// RawInput is one occurrence as supplied by the caller, before any
// encoding. Severity and Time are opaque to this package: Severity is
// interpreted by the platform, and Time is an ISO-8601 string with a
// UTC offset (2017-10-11T15:18:33-0500) that is forwarded unparsed.
type RawInput struct {
	Source   string
	EventID  string
	Severity string
	Message  string
	Time     string

	// Optional overrides. An empty Summary heads the description
	// with Source instead. An empty Layer requests fan-out.
	Summary   string
	EventType string
	Category  string
	Layer     string
}

// Record is a single platform event, attributed to one layer.
// Records are values; a Record in a Batch is owned by that batch.
type Record struct {
	EnvironmentID EnvironmentID
	// Description is the unit-separator encoded summary, event ID
	// and message.
	Description string
	Source      string
	Severity    string
	Time        string
	EventType   string
	Category    string
	Layer       Layer
	// VM is the zero Reference when the event concerns no specific
	// VM.
	VM vmref.Reference
}
