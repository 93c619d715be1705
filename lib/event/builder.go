// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"fmt"

	"github.com/siostechcorp/Windows-Signal/lib/clock"
	"github.com/siostechcorp/Windows-Signal/lib/description"
	"github.com/siostechcorp/Windows-Signal/lib/vmref"
)

// DefaultEventType is used when neither the input nor the builder
// configuration names an event type.
const DefaultEventType = "Performance"

// TimeLayout is the layout of event times stamped by the builder when
// the input carries none. Inputs that do carry a time are forwarded
// verbatim in whatever offset form they use.
const TimeLayout = "2006-01-02T15:04:05-0700"

// BuilderConfig is the reporting configuration for one invocation.
// It replaces process-wide defaults: every value a record inherits
// from configuration comes from here.
type BuilderConfig struct {
	// EnvironmentID is stamped on every record. Required.
	EnvironmentID EnvironmentID

	// VM is attached to every record. The zero Reference reports
	// events against no specific VM.
	VM vmref.Reference

	// DefaultEventType applies when the input has no EventType.
	// Empty means DefaultEventType.
	DefaultEventType string

	// DefaultCategory applies when the input has no Category. May be
	// empty.
	DefaultCategory string

	// Clock stamps records whose input has no Time. Nil means
	// clock.Real().
	Clock clock.Clock
}

// Builder turns raw inputs into records. A Builder holds no mutable
// state and may be shared.
type Builder struct {
	config BuilderConfig
}

// NewBuilder validates config and returns a Builder.
func NewBuilder(config BuilderConfig) (*Builder, error) {
	if config.EnvironmentID <= 0 {
		return nil, fmt.Errorf("event builder: EnvironmentID is required")
	}
	if config.DefaultEventType == "" {
		config.DefaultEventType = DefaultEventType
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	return &Builder{config: config}, nil
}

// EnvironmentID returns the environment every record is stamped with.
func (b *Builder) EnvironmentID() EnvironmentID {
	return b.config.EnvironmentID
}

// Build produces one record for input with the given layer. Passing
// an empty layer yields the base record that Fanout replicates.
//
// The description is Summary (or Source when there is no summary),
// EventID and Message, joined by the unit separator. Positions are
// fixed: only EventID may be omitted, giving head and Message. An
// empty head or Message fails with description.ErrInvalidParts, and a
// field containing the separator fails with
// description.ErrEncodingConflict.
func (b *Builder) Build(input RawInput, layer Layer) (Record, error) {
	head := input.Summary
	if head == "" {
		head = input.Source
	}
	parts := []string{head}
	if input.EventID != "" {
		parts = append(parts, input.EventID)
	}
	parts = append(parts, input.Message)
	encoded, err := description.Encode(parts...)
	if err != nil {
		return Record{}, fmt.Errorf("encoding description: %w", err)
	}

	eventType := input.EventType
	if eventType == "" {
		eventType = b.config.DefaultEventType
	}
	category := input.Category
	if category == "" {
		category = b.config.DefaultCategory
	}
	eventTime := input.Time
	if eventTime == "" {
		eventTime = b.config.Clock.Now().Format(TimeLayout)
	}

	return Record{
		EnvironmentID: b.config.EnvironmentID,
		Description:   encoded,
		Source:        input.Source,
		Severity:      input.Severity,
		Time:          eventTime,
		EventType:     eventType,
		Category:      category,
		Layer:         layer,
		VM:            b.config.VM,
	}, nil
}

// Records builds the base record for input and fans it out across
// layers. A non-empty input.Layer produces exactly one record.
func (b *Builder) Records(input RawInput) ([]Record, error) {
	base, err := b.Build(input, "")
	if err != nil {
		return nil, err
	}
	return Fanout(base, Layer(input.Layer)), nil
}
