// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package event

import (
	"encoding/hex"
	"errors"
	"fmt"
	"slices"

	"github.com/zeebo/blake3"

	"github.com/siostechcorp/Windows-Signal/lib/codec"
)

// ErrEmptyBatch is returned by Assemble when there are no records.
var ErrEmptyBatch = errors.New("event batch has no records")

// Batch is the unit of transmission: the records of one reporting
// call, all belonging to one environment. A Batch is sent once and
// then discarded.
type Batch struct {
	EnvironmentID EnvironmentID
	Records       []Record
}

// Assemble wraps records into a batch for environmentID. The records
// are copied. A record from a different environment is a bug in the
// code that built it, and Assemble panics rather than reporting it
// under the wrong environment.
func Assemble(environmentID EnvironmentID, records []Record) (*Batch, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}
	for index, record := range records {
		if record.EnvironmentID != environmentID {
			panic(fmt.Sprintf("event.Assemble: record %d has environment %d, batch has %d",
				index, record.EnvironmentID, environmentID))
		}
	}
	return &Batch{
		EnvironmentID: environmentID,
		Records:       slices.Clone(records),
	}, nil
}

// Len returns the number of records.
func (b *Batch) Len() int {
	return len(b.Records)
}

// Message converts the batch to its wire form.
func (b *Batch) Message() *UpdateMessage {
	message := &UpdateMessage{
		EnvironmentID: int64(b.EnvironmentID),
		Events:        make([]WireEvent, len(b.Records)),
	}
	for i, record := range b.Records {
		message.Events[i] = wireEvent(record)
	}
	return message
}

// Digest returns the hex BLAKE3-256 digest of the batch's
// deterministic CBOR encoding. Identical batches have identical
// digests, so the platform can use it to discard a retransmitted
// batch.
func (b *Batch) Digest() (string, error) {
	data, err := codec.Marshal(b.Message())
	if err != nil {
		return "", fmt.Errorf("encoding batch for digest: %w", err)
	}
	return DigestBytes(data), nil
}

// DigestBytes returns the hex BLAKE3-256 digest of an encoded
// UpdateMessage. Receivers use it to check a transmitted batch
// against the digest sent with it.
func DigestBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
