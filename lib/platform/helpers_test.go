// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"io"
	"log/slog"
	"testing"

	"github.com/siostechcorp/Windows-Signal/lib/event"
	"github.com/siostechcorp/Windows-Signal/lib/vmref"
)

const testEnvironment event.EnvironmentID = 180005401

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testBatch builds the fanned-out batch for one application error on
// the VM with hardware address 00-15-5D-01-02-03.
func testBatch(t *testing.T) *event.Batch {
	t.Helper()
	reference, err := vmref.Resolve(vmref.HardwareAddress("00:15:5d:01:02:03"))
	if err != nil {
		t.Fatalf("vmref.Resolve: %v", err)
	}
	builder, err := event.NewBuilder(event.BuilderConfig{
		EnvironmentID: testEnvironment,
		VM:            reference,
	})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	records, err := builder.Records(event.RawInput{
		Source:   "App",
		EventID:  "1001",
		Severity: "Error",
		Message:  "Disk full",
		Time:     "2017-10-11T15:18:33-0500",
	})
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	batch, err := event.Assemble(testEnvironment, records)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return batch
}
