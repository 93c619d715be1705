// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

// Package event builds the records and batches reported to the
// monitoring platform.
//
// One reported occurrence (for example a Windows system log entry)
// becomes one or more [Record] values, one per infrastructure
// [Layer]. The [Builder] holds the explicit reporting configuration
// (environment, VM identity, defaults) and turns a [RawInput] into a
// base record; [Fanout] replicates that record across the layers:
//
//   - with an explicit layer, exactly one record tagged with it;
//   - without one, three records in the order Compute, Network,
//     Storage, identical except for Layer.
//
// The monitoring platform correlates metrics per layer, and a single
// occurrence that names no layer is attributed to all three rather
// than silently to one.
//
// [Assemble] wraps the records into a [Batch] for one environment.
// [Batch.Message] produces the [UpdateMessage] wire value that the
// platform clients encode, and [Batch.Digest] a stable identifier for
// the batch content.
//
// Typical use:
//
//	builder, err := event.NewBuilder(event.BuilderConfig{
//	    EnvironmentID: 180005401,
//	    VM:            reference,
//	})
//	records, err := builder.Records(input)
//	batch, err := event.Assemble(180005401, records)
package event
