// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the encoding configuration shared by the event
// reporting tools.
//
// Two serialization formats are in use:
//
//   - CBOR for the socket transport between iqreport and a platform
//     endpoint (request and response envelopes, encoded batches) and
//     as the canonical input to batch digests.
//   - JSON for the HTTP transport and for CLI output.
//
// The struct tag on a type documents its serialization format:
//
//   - `cbor` tag: the type only ever travels as CBOR. The socket
//     transport's request and response envelopes are the examples.
//   - `json` tag: the type may be serialized as both JSON and CBOR.
//     fxamacker/cbor reads `json` tags when `cbor` tags are absent,
//     so the batch wire types (event.UpdateMessage and friends) use
//     `json` tags and encode identically under both transports.
//
// Never use both tags on one field.
//
// The CBOR encoder uses Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, smallest integer encoding, no indefinite-length
// items. The same batch always encodes to the same bytes, which is
// what makes [Marshal] output usable as digest input.
//
// Payloads may be compressed before transmission. [Compression]
// names the algorithm; [Compress] and [Decompress] apply it:
//
//	compressed, err := codec.Compress(codec.CompressionZstd, data)
//	original, err := codec.Decompress(codec.CompressionZstd, compressed)
package codec
