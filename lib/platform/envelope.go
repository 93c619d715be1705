// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package platform

// Socket protocol actions. A connection carries any number of
// request/response exchanges: one ActionOpen, then ActionUpdate per
// batch, then ActionClose.
const (
	ActionOpen   = "session.open"
	ActionUpdate = "events.update"
	ActionClose  = "session.close"
)

// Request is the envelope the SocketClient writes for every action.
type Request struct {
	Action string `cbor:"action"`

	// Token is the raw service token, sent with ActionOpen only.
	Token []byte `cbor:"token,omitempty"`

	// Digest is event.DigestBytes of the uncompressed batch.
	Digest string `cbor:"digest,omitempty"`

	// Encoding is the codec.Compression applied to Batch.
	Encoding string `cbor:"encoding,omitempty"`

	// Batch is a CBOR-encoded event.UpdateMessage, compressed
	// according to Encoding. Carried as a byte string because a
	// compressed payload is not itself CBOR.
	Batch []byte `cbor:"batch,omitempty"`
}

// Response is the envelope the sink writes back for every request.
type Response struct {
	OK    bool   `cbor:"ok"`
	Error string `cbor:"error,omitempty"`

	// Accepted is the number of events stored for ActionUpdate.
	Accepted int `cbor:"accepted,omitempty"`
}
