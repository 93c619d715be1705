// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

// Package platform transmits event batches to the monitoring
// platform over a stateful session.
//
// A [Client] is the transport: it connects, sends batches, and
// disconnects. Two implementations exist:
//
//   - [SocketClient]: a persistent stream connection (Unix socket or
//     TCP) carrying CBOR request/response envelopes. [Sink] is the
//     receiving end of the same protocol, used in tests and by the
//     iqreport sink command.
//   - [HTTPClient]: JSON over HTTP, with the session held as a
//     server-side resource between Connect and Disconnect.
//
// [Session] enforces the lifecycle on top of any Client:
//
//	Disconnected --Connect--> Connected --Send--> Connected --Disconnect--> Disconnected
//
// [Report] is the complete reporting operation. It connects, sends
// one batch, and disconnects on every path after a successful
// connect, including a failed send and a panic. A failed connect is
// returned immediately as [*ConnectionError] and nothing is torn
// down. A failed send is returned as [*TransmissionError] only after
// the disconnect has run. Nothing is retried; a caller that wants
// retries wraps Report.
//
//	err := platform.Report(ctx, client, batch, logger)
//	var transmission *platform.TransmissionError
//	if errors.As(err, &transmission) { ... }
package platform
