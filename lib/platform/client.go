// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"

	"github.com/siostechcorp/Windows-Signal/lib/event"
)

// Client is a transport to the platform. Session and Report drive a
// Client through one connect/send/disconnect cycle; implementations
// need not guard against misuse beyond returning errors.
type Client interface {
	// Connect establishes the session. On error nothing is held.
	Connect(ctx context.Context) error

	// Send transmits one batch over the established session. The
	// session stays open whether or not Send succeeds.
	Send(ctx context.Context, batch *event.Batch) error

	// Disconnect releases the session. It must be safe to call after
	// a failed Send.
	Disconnect() error
}

// endpointNamer is implemented by clients that can name their
// endpoint for error messages.
type endpointNamer interface {
	Endpoint() string
}

func endpointOf(client Client) string {
	if namer, ok := client.(endpointNamer); ok {
		return namer.Endpoint()
	}
	return ""
}
