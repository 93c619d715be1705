// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned by Send on a session (or client)
	// that is not connected.
	ErrNotConnected = errors.New("platform session is not connected")

	// ErrAlreadyConnected is returned by Connect on a session that is
	// already connected.
	ErrAlreadyConnected = errors.New("platform session is already connected")
)

// ConnectionError reports that a session could not be established.
// Nothing was acquired, so there is nothing to disconnect.
type ConnectionError struct {
	// Endpoint names the platform endpoint, when the client knows it.
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("connecting to platform: %v", e.Err)
	}
	return fmt.Sprintf("connecting to platform at %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TransmissionError reports that a batch was not accepted, either
// because the transport failed or because the platform rejected it
// (in which case Err is a *RejectedError).
type TransmissionError struct {
	Endpoint string
	// Records is the number of records in the batch that failed.
	Records int
	Err     error
}

func (e *TransmissionError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("sending %d events: %v", e.Records, e.Err)
	}
	return fmt.Sprintf("sending %d events to %s: %v", e.Records, e.Endpoint, e.Err)
}

func (e *TransmissionError) Unwrap() error { return e.Err }

// RejectedError is a refusal reported by the platform itself, as
// opposed to a transport failure.
type RejectedError struct {
	// StatusCode is the HTTP status for the HTTP client, zero for the
	// socket client.
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("platform rejected request (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("platform rejected request: %s", e.Message)
}

// IsRejected reports whether err is, or wraps, a platform rejection.
func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}
