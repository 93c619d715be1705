// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/siostechcorp/Windows-Signal/lib/event"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateDisconnected State = iota
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session drives a Client through one connect/send/disconnect
// lifecycle. A Session is used by a single goroutine and is not
// reused after Disconnect.
type Session struct {
	client   Client
	endpoint string
	logger   *slog.Logger
	state    State
}

// NewSession wraps client. A nil logger uses slog.Default().
func NewSession(client Client, logger *slog.Logger) *Session {
	if client == nil {
		panic("platform.NewSession: client is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	endpoint := endpointOf(client)
	if endpoint != "" {
		logger = logger.With("endpoint", endpoint)
	}
	return &Session{
		client:   client,
		endpoint: endpoint,
		logger:   logger,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Connect establishes the session. A transport failure is returned as
// *ConnectionError and leaves the session disconnected.
func (s *Session) Connect(ctx context.Context) error {
	if s.state == StateConnected {
		return ErrAlreadyConnected
	}
	if err := s.client.Connect(ctx); err != nil {
		var connectionErr *ConnectionError
		if errors.As(err, &connectionErr) {
			return err
		}
		return &ConnectionError{Endpoint: s.endpoint, Err: err}
	}
	s.state = StateConnected
	s.logger.Debug("platform session connected")
	return nil
}

// Send transmits batch. It requires a connected session; a failure is
// returned as *TransmissionError and the session stays connected.
func (s *Session) Send(ctx context.Context, batch *event.Batch) error {
	if s.state != StateConnected {
		return ErrNotConnected
	}
	if batch == nil || batch.Len() == 0 {
		return event.ErrEmptyBatch
	}
	if err := s.client.Send(ctx, batch); err != nil {
		var transmissionErr *TransmissionError
		if errors.As(err, &transmissionErr) {
			return err
		}
		return &TransmissionError{Endpoint: s.endpoint, Records: batch.Len(), Err: err}
	}
	return nil
}

// Disconnect tears the session down. It is valid in any state: the
// client's Disconnect runs once per successful Connect, and further
// calls are no-ops. A client error is logged and returned, but the
// session is disconnected either way.
func (s *Session) Disconnect() error {
	if s.state != StateConnected {
		return nil
	}
	s.state = StateDisconnected
	if err := s.client.Disconnect(); err != nil {
		s.logger.Warn("platform disconnect failed", "error", err)
		return err
	}
	s.logger.Debug("platform session disconnected")
	return nil
}

// Report sends batch in a session of its own: connect, send,
// disconnect. A failed connect is returned immediately. Once
// connected, the session is disconnected before Report returns on
// every path, and a send failure is returned after that disconnect.
// Disconnect failures are logged, not returned: the batch outcome is
// already decided by then.
func Report(ctx context.Context, client Client, batch *event.Batch, logger *slog.Logger) error {
	if batch == nil || batch.Len() == 0 {
		return event.ErrEmptyBatch
	}
	if logger == nil {
		logger = slog.Default()
	}

	session := NewSession(client, logger)
	started := time.Now()
	if err := session.Connect(ctx); err != nil {
		return err
	}
	defer session.Disconnect()

	if err := session.Send(ctx, batch); err != nil {
		return err
	}

	session.logger.Info("events reported",
		"environment_id", batch.EnvironmentID,
		"records", batch.Len(),
		"duration", time.Since(started),
	)
	return nil
}
