// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/siostechcorp/Windows-Signal/lib/codec"
	"github.com/siostechcorp/Windows-Signal/lib/event"
	"github.com/siostechcorp/Windows-Signal/lib/netutil"
	"github.com/siostechcorp/Windows-Signal/lib/secret"
)

// DefaultIdleTimeout is how long the sink waits for the next request
// on an open connection before dropping it.
const DefaultIdleTimeout = 60 * time.Second

// BatchHandler receives each accepted batch. Returning an error
// rejects the batch; the message is sent back to the client.
type BatchHandler func(ctx context.Context, digest string, message *event.UpdateMessage) error

// SinkConfig configures a Sink.
type SinkConfig struct {
	// Handler is called for every valid batch. Required.
	Handler BatchHandler

	// Token, when non-nil, must match the token presented at
	// session.open. The Sink does not close it.
	Token *secret.Buffer

	// IdleTimeout defaults to DefaultIdleTimeout.
	IdleTimeout time.Duration

	Logger *slog.Logger
}

// Sink is the receiving end of the socket protocol. Each connection
// is one session: session.open, any number of events.update, then
// session.close (or the client hanging up).
type Sink struct {
	handler     BatchHandler
	token       *secret.Buffer
	idleTimeout time.Duration
	logger      *slog.Logger

	// activeConnections tracks in-flight sessions so Serve can wait
	// for them before returning.
	activeConnections sync.WaitGroup
}

// NewSink creates a Sink. Panics if config.Handler is nil.
func NewSink(config SinkConfig) *Sink {
	if config.Handler == nil {
		panic("platform.NewSink: Handler is required")
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = DefaultIdleTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Sink{
		handler:     config.Handler,
		token:       config.Token,
		idleTimeout: config.IdleTimeout,
		logger:      config.Logger,
	}
}

// Listen opens a listener for a Sink. For the unix network, a stale
// socket file at address is removed first.
func Listen(network, address string) (net.Listener, error) {
	if network == "unix" {
		if err := os.Remove(address); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing stale socket %s: %w", address, err)
		}
	}
	listener, err := net.Listen(network, address)
	if err != nil {
		return nil, fmt.Errorf("listening on %s:%s: %w", network, address, err)
	}
	return listener, nil
}

// Serve accepts sessions on listener until ctx is cancelled, then
// closes the listener and all open connections and waits for their
// handlers to finish.
func (s *Sink) Serve(ctx context.Context, listener net.Listener) error {
	defer listener.Close()

	stopAccept := context.AfterFunc(ctx, func() {
		listener.Close()
	})
	defer stopAccept()

	s.logger.Info("sink listening", "address", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.serveConnection(ctx, conn)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

func (s *Sink) serveConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	encoder := codec.NewEncoder(conn)
	decoder := codec.NewDecoder(conn)
	opened := false

	for {
		conn.SetDeadline(time.Now().Add(s.idleTimeout))

		var request Request
		if err := decoder.Decode(&request); err != nil {
			if !netutil.IsExpectedCloseError(err) && ctx.Err() == nil {
				s.logger.Warn("reading request failed", "error", err)
			}
			return
		}

		response, done := s.handle(ctx, &request, &opened)
		if err := encoder.Encode(response); err != nil {
			if !netutil.IsExpectedCloseError(err) {
				s.logger.Warn("writing response failed", "action", request.Action, "error", err)
			}
			return
		}
		if done {
			return
		}
	}
}

// handle processes one request. done reports that the session ended.
func (s *Sink) handle(ctx context.Context, request *Request, opened *bool) (response *Response, done bool) {
	switch request.Action {
	case ActionOpen:
		if s.token != nil && !s.token.Equal(request.Token) {
			return &Response{Error: "invalid service token"}, true
		}
		*opened = true
		return &Response{OK: true}, false

	case ActionUpdate:
		if !*opened {
			return &Response{Error: "session not open"}, true
		}
		message, err := s.decodeBatch(request)
		if err != nil {
			s.logger.Warn("rejecting batch", "digest", request.Digest, "error", err)
			return &Response{Error: err.Error()}, false
		}
		if err := s.handler(ctx, request.Digest, message); err != nil {
			return &Response{Error: err.Error()}, false
		}
		return &Response{OK: true, Accepted: len(message.Events)}, false

	case ActionClose:
		return &Response{OK: true}, true

	default:
		return &Response{Error: fmt.Sprintf("unknown action %q", request.Action)}, false
	}
}

// decodeBatch decompresses and decodes the batch carried by request,
// checking its digest and environment consistency.
func (s *Sink) decodeBatch(request *Request) (*event.UpdateMessage, error) {
	compression, err := codec.ParseCompression(request.Encoding)
	if err != nil {
		return nil, err
	}
	data, err := codec.Decompress(compression, request.Batch)
	if err != nil {
		return nil, err
	}
	if request.Digest != "" {
		if actual := event.DigestBytes(data); actual != request.Digest {
			return nil, fmt.Errorf("digest mismatch: declared %s, computed %s", request.Digest, actual)
		}
	}

	var message event.UpdateMessage
	if err := codec.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("decoding batch: %w", err)
	}
	if len(message.Events) == 0 {
		return nil, event.ErrEmptyBatch
	}
	for index, wire := range message.Events {
		if wire.EnvironmentID != message.EnvironmentID {
			return nil, fmt.Errorf("event %d belongs to environment %d, batch to %d",
				index, wire.EnvironmentID, message.EnvironmentID)
		}
	}
	return &message, nil
}
