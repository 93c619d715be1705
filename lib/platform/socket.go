// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/siostechcorp/Windows-Signal/lib/codec"
	"github.com/siostechcorp/Windows-Signal/lib/event"
	"github.com/siostechcorp/Windows-Signal/lib/netutil"
	"github.com/siostechcorp/Windows-Signal/lib/secret"
)

const (
	// DefaultDialTimeout bounds the connect phase only.
	DefaultDialTimeout = 5 * time.Second

	// DefaultResponseTimeout bounds each request/response exchange.
	DefaultResponseTimeout = 30 * time.Second

	// closeTimeout bounds the best-effort session.close exchange
	// during Disconnect.
	closeTimeout = 2 * time.Second
)

// SocketConfig configures a SocketClient.
type SocketConfig struct {
	// Network is "unix" or "tcp". Empty means "unix".
	Network string

	// Address is the socket path or host:port. Required.
	Address string

	// TokenPath names a file holding the service token sent when the
	// session opens. It is read at each Connect and released once the
	// session is open. Empty sends no token.
	TokenPath string

	// Compression is applied to each encoded batch.
	Compression codec.Compression

	// DialTimeout and ResponseTimeout default to DefaultDialTimeout
	// and DefaultResponseTimeout.
	DialTimeout     time.Duration
	ResponseTimeout time.Duration

	Logger *slog.Logger
}

// SocketClient is a Client speaking the CBOR envelope protocol over a
// single persistent stream connection. Not safe for concurrent use.
type SocketClient struct {
	config SocketConfig
	logger *slog.Logger

	conn    net.Conn
	encoder *codec.Encoder
	decoder *codec.Decoder
}

var _ Client = (*SocketClient)(nil)

// NewSocketClient validates config. It does not connect.
func NewSocketClient(config SocketConfig) (*SocketClient, error) {
	if config.Address == "" {
		return nil, fmt.Errorf("socket client: Address is required")
	}
	switch config.Network {
	case "":
		config.Network = "unix"
	case "unix", "tcp":
	default:
		return nil, fmt.Errorf("socket client: unsupported network %q (want unix or tcp)", config.Network)
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = DefaultDialTimeout
	}
	if config.ResponseTimeout <= 0 {
		config.ResponseTimeout = DefaultResponseTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &SocketClient{
		config: config,
		logger: config.Logger,
	}, nil
}

// Endpoint returns network:address.
func (c *SocketClient) Endpoint() string {
	return c.config.Network + ":" + c.config.Address
}

// Connect dials the endpoint and opens a session. A refused open is
// returned as *RejectedError and the connection is closed.
func (c *SocketClient) Connect(ctx context.Context) error {
	if c.conn != nil {
		return ErrAlreadyConnected
	}

	open := &Request{Action: ActionOpen}
	if c.config.TokenPath != "" {
		token, err := secret.ReadFile(c.config.TokenPath)
		if err != nil {
			return fmt.Errorf("reading service token: %w", err)
		}
		defer token.Close()
		open.Token = token.Bytes()
	}

	dialer := net.Dialer{Timeout: c.config.DialTimeout}
	conn, err := dialer.DialContext(ctx, c.config.Network, c.config.Address)
	if err != nil {
		return fmt.Errorf("dialing: %w", err)
	}
	c.conn = conn
	c.encoder = codec.NewEncoder(conn)
	c.decoder = codec.NewDecoder(conn)

	response, err := c.roundTrip(ctx, c.config.ResponseTimeout, open)
	if err == nil && !response.OK {
		err = &RejectedError{Message: response.Error}
	}
	if err != nil {
		c.closeConnection()
		return fmt.Errorf("opening session: %w", err)
	}
	return nil
}

// Send encodes, compresses, and transmits batch, then waits for the
// platform's acknowledgment.
func (c *SocketClient) Send(ctx context.Context, batch *event.Batch) error {
	if c.conn == nil {
		return ErrNotConnected
	}

	data, err := codec.Marshal(batch.Message())
	if err != nil {
		return fmt.Errorf("encoding batch: %w", err)
	}
	digest := event.DigestBytes(data)
	payload, err := codec.Compress(c.config.Compression, data)
	if err != nil {
		return err
	}

	response, err := c.roundTrip(ctx, c.config.ResponseTimeout, &Request{
		Action:   ActionUpdate,
		Digest:   digest,
		Encoding: string(c.config.Compression),
		Batch:    payload,
	})
	if err != nil {
		return err
	}
	if !response.OK {
		return &RejectedError{Message: response.Error}
	}

	c.logger.Debug("batch acknowledged",
		"digest", digest,
		"records", batch.Len(),
		"accepted", response.Accepted,
		"bytes", len(payload),
	)
	return nil
}

// Disconnect closes the session with a best-effort session.close and
// releases the connection. Safe to call when not connected.
func (c *SocketClient) Disconnect() error {
	if c.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	_, closeErr := c.roundTrip(ctx, closeTimeout, &Request{Action: ActionClose})
	if closeErr != nil && !netutil.IsExpectedCloseError(closeErr) {
		c.logger.Debug("session close exchange failed", "error", closeErr)
	}

	if err := c.closeConnection(); err != nil && !netutil.IsExpectedCloseError(err) {
		return fmt.Errorf("closing connection: %w", err)
	}
	return nil
}

// roundTrip writes one request and reads one response within timeout
// (or ctx's deadline, if sooner). Cancelling ctx interrupts the
// exchange by expiring the connection deadline.
func (c *SocketClient) roundTrip(ctx context.Context, timeout time.Duration, request *Request) (*Response, error) {
	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("setting deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := c.encoder.Encode(request); err != nil {
		return nil, fmt.Errorf("writing %s request: %w", request.Action, contextError(ctx, err))
	}
	var response Response
	if err := c.decoder.Decode(&response); err != nil {
		return nil, fmt.Errorf("reading %s response: %w", request.Action, contextError(ctx, err))
	}
	return &response, nil
}

func (c *SocketClient) closeConnection() error {
	err := c.conn.Close()
	c.conn, c.encoder, c.decoder = nil, nil, nil
	return err
}

// contextError prefers the context's error when the context ended the
// exchange, so callers see context.Canceled rather than an i/o
// timeout.
func contextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w (%v)", ctxErr, err)
	}
	return err
}
