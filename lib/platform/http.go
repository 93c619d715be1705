// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/siostechcorp/Windows-Signal/lib/codec"
	"github.com/siostechcorp/Windows-Signal/lib/event"
	"github.com/siostechcorp/Windows-Signal/lib/netutil"
	"github.com/siostechcorp/Windows-Signal/lib/secret"
	"github.com/siostechcorp/Windows-Signal/lib/version"
)

// DefaultHTTPTimeout bounds each HTTP request when the caller supplies
// no client of its own.
const DefaultHTTPTimeout = 10 * time.Second

// DigestHeader carries event.DigestBytes of the uncompressed CBOR
// encoding of the batch.
const DigestHeader = "X-Batch-Digest"

// HTTPConfig configures an HTTPClient.
type HTTPConfig struct {
	// BaseURL is the platform API root, e.g. https://iq.example.com/api.
	// Required.
	BaseURL string

	// TokenPath names a file holding a bearer token. Surrounding
	// whitespace is trimmed. The token is read at Connect and held in
	// locked memory until Disconnect. Empty sends no Authorization
	// header.
	TokenPath string

	// Compression sets the request Content-Encoding. Only gzip and
	// zstd are valid over HTTP.
	Compression codec.Compression

	// Timeout applies when HTTPClient is nil. Defaults to
	// DefaultHTTPTimeout.
	Timeout time.Duration

	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// HTTPClient is a Client that holds its session as a server-side
// resource:
//
//	Connect:    POST   {base}/v1/sessions              -> {"session_id": "..."}
//	Send:       POST   {base}/v1/sessions/{id}/events  (UpdateMessage as JSON)
//	Disconnect: DELETE {base}/v1/sessions/{id}
//
// Non-2xx responses are *RejectedError. Not safe for concurrent use.
type HTTPClient struct {
	base        *url.URL
	tokenPath   string
	compression codec.Compression
	http        *http.Client
	logger      *slog.Logger

	token     *secret.Buffer
	sessionID string
}

var _ Client = (*HTTPClient)(nil)

type openSessionRequest struct {
	Client string `json:"client"`
}

type openSessionResponse struct {
	SessionID string `json:"session_id"`
}

// NewHTTPClient validates config. It does not contact the platform.
func NewHTTPClient(config HTTPConfig) (*HTTPClient, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("http client: BaseURL is required")
	}
	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("http client: parsing BaseURL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("http client: BaseURL %q must be http or https", config.BaseURL)
	}
	switch config.Compression {
	case codec.CompressionNone, codec.CompressionGzip, codec.CompressionZstd:
	default:
		return nil, fmt.Errorf("http client: compression %q has no HTTP content coding", config.Compression)
	}

	client := config.HTTPClient
	if client == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &HTTPClient{
		base:        base,
		tokenPath:   config.TokenPath,
		compression: config.Compression,
		http:        client,
		logger:      config.Logger,
	}, nil
}

// Endpoint returns the base URL.
func (c *HTTPClient) Endpoint() string {
	return c.base.String()
}

// Connect opens a session.
func (c *HTTPClient) Connect(ctx context.Context) error {
	if c.sessionID != "" {
		return ErrAlreadyConnected
	}
	if c.tokenPath != "" {
		token, err := secret.ReadFile(c.tokenPath)
		if err != nil {
			return fmt.Errorf("reading bearer token: %w", err)
		}
		c.token = token
	}
	if err := c.open(ctx); err != nil {
		c.releaseToken()
		return err
	}
	c.logger.Debug("http session opened", "session_id", c.sessionID)
	return nil
}

func (c *HTTPClient) open(ctx context.Context) error {
	body, err := json.Marshal(openSessionRequest{Client: version.UserAgent()})
	if err != nil {
		return err
	}
	request, err := c.newRequest(ctx, http.MethodPost, c.endpoint("v1", "sessions"), body)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	if err := checkStatus(response); err != nil {
		return err
	}

	var opened openSessionResponse
	if err := netutil.DecodeResponse(response.Body, &opened); err != nil {
		return fmt.Errorf("opening session: %w", err)
	}
	if opened.SessionID == "" {
		return fmt.Errorf("opening session: response has no session_id")
	}
	c.sessionID = opened.SessionID
	return nil
}

// Send posts batch as JSON to the open session.
func (c *HTTPClient) Send(ctx context.Context, batch *event.Batch) error {
	if c.sessionID == "" {
		return ErrNotConnected
	}

	digest, err := batch.Digest()
	if err != nil {
		return err
	}
	body, err := json.Marshal(batch.Message())
	if err != nil {
		return fmt.Errorf("encoding batch: %w", err)
	}
	body, err = codec.Compress(c.compression, body)
	if err != nil {
		return err
	}

	request, err := c.newRequest(ctx, http.MethodPost, c.endpoint("v1", "sessions", c.sessionID, "events"), body)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set(DigestHeader, digest)
	if c.compression != codec.CompressionNone {
		request.Header.Set("Content-Encoding", string(c.compression))
	}

	response, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	if err := checkStatus(response); err != nil {
		return err
	}
	c.logger.Debug("batch acknowledged", "digest", digest, "records", batch.Len(), "status", response.StatusCode)
	return nil
}

// Disconnect deletes the session. Safe to call when not connected.
func (c *HTTPClient) Disconnect() error {
	if c.sessionID == "" {
		return nil
	}
	sessionID := c.sessionID
	c.sessionID = ""
	defer c.releaseToken()

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	request, err := c.newRequest(ctx, http.MethodDelete, c.endpoint("v1", "sessions", sessionID), nil)
	if err != nil {
		return err
	}
	response, err := c.http.Do(request)
	if err != nil {
		return fmt.Errorf("closing session %s: %w", sessionID, err)
	}
	defer response.Body.Close()
	// A session the platform already expired is as closed as it gets.
	if response.StatusCode == http.StatusNotFound {
		return nil
	}
	if err := checkStatus(response); err != nil {
		return fmt.Errorf("closing session %s: %w", sessionID, err)
	}
	return nil
}

func (c *HTTPClient) endpoint(segments ...string) string {
	return c.base.JoinPath(segments...).String()
}

func (c *HTTPClient) newRequest(ctx context.Context, method, target string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	request, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, target, err)
	}
	request.Header.Set("User-Agent", version.UserAgent())
	if c.token != nil {
		request.Header.Set("Authorization", "Bearer "+c.token.String())
	}
	return request, nil
}

func (c *HTTPClient) releaseToken() {
	if c.token != nil {
		c.token.Close()
		c.token = nil
	}
}

func checkStatus(response *http.Response) error {
	if response.StatusCode/100 == 2 {
		return nil
	}
	message := netutil.ErrorBody(response.Body)
	if message == "" {
		message = http.StatusText(response.StatusCode)
	}
	return &RejectedError{StatusCode: response.StatusCode, Message: message}
}
