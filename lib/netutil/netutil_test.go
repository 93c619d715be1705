// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
	"testing"
)

func TestIsExpectedCloseError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"closed", net.ErrClosed, true},
		{"wrapped closed", fmt.Errorf("reading response: %w", net.ErrClosed), true},
		{"broken pipe", &net.OpError{Op: "write", Err: syscall.EPIPE}, true},
		{"reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, true},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, false},
		{"other", errors.New("boom"), false},
	}
	for _, test := range tests {
		if got := IsExpectedCloseError(test.err); got != test.want {
			t.Errorf("%s: IsExpectedCloseError(%v) = %v, want %v", test.name, test.err, got, test.want)
		}
	}
}

func TestDecodeResponse(t *testing.T) {
	var decoded struct {
		SessionID string `json:"session_id"`
	}
	if err := DecodeResponse(strings.NewReader(`{"session_id":"s-1"}`), &decoded); err != nil {
		t.Fatalf("DecodeResponse: %v", err)
	}
	if decoded.SessionID != "s-1" {
		t.Errorf("session_id = %q", decoded.SessionID)
	}
	if err := DecodeResponse(strings.NewReader(`not json`), &decoded); err == nil {
		t.Error("DecodeResponse accepted invalid JSON")
	}
}

func TestErrorBodyTruncates(t *testing.T) {
	if got := ErrorBody(strings.NewReader("  environment not found \n")); got != "environment not found" {
		t.Errorf("ErrorBody = %q", got)
	}
	long := ErrorBody(strings.NewReader(strings.Repeat("x", 2000)))
	if len(long) != maxErrorBody+3 || !strings.HasSuffix(long, "...") {
		t.Errorf("long ErrorBody has length %d", len(long))
	}
}
