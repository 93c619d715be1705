// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package platform

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/siostechcorp/Windows-Signal/lib/event"
)

// fakeClient records the calls made on it and fails on demand.
type fakeClient struct {
	mu    sync.Mutex
	calls []string
	sent  []*event.Batch

	connectErr    error
	sendErr       error
	disconnectErr error

	// sendPanic, when non-nil, is panicked with from Send after the
	// call is recorded.
	sendPanic any
}

func (f *fakeClient) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "connect")
	return f.connectErr
}

func (f *fakeClient) Send(ctx context.Context, batch *event.Batch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "send")
	if f.sendPanic != nil {
		panic(f.sendPanic)
	}
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, batch)
	return nil
}

func (f *fakeClient) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "disconnect")
	return f.disconnectErr
}

func (f *fakeClient) Endpoint() string {
	return "fake:platform"
}

func (f *fakeClient) recordedCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

func TestReportSuccess(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	batch := testBatch(t)

	if err := Report(context.Background(), client, batch, discardLogger()); err != nil {
		t.Fatalf("Report: %v", err)
	}

	want := []string{"connect", "send", "disconnect"}
	if got := client.recordedCalls(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if len(client.sent) != 1 || client.sent[0] != batch {
		t.Errorf("sent = %v, want the one batch passed to Report", client.sent)
	}
}

func TestReportConnectFailure(t *testing.T) {
	t.Parallel()

	refused := errors.New("connection refused")
	client := &fakeClient{connectErr: refused}

	err := Report(context.Background(), client, testBatch(t), discardLogger())

	var connectionErr *ConnectionError
	if !errors.As(err, &connectionErr) {
		t.Fatalf("Report error = %v (%T), want *ConnectionError", err, err)
	}
	if !errors.Is(err, refused) {
		t.Errorf("ConnectionError does not wrap the client error: %v", err)
	}
	if connectionErr.Endpoint != "fake:platform" {
		t.Errorf("Endpoint = %q, want %q", connectionErr.Endpoint, "fake:platform")
	}

	// Neither send nor disconnect may run when nothing was connected.
	want := []string{"connect"}
	if got := client.recordedCalls(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestReportSendFailureDisconnects(t *testing.T) {
	t.Parallel()

	broken := errors.New("broken pipe")
	client := &fakeClient{sendErr: broken}
	batch := testBatch(t)

	err := Report(context.Background(), client, batch, discardLogger())

	var transmissionErr *TransmissionError
	if !errors.As(err, &transmissionErr) {
		t.Fatalf("Report error = %v (%T), want *TransmissionError", err, err)
	}
	if !errors.Is(err, broken) {
		t.Errorf("TransmissionError does not wrap the client error: %v", err)
	}
	if transmissionErr.Records != batch.Len() {
		t.Errorf("Records = %d, want %d", transmissionErr.Records, batch.Len())
	}

	// Report returns only after the deferred disconnect ran.
	want := []string{"connect", "send", "disconnect"}
	if got := client.recordedCalls(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestReportPanicInSendStillDisconnects(t *testing.T) {
	t.Parallel()

	client := &fakeClient{sendPanic: "transport exploded"}
	batch := testBatch(t)

	func() {
		defer func() {
			if recovered := recover(); recovered != "transport exploded" {
				t.Errorf("recovered %v, want the Send panic to propagate", recovered)
			}
		}()
		Report(context.Background(), client, batch, discardLogger())
		t.Error("Report returned normally after Send panicked")
	}()

	want := []string{"connect", "send", "disconnect"}
	if got := client.recordedCalls(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestReportDisconnectFailureIsNotReturned(t *testing.T) {
	t.Parallel()

	client := &fakeClient{disconnectErr: errors.New("already gone")}

	if err := Report(context.Background(), client, testBatch(t), discardLogger()); err != nil {
		t.Fatalf("Report: %v, want nil (disconnect errors are only logged)", err)
	}
}

func TestReportEmptyBatch(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}

	err := Report(context.Background(), client, &event.Batch{EnvironmentID: testEnvironment}, discardLogger())
	if !errors.Is(err, event.ErrEmptyBatch) {
		t.Fatalf("Report error = %v, want ErrEmptyBatch", err)
	}
	if got := client.recordedCalls(); len(got) != 0 {
		t.Errorf("calls = %v, want none", got)
	}
}

func TestSessionStateErrors(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	session := NewSession(client, discardLogger())
	ctx := context.Background()

	if got := session.State(); got != StateDisconnected {
		t.Fatalf("initial State = %v, want %v", got, StateDisconnected)
	}
	if err := session.Send(ctx, testBatch(t)); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send before Connect = %v, want ErrNotConnected", err)
	}
	if err := session.Disconnect(); err != nil {
		t.Errorf("Disconnect before Connect = %v, want nil", err)
	}

	if err := session.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := session.State(); got != StateConnected {
		t.Fatalf("State after Connect = %v, want %v", got, StateConnected)
	}
	if err := session.Connect(ctx); !errors.Is(err, ErrAlreadyConnected) {
		t.Errorf("second Connect = %v, want ErrAlreadyConnected", err)
	}
	if err := session.Send(ctx, nil); !errors.Is(err, event.ErrEmptyBatch) {
		t.Errorf("Send(nil) = %v, want ErrEmptyBatch", err)
	}

	if err := session.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if err := session.Disconnect(); err != nil {
		t.Fatalf("second Disconnect: %v", err)
	}

	want := []string{"connect", "disconnect"}
	if got := client.recordedCalls(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v (client disconnect exactly once)", got, want)
	}
}

func TestSessionDisconnectErrorStillDisconnects(t *testing.T) {
	t.Parallel()

	closing := errors.New("close failed")
	client := &fakeClient{disconnectErr: closing}
	session := NewSession(client, discardLogger())

	if err := session.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := session.Disconnect(); !errors.Is(err, closing) {
		t.Errorf("Disconnect = %v, want %v", err, closing)
	}
	if got := session.State(); got != StateDisconnected {
		t.Errorf("State = %v, want %v", got, StateDisconnected)
	}
}

func TestNewSessionNilClientPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("NewSession(nil) did not panic")
		}
	}()
	NewSession(nil, nil)
}

func TestStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{StateDisconnected, "disconnected"},
		{StateConnected, "connected"},
		{State(7), "State(7)"},
	}
	for _, test := range tests {
		if got := test.state.String(); got != test.want {
			t.Errorf("State(%d).String() = %q, want %q", int(test.state), got, test.want)
		}
	}
}
