// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/siostechcorp/Windows-Signal/lib/clock"
	"github.com/siostechcorp/Windows-Signal/lib/config"
	"github.com/siostechcorp/Windows-Signal/lib/description"
	"github.com/siostechcorp/Windows-Signal/lib/event"
	"github.com/siostechcorp/Windows-Signal/lib/platform"
	"github.com/siostechcorp/Windows-Signal/lib/testutil"
	"github.com/siostechcorp/Windows-Signal/lib/vmref"
)

// syncBuffer is a bytes.Buffer safe for a command writing from one
// goroutine while the test reads from another.
type syncBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}

type testStreams struct {
	Streams
	stdout *syncBuffer
	stderr *syncBuffer
	clock  *clock.FakeClock
}

// newTestStreams isolates a command from the process environment:
// buffered output, a fake clock, and no IQREPORT_CONFIG.
func newTestStreams(t *testing.T) *testStreams {
	t.Helper()
	t.Setenv(config.EnvVar, "")
	streams := &testStreams{
		stdout: &syncBuffer{},
		stderr: &syncBuffer{},
		clock:  clock.Fake(time.Date(2017, 10, 11, 20, 18, 33, 0, time.UTC)),
	}
	streams.Streams = Streams{
		Stdin:  strings.NewReader(""),
		Stdout: streams.stdout,
		Stderr: streams.stderr,
		Clock:  streams.clock,
	}
	return streams
}

func (s *testStreams) run(args ...string) error {
	return Root(s.Streams).Execute(context.Background(), args)
}

// startSink serves the socket protocol on a fresh unix socket until the
// test ends and returns the socket path and the accepted batches.
func startSink(t *testing.T) (string, <-chan *event.UpdateMessage) {
	t.Helper()
	address := filepath.Join(testutil.SocketDir(t), "platform.sock")
	listener, err := platform.Listen("unix", address)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	received := make(chan *event.UpdateMessage, 8)
	sink := platform.NewSink(platform.SinkConfig{
		Handler: func(ctx context.Context, digest string, message *event.UpdateMessage) error {
			received <- message
			return nil
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		sink.Serve(ctx, listener)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return address, received
}

func layersOf(message *event.UpdateMessage) []string {
	var layers []string
	for _, wire := range message.Events {
		layers = append(layers, wire.Layer)
	}
	return layers
}

func TestSendReportsEveryLayer(t *testing.T) {
	streams := newTestStreams(t)
	address, received := startSink(t)

	err := streams.run("send",
		"--address", address,
		"--environment-id", "180005401",
		"--mac", "00:15:5d:01:02:03",
		"--source", "App",
		"--event-id", "1001",
		"--severity", "Error",
		"--message", "Disk full",
		"--time", "2017-10-11T15:18:33-0500",
	)
	if err != nil {
		t.Fatalf("send: %v\nstderr: %s", err, streams.stderr.String())
	}

	message := testutil.RequireReceive(t, received, 5*time.Second, "waiting for batch")
	if got := strings.Join(layersOf(message), ","); got != "Compute,Network,Storage" {
		t.Errorf("layers = %s, want Compute,Network,Storage", got)
	}
	for _, wire := range message.Events {
		if wire.EnvironmentID != 180005401 {
			t.Errorf("EnvironmentID = %d, want 180005401", wire.EnvironmentID)
		}
		if wire.Description != "App\x1f1001\x1fDisk full" {
			t.Errorf("Description = %q", wire.Description)
		}
		if wire.EventType != event.DefaultEventType {
			t.Errorf("EventType = %q, want %q", wire.EventType, event.DefaultEventType)
		}
		if wire.Time != "2017-10-11T15:18:33-0500" {
			t.Errorf("Time = %q", wire.Time)
		}
		if len(wire.VMs) != 1 || wire.VMs[0].NetworkInterfaces[0].HWAddress != "00-15-5D-01-02-03" {
			t.Errorf("VMs = %+v", wire.VMs)
		}
	}

	if !strings.HasPrefix(streams.stdout.String(), "reported 3 event(s) to environment 180005401") {
		t.Errorf("stdout = %q", streams.stdout.String())
	}
}

func TestSendExplicitLayerAndIdentifiers(t *testing.T) {
	streams := newTestStreams(t)
	address, received := startSink(t)

	err := streams.run("send",
		"--address", address,
		"--environment-id", "42",
		"--vm-uuid", "4A1B2C3D-0000-4000-8000-000000000001",
		"--vm-uuid", "hyperv-guest-7",
		"--source", "Disk",
		"--event-id", "153",
		"--severity", "Warning",
		"--message", "IO retried",
		"--layer", "Storage",
		"--category", "Hardware",
	)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	message := testutil.RequireReceive(t, received, 5*time.Second, "waiting for batch")
	if len(message.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(message.Events))
	}
	wire := message.Events[0]
	if wire.Layer != "Storage" || wire.Category != "Hardware" {
		t.Errorf("layer/category = %s/%s, want Storage/Hardware", wire.Layer, wire.Category)
	}
	want := "4a1b2c3d-0000-4000-8000-000000000001,hyperv-guest-7"
	if got := strings.Join(wire.VMUUIDs, ","); got != want {
		t.Errorf("VMUUIDs = %s, want %s", got, want)
	}
	if len(wire.VMs) != 0 {
		t.Errorf("VMs = %+v, want none when addressing by identifier", wire.VMs)
	}
}

func TestSendStampsTimeFromClock(t *testing.T) {
	streams := newTestStreams(t)
	address, received := startSink(t)

	err := streams.run("send",
		"--address", address,
		"--environment-id", "42",
		"--source", "App",
		"--severity", "Information",
		"--message", "Service started",
	)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	message := testutil.RequireReceive(t, received, 5*time.Second, "waiting for batch")
	want := streams.clock.Now().Format(event.TimeLayout)
	if got := message.Events[0].Time; got != want {
		t.Errorf("Time = %q, want %q", got, want)
	}
	if got := message.Events[0].Description; got != "App\x1fService started" {
		t.Errorf("Description = %q, want a two-part description without event id", got)
	}
	if len(message.Events[0].VMs) != 0 || len(message.Events[0].VMUUIDs) != 0 {
		t.Errorf("event names a VM, want none")
	}
}

func TestSendConfigFile(t *testing.T) {
	streams := newTestStreams(t)
	address, received := startSink(t)

	configPath := filepath.Join(t.TempDir(), "iqreport.yaml")
	content := `
environment: staging
environment_id: 180005401
vm:
  hardware_address: 00-15-5d-aa-bb-cc
events:
  default_event_type: Availability
platform:
  transport: unix
  address: ` + address + `
  compression: zstd
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv(config.EnvVar, configPath)

	err := streams.run("send", "--source", "App", "--event-id", "1001", "--severity", "Error", "--message", "Disk full")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	message := testutil.RequireReceive(t, received, 5*time.Second, "waiting for batch")
	if message.EnvironmentID != 180005401 {
		t.Errorf("EnvironmentID = %d, want 180005401", message.EnvironmentID)
	}
	if got := message.Events[0].EventType; got != "Availability" {
		t.Errorf("EventType = %q, want Availability from config", got)
	}
	if got := message.Events[0].VMs[0].NetworkInterfaces[0].HWAddress; got != "00-15-5D-AA-BB-CC" {
		t.Errorf("HWAddress = %q", got)
	}
	if !strings.Contains(streams.stderr.String(), "events reported") {
		t.Errorf("stderr does not log the report:\n%s", streams.stderr.String())
	}
}

func TestSendFlagOverridesConfigVM(t *testing.T) {
	streams := newTestStreams(t)
	address, received := startSink(t)

	configPath := filepath.Join(t.TempDir(), "iqreport.yaml")
	content := "environment_id: 7\nvm:\n  hardware_address: 00-15-5d-aa-bb-cc\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	err := streams.run("send", "--config", configPath, "--address", address,
		"--vm-uuid", "guest-1", "--source", "App", "--severity", "Error", "--message", "Disk full")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	message := testutil.RequireReceive(t, received, 5*time.Second, "waiting for batch")
	if len(message.Events[0].VMs) != 0 || strings.Join(message.Events[0].VMUUIDs, ",") != "guest-1" {
		t.Errorf("event VM = %+v / %v, want only vm_uuids [guest-1]", message.Events[0].VMs, message.Events[0].VMUUIDs)
	}
}

func TestSendInputErrorsPrecedeConnection(t *testing.T) {
	// The address names no listener: reaching the transport would
	// surface a ConnectionError instead of the input error.
	absent := filepath.Join(testutil.SocketDir(t), "absent.sock")

	tests := []struct {
		name  string
		args  []string
		check func(error) bool
	}{
		{
			name:  "separator in message",
			args:  []string{"--mac", "00-15-5D-01-02-03", "--message", "first\x1fsecond"},
			check: func(err error) bool { return errors.Is(err, description.ErrEncodingConflict) },
		},
		{
			name:  "malformed mac",
			args:  []string{"--mac", "not-a-mac", "--message", "Disk full"},
			check: func(err error) bool { return errors.Is(err, vmref.ErrInvalidReference) },
		},
		{
			name:  "blank identifier",
			args:  []string{"--vm-uuid", " ", "--message", "Disk full"},
			check: func(err error) bool { return errors.Is(err, vmref.ErrInvalidReference) },
		},
		{
			name: "both vm modes",
			args: []string{"--mac", "00-15-5D-01-02-03", "--vm-uuid", "guest-1", "--message", "Disk full"},
			check: func(err error) bool {
				return err != nil && strings.Contains(err.Error(), "mutually exclusive")
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			streams := newTestStreams(t)
			args := append([]string{"send",
				"--address", absent,
				"--environment-id", "42",
				"--source", "App",
				"--severity", "Error",
			}, test.args...)

			err := streams.run(args...)
			if !test.check(err) {
				t.Fatalf("send error = %v, unexpected", err)
			}
			var connectionErr *platform.ConnectionError
			if errors.As(err, &connectionErr) {
				t.Errorf("input error surfaced as ConnectionError: %v", err)
			}
		})
	}
}

func TestSendConnectionError(t *testing.T) {
	streams := newTestStreams(t)
	absent := filepath.Join(testutil.SocketDir(t), "absent.sock")

	err := streams.run("send", "--address", absent, "--environment-id", "42",
		"--source", "App", "--severity", "Error", "--message", "Disk full")

	var connectionErr *platform.ConnectionError
	if !errors.As(err, &connectionErr) {
		t.Fatalf("send error = %v (%T), want *platform.ConnectionError", err, err)
	}
	if streams.stdout.String() != "" {
		t.Errorf("stdout = %q, want nothing on failure", streams.stdout.String())
	}
}

func TestSendRequiredFlags(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--severity", "Error", "--message", "m"}, "--source is required"},
		{[]string{"--source", "App", "--message", "m"}, "--severity is required"},
		{[]string{"--source", "App", "--severity", "Error"}, "--message is required"},
		{[]string{"--source", "App", "--severity", "Error", "--message", "m"}, "environment id is required"},
		{[]string{"--source", "App", "--severity", "Error", "--message", "m", "extra"}, "no positional arguments"},
	}
	for _, test := range tests {
		streams := newTestStreams(t)
		err := streams.run(append([]string{"send"}, test.args...)...)
		if err == nil || !strings.Contains(err.Error(), test.want) {
			t.Errorf("send %v error = %v, want containing %q", test.args, err, test.want)
		}
	}
}

func TestWindowsPositional(t *testing.T) {
	streams := newTestStreams(t)
	address, received := startSink(t)

	err := streams.run("windows", "--address", address,
		"180005401", "00-15-5D-01-02-03", "App", "1001", "Error", "Disk full", "2017-10-11T15:18:33-0500")
	if err != nil {
		t.Fatalf("windows: %v", err)
	}

	message := testutil.RequireReceive(t, received, 5*time.Second, "waiting for batch")
	if got := strings.Join(layersOf(message), ","); got != "Compute,Network,Storage" {
		t.Errorf("layers = %s", got)
	}
	if message.EnvironmentID != 180005401 {
		t.Errorf("EnvironmentID = %d", message.EnvironmentID)
	}
}

func TestWindowsAllOptionalArguments(t *testing.T) {
	streams := newTestStreams(t)
	address, received := startSink(t)

	err := streams.run("windows", "--address", address,
		"180005401", "00-15-5D-01-02-03", "App", "1001", "Error", "Disk full", "2017-10-11T15:18:33-0500",
		"Low disk space", "Availability", "Storage health", "Storage")
	if err != nil {
		t.Fatalf("windows: %v", err)
	}

	message := testutil.RequireReceive(t, received, 5*time.Second, "waiting for batch")
	if len(message.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(message.Events))
	}
	wire := message.Events[0]
	if wire.Description != "Low disk space\x1f1001\x1fDisk full" {
		t.Errorf("Description = %q", wire.Description)
	}
	if wire.EventType != "Availability" || wire.Category != "Storage health" || wire.Layer != "Storage" {
		t.Errorf("type/category/layer = %s/%s/%s", wire.EventType, wire.Category, wire.Layer)
	}
}

func TestWindowsArgumentErrors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"1", "00-15-5D-01-02-03", "App"}, "7 to 11 arguments"},
		{[]string{"abc", "00-15-5D-01-02-03", "App", "1", "Error", "m", "t"}, "environment"},
	}
	for _, test := range tests {
		streams := newTestStreams(t)
		err := streams.run(append([]string{"windows"}, test.args...)...)
		if err == nil || !strings.Contains(err.Error(), test.want) {
			t.Errorf("windows %v error = %v, want containing %q", test.args, err, test.want)
		}
	}
}

func TestWindowsEmptyPositionalFieldRejected(t *testing.T) {
	absent := filepath.Join(testutil.SocketDir(t), "absent.sock")

	tests := []struct {
		name string
		args []string
	}{
		{"empty source", []string{"180005401", "00-15-5D-01-02-03", "", "1001", "Error", "Disk full", "2017-10-11T15:18:33-0500"}},
		{"empty message", []string{"180005401", "00-15-5D-01-02-03", "App", "1001", "Error", "", "2017-10-11T15:18:33-0500"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			streams := newTestStreams(t)
			err := streams.run(append([]string{"windows", "--address", absent}, test.args...)...)
			if !errors.Is(err, description.ErrInvalidParts) {
				t.Fatalf("windows error = %v, want ErrInvalidParts", err)
			}
			if streams.stdout.String() != "" {
				t.Errorf("stdout = %q, want nothing on failure", streams.stdout.String())
			}
		})
	}
}

func TestDecode(t *testing.T) {
	streams := newTestStreams(t)

	if err := streams.run("decode", "App\x1f1001\x1fDisk full"); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "0\tApp\n1\t1001\n2\tDisk full\n"
	if got := streams.stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestDecodeStdin(t *testing.T) {
	streams := newTestStreams(t)
	streams.Stdin = strings.NewReader("Low disk space\x1fDisk full\n")

	if err := streams.run("decode"); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "0\tLow disk space\n1\tDisk full\n"
	if got := streams.stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestDecodeSinglePartExitsOne(t *testing.T) {
	streams := newTestStreams(t)

	err := streams.run("decode", "no separator here")
	coder, ok := err.(interface{ ExitCode() int })
	if !ok || coder.ExitCode() != 1 {
		t.Fatalf("decode error = %v, want exit code 1", err)
	}
	if got := streams.stdout.String(); got != "0\tno separator here\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestSinkCommandPrintsBatches(t *testing.T) {
	sinkStreams := newTestStreams(t)
	address := filepath.Join(testutil.SocketDir(t), "sink.sock")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Root(sinkStreams.Streams).Execute(ctx, []string{"sink", "--listen", address, "--log-level", "error"})
	}()
	defer func() {
		cancel()
		testutil.RequireReceive[error](t, done, 5*time.Second, "waiting for sink to stop")
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(address); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("sink socket %s never appeared", address)
		}
		time.Sleep(10 * time.Millisecond)
	}

	sender := newTestStreams(t)
	err := sender.run("send", "--address", address, "--environment-id", "42",
		"--mac", "00-15-5D-01-02-03", "--source", "App", "--event-id", "1001",
		"--severity", "Error", "--message", "Disk full", "--layer", "Network",
		"--time", "2017-10-11T15:18:33-0500")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	// The sink acknowledges only after printing.
	want := "42\tNetwork\tError\t2017-10-11T15:18:33-0500\tApp | 1001 | Disk full\tmac:00-15-5D-01-02-03\n"
	if got := sinkStreams.stdout.String(); got != want {
		t.Errorf("sink stdout = %q, want %q", got, want)
	}
}

func TestSinkCommandRequiresListen(t *testing.T) {
	streams := newTestStreams(t)
	if err := streams.run("sink"); err == nil || !strings.Contains(err.Error(), "--listen is required") {
		t.Errorf("sink error = %v, want --listen is required", err)
	}
}

func TestVersion(t *testing.T) {
	streams := newTestStreams(t)
	if err := streams.run("version"); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(streams.stdout.String(), "iqreport ") {
		t.Errorf("stdout = %q", streams.stdout.String())
	}
}
