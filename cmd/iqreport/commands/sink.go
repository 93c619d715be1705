// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"

	"github.com/siostechcorp/Windows-Signal/cmd/iqreport/cli"
	"github.com/siostechcorp/Windows-Signal/lib/description"
	"github.com/siostechcorp/Windows-Signal/lib/event"
	"github.com/siostechcorp/Windows-Signal/lib/platform"
	"github.com/siostechcorp/Windows-Signal/lib/secret"
)

type sinkParams struct {
	Listen      string        `flag:"listen" desc:"socket path (unix) or host:port (tcp) to listen on"`
	Network     string        `flag:"network" desc:"unix or tcp" default:"unix"`
	TokenPath   string        `flag:"token-file" desc:"file holding the service token clients must present"`
	IdleTimeout time.Duration `flag:"idle-timeout" desc:"drop a session idle this long" default:"60s"`
	JSON        bool          `flag:"json" desc:"print each batch as one JSON line"`
	LogLevel    string        `flag:"log-level" desc:"debug, info, warn, or error" default:"info"`
}

// sinkBatch is the JSON line printed per batch with --json.
type sinkBatch struct {
	Digest string `json:"digest"`
	*event.UpdateMessage
}

func sinkCommand(streams Streams) *cli.Command {
	var params sinkParams

	return &cli.Command{
		Name:    "sink",
		Summary: "Receive and print batches sent over the socket transport",
		Description: `Run a local receiving end of the socket transport and print every
batch it accepts. Useful for checking a reporting host's configuration
and scheduled tasks without a platform. Runs until interrupted.

Each event prints as one line: environment, layer, severity, time, and
the description with separators shown as " | ". With --json each batch
prints as one JSON object instead.`,
		Usage: "iqreport sink --listen <path|host:port> [flags]",
		Examples: []cli.Example{
			{
				Description: "Listen where the default configuration sends",
				Command:     "iqreport sink --listen /run/iqreport/platform.sock",
			},
			{
				Description: "Listen on TCP and require a token",
				Command:     "iqreport sink --network tcp --listen 127.0.0.1:7400 --token-file /etc/iqreport/token",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("sink", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("sink takes no positional arguments, got %q", args[0])
			}
			if params.Listen == "" {
				return fmt.Errorf("--listen is required")
			}
			var level slog.Level
			if err := level.UnmarshalText([]byte(params.LogLevel)); err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			logger := cli.NewCommandLogger(streams.Stderr, level).With("command", "sink")

			var token *secret.Buffer
			if params.TokenPath != "" {
				var err error
				token, err = secret.ReadFile(params.TokenPath)
				if err != nil {
					return fmt.Errorf("reading service token: %w", err)
				}
				defer token.Close()
			}

			listener, err := platform.Listen(params.Network, params.Listen)
			if err != nil {
				return err
			}

			printer := &batchPrinter{streams: streams, json: params.JSON}
			sink := platform.NewSink(platform.SinkConfig{
				Handler:     printer.print,
				Token:       token,
				IdleTimeout: params.IdleTimeout,
				Logger:      logger,
			})
			return sink.Serve(ctx, listener)
		},
	}
}

// batchPrinter writes accepted batches to stdout. Sessions are served
// concurrently, so writes are serialized.
type batchPrinter struct {
	mu      sync.Mutex
	streams Streams
	json    bool
}

func (p *batchPrinter) print(_ context.Context, digest string, message *event.UpdateMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.json {
		data, err := json.Marshal(sinkBatch{Digest: digest, UpdateMessage: message})
		if err != nil {
			return fmt.Errorf("encoding batch: %w", err)
		}
		fmt.Fprintf(p.streams.Stdout, "%s\n", data)
		return nil
	}

	for _, wire := range message.Events {
		fmt.Fprintf(p.streams.Stdout, "%d\t%s\t%s\t%s\t%s%s\n",
			wire.EnvironmentID, wire.Layer, wire.Severity, wire.Time,
			description.Printable(wire.Description), vmSuffix(wire))
	}
	return nil
}

func vmSuffix(wire event.WireEvent) string {
	switch {
	case len(wire.VMs) > 0 && len(wire.VMs[0].NetworkInterfaces) > 0:
		return "\tmac:" + wire.VMs[0].NetworkInterfaces[0].HWAddress
	case len(wire.VMUUIDs) > 0:
		return "\tvm:" + strings.Join(wire.VMUUIDs, ",")
	default:
		return ""
	}
}
