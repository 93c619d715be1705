// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/siostechcorp/Windows-Signal/cmd/iqreport/cli"
	"github.com/siostechcorp/Windows-Signal/lib/clock"
	"github.com/siostechcorp/Windows-Signal/lib/version"
)

// Streams carries the process's I/O and clock into the commands.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Clock stamps events reported without a time.
	Clock clock.Clock
}

// StandardStreams returns the process's standard files and the real
// clock.
func StandardStreams() Streams {
	return Streams{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Clock:  clock.Real(),
	}
}

// Root builds and returns the complete iqreport command tree.
func Root(streams Streams) *cli.Command {
	return &cli.Command{
		Name: "iqreport",
		Description: `iqreport: report Windows events to the monitoring platform.

Each report builds one record per infrastructure layer (Compute,
Network, Storage) unless a layer is named, and sends them as one batch
in a session of its own.`,
		HelpOutput: streams.Stderr,
		Subcommands: []*cli.Command{
			sendCommand(streams),
			windowsCommand(streams),
			decodeCommand(streams),
			sinkCommand(streams),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string) error {
					if len(args) > 0 {
						return fmt.Errorf("version takes no arguments, got %q", args[0])
					}
					fmt.Fprintf(streams.Stdout, "iqreport %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
