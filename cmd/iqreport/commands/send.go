// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/siostechcorp/Windows-Signal/cmd/iqreport/cli"
	"github.com/siostechcorp/Windows-Signal/lib/event"
)

type sendParams struct {
	PlatformFlags

	Source    string `flag:"source" desc:"event source (application or provider name)"`
	EventID   string `flag:"event-id" desc:"numeric event id"`
	Severity  string `flag:"severity" desc:"severity token, passed through to the platform"`
	Message   string `flag:"message" desc:"event message"`
	Time      string `flag:"time" desc:"generation time, ISO-8601 with offset (default: now)"`
	Summary   string `flag:"summary" desc:"custom summary, replaces the source at the head of the description"`
	EventType string `flag:"event-type" desc:"event type (default: events.default_event_type)"`
	Category  string `flag:"category" desc:"event category (default: events.default_category)"`
	Layer     string `flag:"layer" desc:"report on this layer only (default: Compute, Network, and Storage)"`
}

func (p *sendParams) input() event.RawInput {
	return event.RawInput{
		Source:    p.Source,
		EventID:   p.EventID,
		Severity:  p.Severity,
		Message:   p.Message,
		Time:      p.Time,
		Summary:   p.Summary,
		EventType: p.EventType,
		Category:  p.Category,
		Layer:     p.Layer,
	}
}

func sendCommand(streams Streams) *cli.Command {
	var params sendParams

	return &cli.Command{
		Name:    "send",
		Summary: "Report one event",
		Description: `Report one event occurrence to the monitoring platform.

The event's description is the summary (or source), event id, and
message joined by the 0x1F unit separator; none of them may contain
that byte. Without --layer the event is reported on the Compute,
Network, and Storage layers as one batch.`,
		Usage: "iqreport send --source <name> --severity <token> --message <text> [flags]",
		Examples: []cli.Example{
			{
				Description: "Report an application error on every layer",
				Command:     `iqreport send --environment-id 180005401 --mac 00-15-5D-01-02-03 --source App --event-id 1001 --severity Error --message "Disk full"`,
			},
			{
				Description: "Report on the Storage layer only, addressing the VM by id",
				Command:     `iqreport send --vm-uuid 4a1b2c3d-0000-4000-8000-000000000001 --source Disk --event-id 153 --severity Warning --message "IO retried" --layer Storage`,
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("send", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("send takes no positional arguments, got %q", args[0])
			}
			for _, required := range []struct{ name, value string }{
				{"--source", params.Source},
				{"--severity", params.Severity},
				{"--message", params.Message},
			} {
				if required.value == "" {
					return fmt.Errorf("%s is required", required.name)
				}
			}

			reporter, err := newReporter(streams, &params.PlatformFlags, "send")
			if err != nil {
				return err
			}
			return reporter.report(ctx, params.input())
		},
	}
}
