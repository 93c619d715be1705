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

const (
	windowsRequiredArgs = 7
	windowsMaxArgs      = 11
)

func windowsCommand(streams Streams) *cli.Command {
	var params PlatformFlags

	return &cli.Command{
		Name:    "windows",
		Summary: "Report one event from positional arguments",
		Description: `Report one event given as positional arguments, in the order a
Windows scheduled task passes event log fields:

  <env-id> <mac> <source> <id> <severity> <message> <time>
  [summary] [type] [category] [layer]

An empty <mac> ("") leaves the configured VM in place. Trailing
optional arguments may be omitted or given as "".`,
		Usage: "iqreport windows <env-id> <mac> <source> <id> <severity> <message> <time> [summary] [type] [category] [layer]",
		Examples: []cli.Example{
			{
				Description: "Task action for an application error",
				Command:     `iqreport windows 180005401 00-15-5D-01-02-03 App 1001 Error "Disk full" 2017-10-11T15:18:33-0500`,
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("windows", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) < windowsRequiredArgs || len(args) > windowsMaxArgs {
				return fmt.Errorf("windows takes %d to %d arguments, got %d",
					windowsRequiredArgs, windowsMaxArgs, len(args))
			}

			environmentID, err := event.ParseEnvironmentID(args[0])
			if err != nil {
				return err
			}
			params.EnvironmentID = int64(environmentID)
			if args[1] != "" {
				params.MAC = args[1]
				params.VMUUIDs = nil
			}

			optional := make([]string, windowsMaxArgs)
			copy(optional, args)
			input := event.RawInput{
				Source:    optional[2],
				EventID:   optional[3],
				Severity:  optional[4],
				Message:   optional[5],
				Time:      optional[6],
				Summary:   optional[7],
				EventType: optional[8],
				Category:  optional[9],
				Layer:     optional[10],
			}

			reporter, err := newReporter(streams, &params, "windows")
			if err != nil {
				return err
			}
			return reporter.report(ctx, input)
		},
	}
}
