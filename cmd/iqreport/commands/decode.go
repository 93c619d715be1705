// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/siostechcorp/Windows-Signal/cmd/iqreport/cli"
	"github.com/siostechcorp/Windows-Signal/lib/description"
)

func decodeCommand(streams Streams) *cli.Command {
	return &cli.Command{
		Name:    "decode",
		Summary: "Split an encoded description into its parts",
		Description: `Print the parts of an encoded description, one per line, each
prefixed with its index. With no argument the description is read
from stdin (one trailing newline is removed).

Exits 1 after printing when the text holds no separator, since it is
then not an encoded description.`,
		Usage: "iqreport decode [description]",
		Run: func(_ context.Context, args []string) error {
			var text string
			switch len(args) {
			case 0:
				data, err := io.ReadAll(streams.Stdin)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r")
			case 1:
				text = args[0]
			default:
				return fmt.Errorf("decode takes at most one argument, got %d", len(args))
			}

			parts := description.Decode(text)
			for index, part := range parts {
				fmt.Fprintf(streams.Stdout, "%d\t%s\n", index, part)
			}
			if len(parts) < 2 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}
