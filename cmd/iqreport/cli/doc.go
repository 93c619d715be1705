// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for iqreport.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree by the commands
// package and dispatched via [Command.Execute], which handles flag
// parsing, subcommand routing, and structured help output with examples.
//
// Flags are usually declared as struct tags on a params struct and bound
// with [FlagsFromParams]; see [BindFlags] for the tag format.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
//
// [NewCommandLogger] builds the slog logger commands log through, and
// [ExitError] lets a command choose its exit status without an extra
// error line.
package cli
