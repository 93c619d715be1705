// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "send", 4},
		{"send", "send", 0},
		{"sned", "send", 2},
		{"decod", "decode", 1},
		{"windos", "windows", 1},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
		if got := levenshtein(test.b, test.a); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d (not symmetric)", test.b, test.a, got, test.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{{Name: "send"}, {Name: "windows"}, {Name: "decode"}, {Name: "sink"}}

	tests := []struct {
		input string
		want  string
	}{
		{"windos", "windows"},
		{"decod", "decode"},
		{"completely-different", ""},
	}
	for _, test := range tests {
		if got := suggestCommand(test.input, commands); got != test.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	flagSet := pflag.NewFlagSet("send", pflag.ContinueOnError)
	flagSet.String("event-id", "", "")
	flagSet.String("message", "", "")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--event-di", "1001"}, "--event-id"},
		{[]string{"--mesage=Disk full"}, "--message"},
		{[]string{"--message", "x", "--nothing-like-it"}, ""},
		{[]string{"--", "--mesage"}, ""},
	}
	for _, test := range tests {
		if got := suggestFlag(test.args, flagSet); got != test.want {
			t.Errorf("suggestFlag(%q) = %q, want %q", test.args, got, test.want)
		}
	}
}
