// Copyright 2026 The Windows-Signal Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfoUsesInjectedValues(t *testing.T) {
	savedCommit, savedDirty, savedTime := GitCommit, GitDirty, BuildTime
	t.Cleanup(func() { GitCommit, GitDirty, BuildTime = savedCommit, savedDirty, savedTime })

	GitCommit, GitDirty, BuildTime = "abc1234", "true", "2026-10-17T00:00:00Z"
	got := Info()
	want := Version + " (abc1234-dirty, 2026-10-17T00:00:00Z)"
	if got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
}

func TestFullIncludesPlatform(t *testing.T) {
	if full := Full(); !strings.Contains(full, "Platform:") || !strings.HasPrefix(full, Version) {
		t.Errorf("Full() = %q", full)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "iqreport/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}
