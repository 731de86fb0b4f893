// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfoUsesInjectedCommit(t *testing.T) {
	defer func(commit, dirty, built string) {
		GitCommit, GitDirty, BuildTime = commit, dirty, built
	}(GitCommit, GitDirty, BuildTime)

	GitCommit, GitDirty, BuildTime = "abc1234", "true", "2026-10-01T00:00:00Z"
	want := Version + " (abc1234-dirty, 2026-10-01T00:00:00Z)"
	if got := Info(); got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
}

func TestFullMentionsFormats(t *testing.T) {
	full := Full()
	if !strings.HasPrefix(full, Version) {
		t.Errorf("Full() does not start with the version: %q", full)
	}
	for _, fragment := range []string{"Go: ", "Platform: ", "Formats: " + Formats} {
		if !strings.Contains(full, fragment) {
			t.Errorf("Full() missing %q: %q", fragment, full)
		}
	}
}
