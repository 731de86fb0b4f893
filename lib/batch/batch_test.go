// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

func TestSummaryTally(t *testing.T) {
	var summary Summary
	summary.Succeed()
	summary.Succeed()
	summary.Skip("(null)", "entry has no name")
	summary.Fail("records/a.dbr", fs.ErrNotExist)
	summary.Elapsed = 1500 * time.Millisecond

	if summary.Total() != 4 {
		t.Errorf("Total = %d, want 4", summary.Total())
	}
	if !errors.Is(summary.Err(), fs.ErrNotExist) {
		t.Errorf("Err = %v, want wrapping ErrNotExist", summary.Err())
	}

	message := summary.String()
	for _, want := range []string{"2 succeeded", "1 skipped", "1 failed", "1.50s", "records/a.dbr"} {
		if !strings.Contains(message, want) {
			t.Errorf("String() = %q, missing %q", message, want)
		}
	}
}

func TestCleanSummaryHasNoError(t *testing.T) {
	var summary Summary
	summary.Succeed()
	if summary.Err() != nil {
		t.Errorf("Err = %v, want nil", summary.Err())
	}
	if strings.Contains(summary.String(), "error") {
		t.Errorf("String() mentions an error: %q", summary.String())
	}
}

func TestMerge(t *testing.T) {
	var first, second Summary
	first.Succeed()
	second.Fail("x", errors.New("boom"))
	second.Skip("y", "empty")
	first.Merge(second)
	if first.Succeeded != 1 || len(first.Failed) != 1 || len(first.Skipped) != 1 {
		t.Errorf("merged = %+v", first)
	}
}
