// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package batch accumulates per-item outcomes of a sequential batch
// operation into one [Summary].
//
// Batch operations in this module never let one item's failure abort
// the rest. Each item ends up succeeded, skipped (with a reason) or
// failed (with an error); the summary is reported in the terminal
// progress message and returned to the caller. Container-level errors
// that stop an operation outright are returned separately as a plain
// error and are not recorded here.
package batch

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ItemError records why one item failed or was skipped.
type ItemError struct {
	Item string
	Err  error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Item, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

// Summary is the tally of a batch operation.
type Summary struct {
	Succeeded int
	Skipped   []ItemError
	Failed    []ItemError
	Elapsed   time.Duration
}

// Succeed counts one successful item.
func (s *Summary) Succeed() { s.Succeeded++ }

// Skip records an item that was deliberately not processed.
func (s *Summary) Skip(item, reason string) {
	s.Skipped = append(s.Skipped, ItemError{Item: item, Err: errors.New(reason)})
}

// Fail records an item whose processing failed.
func (s *Summary) Fail(item string, err error) {
	s.Failed = append(s.Failed, ItemError{Item: item, Err: err})
}

// Merge adds the counts of other to s. Elapsed is not summed.
func (s *Summary) Merge(other Summary) {
	s.Succeeded += other.Succeeded
	s.Skipped = append(s.Skipped, other.Skipped...)
	s.Failed = append(s.Failed, other.Failed...)
}

// Total returns the number of items seen.
func (s Summary) Total() int {
	return s.Succeeded + len(s.Skipped) + len(s.Failed)
}

// Err joins the failures, or returns nil when nothing failed.
func (s Summary) Err() error {
	if len(s.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(s.Failed))
	for i, failure := range s.Failed {
		errs[i] = failure
	}
	return errors.Join(errs...)
}

// String renders the terminal progress message: counts, elapsed time
// and, when something failed, the first failure.
func (s Summary) String() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%d succeeded, %d skipped, %d failed in %.2fs",
		s.Succeeded, len(s.Skipped), len(s.Failed), s.Elapsed.Seconds())
	if len(s.Failed) > 0 {
		fmt.Fprintf(&builder, " (first error: %v)", s.Failed[0])
	}
	return builder.String()
}
