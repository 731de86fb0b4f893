// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for testability.
//
// Batch operations report elapsed time in their terminal progress
// message, and archive entries written without an explicit timestamp
// take the current time. Both read the time through a Clock so tests
// can pin it:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	c.AutoStep(time.Second)
//	summary := modtool.UnpackArchive(ctx, options, sink) // options.Clock = c
package clock
