// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bytecodec

import "time"

// FILETIME counts 100ns ticks since 1601-01-01 UTC.
const (
	filetimeUnixDelta   = 116444736000000000
	filetimeTicksPerSec = 10000000
)

// ToFileTime converts t to a Windows FILETIME.
func ToFileTime(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()*filetimeTicksPerSec + int64(t.Nanosecond()/100) + filetimeUnixDelta
}

// FromFileTime converts a Windows FILETIME to UTC. Zero maps to the
// zero time.
func FromFileTime(ticks int64) time.Time {
	if ticks == 0 {
		return time.Time{}
	}
	unixTicks := ticks - filetimeUnixDelta
	seconds := unixTicks / filetimeTicksPerSec
	remainder := unixTicks % filetimeTicksPerSec
	if remainder < 0 {
		seconds--
		remainder += filetimeTicksPerSec
	}
	return time.Unix(seconds, remainder*100).UTC()
}
