// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dbr

import (
	"math"
	"strconv"
	"strings"

	"github.com/bureau-foundation/arzedit/lib/template"
)

// splitValue splits a field value into slots. File paths are
// lowercased with forward slashes first. A scalar field keeps one
// slot: the whole value for strings, the first segment otherwise. In
// an array value containing ";;", a run of blank slots becomes one slot
// holding a semicolon per blank beyond the first, so a single blank
// slot is dropped.
func splitValue(value string, varType template.VarType) []string {
	if varType.Base == template.TypeFilePath {
		value = strings.ToLower(strings.ReplaceAll(value, `\`, "/"))
	}
	segments := strings.Split(value, ";")
	if !varType.Array {
		if len(segments) > 1 {
			if varType.Base == template.TypeString || varType.Base == template.TypeFilePath {
				return []string{value}
			}
			return segments[:1]
		}
		return segments
	}
	if !strings.Contains(value, ";;") {
		return segments
	}

	var compacted []string
	var blanks strings.Builder
	for i, segment := range segments {
		if segment == "" {
			if i+1 < len(segments) && segments[i+1] == "" {
				blanks.WriteByte(';')
			}
			continue
		}
		if blanks.Len() > 0 {
			compacted = append(compacted, blanks.String())
			blanks.Reset()
		}
		compacted = append(compacted, segment)
	}
	if blanks.Len() > 0 {
		compacted = append(compacted, blanks.String())
	}
	return compacted
}

// ParseInt parses an integer slot. Values that are not plain integers
// fall back to a truncated float, then to a "0x" hexadecimal literal,
// then to zero; exact is false whenever a fallback was used. Floats
// and integers outside the int32 range saturate at its bounds; NaN and
// infinities are not numbers here.
func ParseInt(text string) (value int32, exact bool) {
	trimmed := strings.TrimSpace(text)
	if parsed, err := strconv.ParseInt(trimmed, 10, 32); err == nil {
		return int32(parsed), true
	}
	if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(parsed) && !math.IsInf(parsed, 0) {
		return int32(max(math.MinInt32, min(math.MaxInt32, math.Trunc(parsed)))), false
	}
	if hex, ok := strings.CutPrefix(trimmed, "0x"); ok {
		if parsed, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return int32(uint32(parsed)), false
		}
	}
	return 0, false
}

// ParseReal parses a float slot, returning zero and false when text is
// not a number.
func ParseReal(text string) (float32, bool) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(text), 32)
	if err != nil {
		return 0, false
	}
	return float32(parsed), true
}

// ParseBool accepts exactly 0 or 1; anything else is stored as 0.
func ParseBool(text string) (int32, bool) {
	switch strings.TrimSpace(text) {
	case "0":
		return 0, true
	case "1":
		return 1, true
	default:
		return 0, false
	}
}
