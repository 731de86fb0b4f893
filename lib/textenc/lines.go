// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package textenc

import (
	"bytes"
	"io"
	"strings"
)

// SplitLines decodes data with [Codec.DecodeText] and splits it into
// lines. Both "\n" and "\r\n" terminate a line; a missing final
// terminator is tolerated and a trailing empty line is dropped.
func (c Codec) SplitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	text := c.DecodeText(data)
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// ReadLines reads all of r and splits it with [Codec.SplitLines].
func (c Codec) ReadLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return c.SplitLines(data), nil
}

// JoinLines encodes lines, each terminated by "\n".
func (c Codec) JoinLines(lines []string) []byte {
	var buffer bytes.Buffer
	for _, line := range lines {
		buffer.Write(c.Encode(line))
		buffer.WriteByte('\n')
	}
	return buffer.Bytes()
}
