// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arc

import (
	"fmt"
	"io"
)

// Repack writes every entry of source into a new archive on sink,
// without recompressing.
func Repack(source *Reader, sink io.WriteSeeker, opts ...Option) error {
	return Merge(sink, []*Reader{source}, opts...)
}

// Merge writes the entries of every source, in order, into one new
// archive. Entries are copied byte for byte; duplicate names are kept.
func Merge(sink io.WriteSeeker, sources []*Reader, opts ...Option) error {
	writer, err := NewWriter(sink, opts...)
	if err != nil {
		return err
	}
	for sourceIndex, source := range sources {
		for _, entry := range source.Entries() {
			if err := writer.CopyEntry(source, entry); err != nil {
				return fmt.Errorf("source %d: %w", sourceIndex, err)
			}
		}
	}
	return writer.Close()
}
