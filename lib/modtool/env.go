// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package modtool

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bureau-foundation/arzedit/lib/batch"
	"github.com/bureau-foundation/arzedit/lib/clock"
	"github.com/bureau-foundation/arzedit/lib/fsys"
	"github.com/bureau-foundation/arzedit/lib/progress"
	"github.com/bureau-foundation/arzedit/lib/textenc"
)

// Env carries the collaborators shared by every operation. The zero
// value is usable: it reads and writes the host filesystem, discards
// progress and logs, uses the real clock and the default code page.
type Env struct {
	Provider fsys.Provider
	Sink     progress.Sink
	Clock    clock.Clock
	Logger   *slog.Logger
	Codec    textenc.Codec
}

func (e Env) resolve() Env {
	if e.Provider == nil {
		e.Provider = fsys.OS()
	}
	if e.Sink == nil {
		e.Sink = progress.Nop()
	}
	if e.Clock == nil {
		e.Clock = clock.Real()
	}
	if e.Logger == nil {
		e.Logger = slog.New(slog.DiscardHandler)
	}
	if e.Codec.Name() == "" {
		e.Codec = textenc.Default
	}
	return e
}

// finish stamps the elapsed time and reports the summary as the
// operation's terminal progress message.
func (e Env) finish(summary *batch.Summary, start time.Time) {
	summary.Elapsed = clock.Since(e.Clock, start)
	e.Sink.Report(100, summary.String())
}

// openSized opens path and returns it with its size, for the container
// readers that need random access.
func openSized(provider fsys.Provider, path string) (fsys.ReadFile, int64, error) {
	file, err := provider.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return file, info.Size(), nil
}

func readFile(provider fsys.Provider, path string) ([]byte, error) {
	file, err := provider.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func exists(provider fsys.Provider, path string) bool {
	_, err := provider.Stat(path)
	return err == nil
}
