// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

func TestProgressSink_PlainOutput(t *testing.T) {
	var out bytes.Buffer
	sink := newProgressSink(&out, nil, false, 0, termenv.Ascii)

	sink.Report(0, "Loading templates")
	sink.Report(0, "still loading")
	sink.Report(42, "Packing sword.dbr")
	sink.Report(150, "done")

	want := "[  0%] Loading templates\n[ 42%] Packing sword.dbr\n[100%] done\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestProgressSink_InteractiveRewritesLine(t *testing.T) {
	var out bytes.Buffer
	sink := newProgressSink(&out, nil, true, 0, termenv.ANSI256)

	sink.Report(10, "first")
	sink.Report(20, "second")

	output := out.String()
	if strings.Count(output, clearLine) != 2 {
		t.Errorf("output %q should clear the line before each report", output)
	}
	if strings.Contains(output, "\n") {
		t.Errorf("output %q should not end lines before 100%%", output)
	}
	if plain := ansi.Strip(output); !strings.HasSuffix(plain, "[ 20%] second") {
		t.Errorf("plain output = %q, want it to end with the last report", plain)
	}

	sink.Report(100, "finished")
	if !strings.HasSuffix(out.String(), "\n") {
		t.Error("100% report did not end the status line")
	}
}

func TestProgressSink_TruncatesToWidth(t *testing.T) {
	var out bytes.Buffer
	sink := newProgressSink(&out, nil, true, 20, termenv.ANSI256)

	sink.Report(50, "records/items/weapons/swords/a_very_long_record_name.dbr")

	line := strings.TrimPrefix(out.String(), clearLine)
	if width := ansi.StringWidth(line); width > 19 {
		t.Errorf("status line width = %d, want at most 19: %q", width, ansi.Strip(line))
	}
	if !strings.HasSuffix(ansi.Strip(line), "…") {
		t.Errorf("truncated line %q should end with an ellipsis", ansi.Strip(line))
	}
}

func TestProgressSink_LogsClearAndRedrawStatus(t *testing.T) {
	var out, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sink := newProgressSink(&out, logger, true, 0, termenv.Ascii)

	sink.Report(30, "building")
	before := out.Len()
	sink.Warn("unknown field ignored")
	sink.Error("broken.dbr: no templateName")
	sink.Log("cache hit")

	redraw := out.String()[before:]
	if strings.Count(redraw, clearLine+"[ 30%] building") != 3 {
		t.Errorf("status line not cleared and redrawn around each log: %q", redraw)
	}
	for _, want := range []string{
		"level=WARN msg=\"unknown field ignored\"",
		"level=ERROR msg=\"broken.dbr: no templateName\"",
		"level=INFO msg=\"cache hit\"",
	} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("logs missing %q:\n%s", want, logs.String())
		}
	}

	sink.Finish()
	if !strings.HasSuffix(out.String(), "\n") {
		t.Error("Finish did not end the status line")
	}
}
