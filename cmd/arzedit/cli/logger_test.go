// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger_Formats(t *testing.T) {
	tests := []struct {
		format   string
		terminal bool
		want     string
	}{
		{"text", false, "msg=hello"},
		{"json", true, `"msg":"hello"`},
		{"auto", true, "msg=hello"},
		{"auto", false, `"msg":"hello"`},
		{"", false, `"msg":"hello"`},
	}

	for _, test := range tests {
		var buffer bytes.Buffer
		logger, err := newLogger(&buffer, slog.LevelInfo, test.format, test.terminal)
		if err != nil {
			t.Fatalf("newLogger(%q): %v", test.format, err)
		}
		logger.Info("hello")
		if !strings.Contains(buffer.String(), test.want) {
			t.Errorf("format %q terminal %v: output %q, want %q", test.format, test.terminal, buffer.String(), test.want)
		}
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := newLogger(&buffer, slog.LevelError, "text", false)
	if err != nil {
		t.Fatal(err)
	}
	logger.Warn("hidden")
	logger.Error("shown")
	if strings.Contains(buffer.String(), "hidden") || !strings.Contains(buffer.String(), "shown") {
		t.Errorf("output = %q", buffer.String())
	}
}

func TestNewLogger_UnknownFormat(t *testing.T) {
	if _, err := newLogger(&bytes.Buffer{}, slog.LevelInfo, "xml", false); err == nil {
		t.Error("newLogger accepted format xml")
	}
}
