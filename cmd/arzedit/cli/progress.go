// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/bureau-foundation/arzedit/lib/progress"
)

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\x1b[2K"

// ProgressSink renders batch progress on a terminal as a single status
// line rewritten in place, truncated to the terminal width. On any
// other output each percent change is written as its own plain line.
// Log, Warn and Error go to the logger, clearing the status line first
// so the two do not interleave.
//
// Calls may come from any goroutine.
type ProgressSink struct {
	mu          sync.Mutex
	out         io.Writer
	logger      *slog.Logger
	interactive bool
	width       int

	percentStyle lipgloss.Style
	messageStyle lipgloss.Style

	lastPercent int
	statusLine  string
}

// NewProgressSink returns a sink writing to out, styled and sized when
// out is a terminal.
func NewProgressSink(out *os.File, logger *slog.Logger) *ProgressSink {
	fd := int(out.Fd())
	if !term.IsTerminal(fd) {
		return newProgressSink(out, logger, false, 0, termenv.Ascii)
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		width = 0
	}
	return newProgressSink(out, logger, true, width, termenv.ANSI256)
}

func newProgressSink(out io.Writer, logger *slog.Logger, interactive bool, width int, profile termenv.Profile) *ProgressSink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	renderer := lipgloss.NewRenderer(out, termenv.WithProfile(profile))
	// The renderer re-detects the profile from out on first use unless
	// it is pinned.
	renderer.SetColorProfile(profile)
	return &ProgressSink{
		out:          out,
		logger:       logger,
		interactive:  interactive,
		width:        width,
		percentStyle: renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		messageStyle: renderer.NewStyle().Foreground(lipgloss.Color("252")),
		lastPercent:  -1,
	}
}

var _ progress.Sink = (*ProgressSink)(nil)

// Report implements [progress.Sink].
func (s *ProgressSink) Report(percent int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	percent = progress.Clamp(percent)
	line := s.percentStyle.Render(fmt.Sprintf("[%3d%%]", percent)) + " " + s.messageStyle.Render(message)

	if !s.interactive {
		if percent == s.lastPercent {
			return
		}
		s.lastPercent = percent
		fmt.Fprintln(s.out, line)
		return
	}

	if s.width > 0 {
		line = ansi.Truncate(line, s.width-1, "…")
	}
	s.lastPercent = percent
	s.statusLine = line
	fmt.Fprint(s.out, clearLine+line)
	if percent == 100 {
		fmt.Fprintln(s.out)
		s.statusLine = ""
	}
}

// Log implements [progress.Sink].
func (s *ProgressSink) Log(message string) { s.emit(slog.LevelInfo, message) }

// Warn implements [progress.Sink].
func (s *ProgressSink) Warn(message string) { s.emit(slog.LevelWarn, message) }

// Error implements [progress.Sink].
func (s *ProgressSink) Error(message string) { s.emit(slog.LevelError, message) }

func (s *ProgressSink) emit(level slog.Level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.statusLine != "" {
		fmt.Fprint(s.out, clearLine)
	}
	s.logger.Log(context.Background(), level, message)
	if s.statusLine != "" {
		fmt.Fprint(s.out, s.statusLine)
	}
}

// Finish ends an unterminated status line.
func (s *ProgressSink) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusLine != "" {
		fmt.Fprintln(s.out)
		s.statusLine = ""
	}
}
