// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package progress defines the sink through which batch operations
// report what they are doing.
//
// Operations call a [Sink] synchronously from whatever goroutine runs
// them. A sink that renders on another goroutine (a terminal status
// line, a GUI) owns the handoff; the operations hold no locks and never
// call a sink concurrently with itself.
package progress

import (
	"fmt"
	"log/slog"
	"sync"
)

// Sink receives progress from a batch operation.
type Sink interface {
	// Report sets the overall progress. Percent is in [0, 100].
	Report(percent int, message string)

	// Log, Warn and Error record diagnostics at increasing severity.
	Log(message string)
	Warn(message string)
	Error(message string)
}

// Nop returns a sink that discards everything.
func Nop() Sink { return nopSink{} }

type nopSink struct{}

func (nopSink) Report(int, string) {}
func (nopSink) Log(string)         {}
func (nopSink) Warn(string)        {}
func (nopSink) Error(string)       {}

// NewLogSink returns a sink that writes everything to logger. Report
// calls become Info records carrying a "percent" attribute.
func NewLogSink(logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return logSink{logger: logger}
}

type logSink struct {
	logger *slog.Logger
}

func (s logSink) Report(percent int, message string) {
	s.logger.Info(message, "percent", Clamp(percent))
}
func (s logSink) Log(message string)   { s.logger.Info(message) }
func (s logSink) Warn(message string)  { s.logger.Warn(message) }
func (s logSink) Error(message string) { s.logger.Error(message) }

// Clamp bounds percent to [0, 100].
func Clamp(percent int) int {
	return min(max(percent, 0), 100)
}

// Scale maps item i (zero-based) of n onto the range [from, to]. It is
// the per-item percentage used by every batch loop: the first item
// reports just above from and the last reports exactly to.
func Scale(from, to, i, n int) int {
	if n <= 0 {
		return to
	}
	return from + (to-from)*(i+1)/n
}

// Logf formats and forwards to sink.Log.
func Logf(sink Sink, format string, args ...any) { sink.Log(fmt.Sprintf(format, args...)) }

// Warnf formats and forwards to sink.Warn.
func Warnf(sink Sink, format string, args ...any) { sink.Warn(fmt.Sprintf(format, args...)) }

// Errorf formats and forwards to sink.Error.
func Errorf(sink Sink, format string, args ...any) { sink.Error(fmt.Sprintf(format, args...)) }

// Event is one call captured by a [Recorder].
type Event struct {
	Kind    string // "report", "log", "warn" or "error"
	Percent int
	Message string
}

// Recorder is a sink that keeps every call, for tests and for callers
// that want to replay progress after the fact. It is safe for
// concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) add(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Report(percent int, message string) {
	r.add(Event{Kind: "report", Percent: percent, Message: message})
}
func (r *Recorder) Log(message string)   { r.add(Event{Kind: "log", Message: message}) }
func (r *Recorder) Warn(message string)  { r.add(Event{Kind: "warn", Message: message}) }
func (r *Recorder) Error(message string) { r.add(Event{Kind: "error", Message: message}) }

// Events returns a copy of the captured calls.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Count returns how many events of the given kind were captured.
func (r *Recorder) Count(kind string) int {
	count := 0
	for _, event := range r.Events() {
		if event.Kind == kind {
			count++
		}
	}
	return count
}

// Last returns the final event of the given kind.
func (r *Recorder) Last(kind string) (Event, bool) {
	events := r.Events()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == kind {
			return events[i], true
		}
	}
	return Event{}, false
}
