// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// LogRecord is one captured log entry
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture is a slog.Handler that keeps every record in memory
type LogCapture struct {
	mu      *sync.Mutex
	records *[]LogRecord
	attrs   []slog.Attr
	t       *testing.T
}

// NewTestLogger returns a logger whose records can be inspected through the
// returned capture. Records are echoed to t.Log.
func NewTestLogger(t *testing.T) (*slog.Logger, *LogCapture) {
	capture := &LogCapture{
		mu:      &sync.Mutex{},
		records: &[]LogRecord{},
		t:       t,
	}
	return slog.New(capture), capture
}

// Enabled implements slog.Handler
func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler
func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(c.attrs)+r.NumAttrs())
	for _, a := range c.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	c.mu.Lock()
	*c.records = append(*c.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	c.mu.Unlock()

	if c.t != nil {
		c.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler. Derived handlers share the record buffer.
func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *c
	derived.attrs = append(append([]slog.Attr{}, c.attrs...), attrs...)
	return &derived
}

// WithGroup implements slog.Handler. Groups are flattened.
func (c *LogCapture) WithGroup(string) slog.Handler { return c }

// Records returns a copy of the captured records
func (c *LogCapture) Records() []LogRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LogRecord, len(*c.records))
	copy(out, *c.records)
	return out
}

// AtLevel returns the records logged at level
func (c *LogCapture) AtLevel(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, r := range c.Records() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// Contains reports whether any record's message contains message
func (c *LogCapture) Contains(message string) bool {
	for _, r := range c.Records() {
		if strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// AssertNoErrors fails the test if anything was logged at error level
func AssertNoErrors(t *testing.T, c *LogCapture) {
	t.Helper()
	for _, r := range c.AtLevel(slog.LevelError) {
		t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
	}
}
