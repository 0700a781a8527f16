package testsupport

import (
	"context"
	"log/slog"
	"sync"
)

// LogRecorder is a slog handler that keeps every record for assertions.
type LogRecorder struct {
	mu      sync.Mutex
	records []slog.Record
	attrs   []slog.Attr
	parent  *LogRecorder
}

// NewLogRecorder returns a logger writing into a fresh recorder.
func NewLogRecorder() (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{}
	return slog.New(rec), rec
}

func (r *LogRecorder) root() *LogRecorder {
	if r.parent != nil {
		return r.parent.root()
	}
	return r
}

func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *LogRecorder) Handle(_ context.Context, record slog.Record) error {
	clone := record.Clone()
	clone.AddAttrs(r.attrs...)
	root := r.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.records = append(root.records, clone)
	return nil
}

func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	child := &LogRecorder{parent: r.root()}
	child.attrs = append(append([]slog.Attr{}, r.attrs...), attrs...)
	return child
}

func (r *LogRecorder) WithGroup(string) slog.Handler { return r }

// Records returns the records logged at exactly level.
func (r *LogRecorder) Records(level slog.Level) []slog.Record {
	root := r.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	var out []slog.Record
	for _, rec := range root.records {
		if rec.Level == level {
			out = append(out, rec)
		}
	}
	return out
}

// Messages returns the messages logged at exactly level.
func (r *LogRecorder) Messages(level slog.Level) []string {
	var out []string
	for _, rec := range r.Records(level) {
		out = append(out, rec.Message)
	}
	return out
}

// Attr returns the value of key on record, searching record and handler attrs.
func Attr(record slog.Record, key string) (string, bool) {
	var (
		value string
		found bool
	)
	record.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			value = a.Value.String()
			found = true
			return false
		}
		return true
	})
	return value, found
}
