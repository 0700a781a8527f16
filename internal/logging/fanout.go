package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// fanout passes every record to each handler that accepts its level. closer
// is the log file behind one of the handlers, shared by derived handlers.
type fanout struct {
	handlers []slog.Handler
	closer   io.Closer
}

func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &fanout{handlers: make([]slog.Handler, len(f.handlers)), closer: f.closer}
	for i, h := range f.handlers {
		out.handlers[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f *fanout) WithGroup(name string) slog.Handler {
	out := &fanout{handlers: make([]slog.Handler, len(f.handlers)), closer: f.closer}
	for i, h := range f.handlers {
		out.handlers[i] = h.WithGroup(name)
	}
	return out
}

// Close releases the log file opened for logger, if any. Loggers derived
// from it share the file and must not be used afterwards.
func Close(logger *slog.Logger) error {
	if logger == nil {
		return nil
	}
	f, ok := logger.Handler().(*fanout)
	if !ok || f.closer == nil {
		return nil
	}
	return f.closer.Close()
}
