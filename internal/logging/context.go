package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one conversion run.
	FieldRunID = "run_id"
	// FieldExportFile is the export file currently being processed.
	FieldExportFile = "export_file"
	// FieldRecordID is the canonical identifier of a record.
	FieldRecordID = "record_id"
	// FieldRootID is the canonical identifier of the package root being emitted.
	FieldRootID = "root_id"
	// FieldLine is the 1-based line number within an export file.
	FieldLine = "line"
	// FieldEventType classifies a log record for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint is a short next step for the operator.
	FieldErrorHint = "error_hint"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	exportFileKey contextKey = "export_file"
	rootIDKey     contextKey = "root_id"
)

// WithRunID annotates ctx with the conversion run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// WithExportFile annotates ctx with the export file being processed.
func WithExportFile(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, exportFileKey, path)
}

// WithRootID annotates ctx with the package root being emitted.
func WithRootID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, rootIDKey, id)
}

func stringFromContext(ctx context.Context, key contextKey) (string, bool) {
	if str, ok := ctx.Value(key).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := stringFromContext(ctx, runIDKey); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if path, ok := stringFromContext(ctx, exportFileKey); ok {
		fields = append(fields, slog.String(FieldExportFile, path))
	}
	if id, ok := stringFromContext(ctx, rootIDKey); ok {
		fields = append(fields, slog.String(FieldRootID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
