package export

import (
	"context"
	"log/slog"

	"trimveo/internal/failure"
	"trimveo/internal/logging"
	"trimveo/internal/records"
	"trimveo/internal/schema"
)

// Loader builds record tables from export files.
type Loader struct {
	Encoding   string
	Vocabulary records.Vocabulary
	Policy     records.DuplicatePolicy
	Logger     *slog.Logger
}

// Result is a loaded export.
type Result struct {
	Table *records.Table
	// Rows is the number of data rows read.
	Rows int
	// Rejected holds one error per row that was skipped.
	Rejected []error
}

// Load reads path, binds its header and normalizes every row. The returned
// error is file scoped: an unreadable file or a header missing a required
// column. Row failures are logged and collected in Result.Rejected.
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(l.Logger, "export"))

	file, err := ReadFile(path, l.Encoding)
	if err != nil {
		return nil, failure.Wrap(failure.ErrSchema, path, "read", "", err)
	}

	binding, err := schema.Bind(file.Header)
	if err != nil {
		return nil, failure.Wrap(failure.ErrSchema, path, "bind header", "", err)
	}

	table := records.NewTable(path, binding)
	normalizer := records.NewNormalizer(binding, l.Vocabulary, l.Policy, logger)
	result := &Result{Table: table, Rows: len(file.Rows)}

	for _, row := range file.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := normalizer.Apply(table, row.Cells, row.Line); err != nil {
			result.Rejected = append(result.Rejected, err)
			logging.WarnWithContext(logger, "row skipped", "row_rejected",
				logging.Int(logging.FieldLine, row.Line),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "correct the identifier in the export and rerun"),
				logging.String(logging.FieldImpact, "record not converted"),
			)
		}
	}

	logger.Info("export loaded",
		logging.Int("rows", result.Rows),
		logging.Int("records", table.Len()),
		logging.Int("rejected", len(result.Rejected)),
	)
	return result, nil
}
