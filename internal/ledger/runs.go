package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Run is one conversion run.
type Run struct {
	ID            string
	Started       time.Time
	Finished      time.Time
	User          string
	Inputs        []string
	OutputDir     string
	HashAlgorithm string
	DryRun        bool

	Files        int
	SkippedFiles int
	Rows         int
	Rejected     int
	Roots        int
	Exported     int
	FailedRoots  int
	Stubs        int
	Placeholders int
	ContentBytes int64
}

// SaveRun inserts or replaces run.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("save run: missing id")
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO runs (
			id, started_at, finished_at, user_id, inputs, output_dir, hash_algorithm, dry_run,
			files, skipped_files, rows_read, rows_rejected, roots, exported, failed_roots,
			stubs, placeholders, content_bytes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			files = excluded.files,
			skipped_files = excluded.skipped_files,
			rows_read = excluded.rows_read,
			rows_rejected = excluded.rows_rejected,
			roots = excluded.roots,
			exported = excluded.exported,
			failed_roots = excluded.failed_roots,
			stubs = excluded.stubs,
			placeholders = excluded.placeholders,
			content_bytes = excluded.content_bytes`,
			run.ID, formatTime(run.Started), formatTime(run.Finished), run.User,
			strings.Join(run.Inputs, "\n"), run.OutputDir, run.HashAlgorithm, boolToInt(run.DryRun),
			run.Files, run.SkippedFiles, run.Rows, run.Rejected, run.Roots, run.Exported, run.FailedRoots,
			run.Stubs, run.Placeholders, run.ContentBytes,
		)
		if err != nil {
			return fmt.Errorf("save run %s: %w", run.ID, err)
		}
		return nil
	})
}

// Runs returns the most recent runs first. A limit of zero or less returns
// every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, finished_at, user_id, inputs, output_dir, hash_algorithm, dry_run,
		files, skipped_files, rows_read, rows_rejected, roots, exported, failed_roots,
		stubs, placeholders, content_bytes
		FROM runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var runs []Run
	err := retryOnBusy(ctx, func() error {
		runs = nil
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				run               Run
				started, finished string
				inputs            string
				dryRun            int
			)
			if err := rows.Scan(
				&run.ID, &started, &finished, &run.User, &inputs, &run.OutputDir, &run.HashAlgorithm, &dryRun,
				&run.Files, &run.SkippedFiles, &run.Rows, &run.Rejected, &run.Roots, &run.Exported, &run.FailedRoots,
				&run.Stubs, &run.Placeholders, &run.ContentBytes,
			); err != nil {
				return err
			}
			run.Started = parseTime(started)
			run.Finished = parseTime(finished)
			if inputs != "" {
				run.Inputs = strings.Split(inputs, "\n")
			}
			run.DryRun = dryRun != 0
			runs = append(runs, run)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
