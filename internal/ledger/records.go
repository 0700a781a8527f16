package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"trimveo/internal/recordid"
	"trimveo/internal/records"
)

// MergeRecords stores recs under runID. A stored record is replaced only by a
// defined record; a stub merges its referrers into whatever is stored.
func (s *Store) MergeRecords(ctx context.Context, runID string, recs []*records.Record) error {
	now := formatTime(time.Now())
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range recs {
			if err := mergeRecord(ctx, tx, runID, now, rec); err != nil {
				return fmt.Errorf("merge record %s: %w", rec.Key(), err)
			}
		}
		return nil
	})
}

func mergeRecord(ctx context.Context, tx *sql.Tx, runID, now string, rec *records.Record) error {
	var (
		storedRefs       string
		storedReferenced int
	)
	err := tx.QueryRowContext(ctx,
		"SELECT referenced_by, is_referenced FROM records WHERE id = ?", rec.Key(),
	).Scan(&storedRefs, &storedReferenced)
	exists := true
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		return err
	}

	refs := mergeRefs(storedRefs, rec.ReferencedBy())
	referenced := rec.Referenced || storedReferenced != 0

	if exists && !rec.Defined {
		_, err := tx.ExecContext(ctx,
			"UPDATE records SET referenced_by = ?, is_referenced = ?, updated_at = ? WHERE id = ?",
			refs, boolToInt(referenced), now, rec.Key(),
		)
		return err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO records (
		id, raw_id, container, title, date_created, date_registered, classification,
		record_type_raw, record_type, source, line, is_root, is_referenced, is_defined,
		state, referenced_by, run_id, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		raw_id = excluded.raw_id,
		container = excluded.container,
		title = excluded.title,
		date_created = excluded.date_created,
		date_registered = excluded.date_registered,
		classification = excluded.classification,
		record_type_raw = excluded.record_type_raw,
		record_type = excluded.record_type,
		source = excluded.source,
		line = excluded.line,
		is_root = excluded.is_root,
		is_referenced = excluded.is_referenced,
		is_defined = excluded.is_defined,
		state = excluded.state,
		referenced_by = excluded.referenced_by,
		run_id = excluded.run_id,
		updated_at = excluded.updated_at`,
		rec.Key(), rec.RawID, rec.ContainerKey(), rec.Title, rec.DateCreated, rec.DateRegistered,
		rec.Classification, rec.RecordTypeRaw, rec.RecordType, rec.Source, rec.Line,
		boolToInt(rec.Root), boolToInt(referenced), boolToInt(rec.Defined),
		rec.State.String(), refs, runID, now,
	)
	return err
}

func mergeRefs(stored string, incoming []string) string {
	set := make(map[string]struct{})
	for _, key := range strings.Split(stored, "\n") {
		if key != "" {
			set[key] = struct{}{}
		}
	}
	for _, key := range incoming {
		set[key] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return strings.Join(out, "\n")
}

// Records returns every stored record in identifier order. Rows whose stored
// identifiers no longer parse are skipped.
func (s *Store) Records(ctx context.Context) ([]*records.Record, error) {
	var out []*records.Record
	err := retryOnBusy(ctx, func() error {
		out = nil
		rows, err := s.db.QueryContext(ctx, `SELECT
			id, raw_id, container, title, date_created, date_registered, classification,
			record_type_raw, record_type, source, line, is_root, is_referenced, is_defined,
			state, referenced_by
			FROM records ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				key, container, state, refs string
				root, referenced, defined   int
				rec                         records.Record
			)
			if err := rows.Scan(
				&key, &rec.RawID, &container, &rec.Title, &rec.DateCreated, &rec.DateRegistered, &rec.Classification,
				&rec.RecordTypeRaw, &rec.RecordType, &rec.Source, &rec.Line, &root, &referenced, &defined,
				&state, &refs,
			); err != nil {
				return err
			}
			id, err := recordid.Parse(key)
			if err != nil {
				continue
			}
			rec.ID = id
			if container != "" {
				if rec.Container, err = recordid.Parse(container); err != nil {
					continue
				}
			}
			rec.Root = root != 0
			rec.Referenced = referenced != 0
			rec.Defined = defined != 0
			rec.State = records.ParseState(state)
			for _, ref := range strings.Split(refs, "\n") {
				if ref != "" {
					rec.AddReferencedBy(ref)
				}
			}
			out = append(out, &rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}
