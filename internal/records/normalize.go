package records

import (
	"fmt"
	"log/slog"

	"trimveo/internal/failure"
	"trimveo/internal/logging"
	"trimveo/internal/recordid"
	"trimveo/internal/schema"
)

// DuplicatePolicy decides what happens when a row repeats an identifier
// already defined in the same file.
type DuplicatePolicy string

const (
	LastWriteWins DuplicatePolicy = "last_write_wins"
	RejectLater   DuplicatePolicy = "reject"
)

// Normalizer builds Records from raw rows.
type Normalizer struct {
	binding    *schema.Binding
	vocabulary Vocabulary
	policy     DuplicatePolicy
	logger     *slog.Logger
}

// NewNormalizer creates a normalizer for rows bound by binding.
func NewNormalizer(binding *schema.Binding, vocabulary Vocabulary, policy DuplicatePolicy, logger *slog.Logger) *Normalizer {
	if vocabulary == nil {
		vocabulary = DefaultVocabulary(nil)
	}
	if policy == "" {
		policy = LastWriteWins
	}
	return &Normalizer{
		binding:    binding,
		vocabulary: vocabulary,
		policy:     policy,
		logger:     logging.NewComponentLogger(logger, "normalizer"),
	}
}

// Build parses one row into a Record without touching any table.
func (n *Normalizer) Build(row []string, source string, line int) (*Record, error) {
	b := n.binding
	rawID := b.Value(row, schema.RoleID)
	id, err := recordid.Parse(rawID)
	if err != nil {
		return nil, failure.Wrap(failure.ErrIdentifier, fmt.Sprintf("line %d", line), "parse id", "", err)
	}

	var container recordid.ID
	if rawContainer := b.Value(row, schema.RoleContainer); rawContainer != "" {
		container, err = recordid.Parse(rawContainer)
		if err != nil {
			return nil, failure.Wrap(failure.ErrIdentifier, fmt.Sprintf("line %d", line), "parse container", rawID, err)
		}
	}

	fields := make([]string, b.Width())
	copy(fields, row)

	rec := &Record{
		ID:                id,
		RawID:             rawID,
		Fields:            fields,
		Container:         container,
		Title:             b.Value(row, schema.RoleTitle),
		DateCreated:       b.Value(row, schema.RoleDateCreated),
		DateRegistered:    b.Value(row, schema.RoleDateRegistered),
		Classification:    b.Value(row, schema.RoleClassification),
		RetentionSchedule: b.Value(row, schema.RoleRetentionSchedule),
		ContentFile:       b.Value(row, schema.RoleContentFile),
		RecordTypeRaw:     b.Value(row, schema.RoleRecordType),
		ContainedRecords:  b.Value(row, schema.RoleContainedRecords),
		IsPart:            b.Value(row, schema.RoleIsPart),
		Source:            source,
		Line:              line,
		Defined:           true,
		Root:              container.IsZero(),
	}

	label, known := n.vocabulary.Lookup(rec.RecordTypeRaw)
	rec.RecordType = label
	if !known {
		logging.WarnWithContext(n.logger, "record type not in vocabulary", "record_type_unmapped",
			logging.String(logging.FieldRecordID, id.String()),
			logging.String("record_type", rec.RecordTypeRaw),
			logging.String(logging.FieldExportFile, source),
			logging.Int(logging.FieldLine, line),
			logging.String(logging.FieldErrorHint, "add the value to [records.record_types]"),
			logging.String(logging.FieldImpact, "raw record type used as the label"),
		)
	}
	return rec, nil
}

// Apply builds a Record from row and stores it in table. A repeated
// identifier overwrites the stored record under LastWriteWins and is refused
// under RejectLater.
func (n *Normalizer) Apply(table *Table, row []string, line int) (*Record, error) {
	rec, err := n.Build(row, table.Source, line)
	if err != nil {
		return nil, err
	}
	if existing, ok := table.Lookup(rec.ID); ok && existing.Defined {
		if n.policy == RejectLater {
			return nil, failure.Wrap(failure.ErrDuplicate, fmt.Sprintf("line %d", line), "store",
				fmt.Sprintf("%s already defined at line %d", rec.Key(), existing.Line), nil)
		}
		n.logger.Debug("duplicate identifier overwrites earlier row",
			logging.String(logging.FieldRecordID, rec.Key()),
			logging.Int("previous_line", existing.Line),
			logging.Int(logging.FieldLine, line),
		)
	}
	return table.Put(rec), nil
}
