package emit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"trimveo/internal/failure"
	"trimveo/internal/logging"
	"trimveo/internal/recordid"
	"trimveo/internal/records"
	"trimveo/internal/template"
)

// ConversionEvent is the history event written into every package.
const ConversionEvent = "Converted to VEO"

// Options control package emission.
type Options struct {
	OutputDir string
	// ContentDir resolves content files. Empty means the directory of the
	// export file.
	ContentDir    string
	HashAlgorithm string
	RDFPrefix     string
	LabelPrefix   string
	// EventDescription is recorded with the conversion history event.
	EventDescription string
	Sign             bool
	DryRun           bool
	// Only restricts emission to these identifiers, which become package
	// roots even when they have a container.
	Only []recordid.ID
}

// Emitter writes packages for the roots of record tables. It is not safe for
// concurrent use.
type Emitter struct {
	Builder   Builder
	Formats   FormatValidator
	Templates *template.Set
	Options   Options
	Logger    *slog.Logger

	exported int
	// claimed maps the folded package name to the root key that used it.
	claimed map[string]string
}

// RootResult describes the outcome for one root.
type RootResult struct {
	Root         string
	Name         string
	Records      int
	Placeholders int
	ContentBytes int64
	Err          error
}

// Result summarises one table.
type Result struct {
	Roots        []RootResult
	Exported     int
	Failed       int
	Placeholders int
	ContentBytes int64
}

// Exported returns the number of packages sealed by this emitter.
func (e *Emitter) Exported() int {
	return e.exported
}

func (e *Emitter) templates() *template.Set {
	if e.Templates == nil {
		return template.Default()
	}
	return e.Templates
}

func (e *Emitter) logger() *slog.Logger {
	return logging.NewComponentLogger(e.Logger, "emitter")
}

func (e *Emitter) contentDir(table *records.Table) string {
	if e.Options.ContentDir != "" {
		return e.Options.ContentDir
	}
	return filepath.Dir(table.Source)
}

// Roots returns the records emitted as package roots, in identifier order.
func (e *Emitter) Roots(table *records.Table) []*records.Record {
	if len(e.Options.Only) == 0 {
		return table.Roots()
	}
	wanted := make(map[string]bool, len(e.Options.Only))
	for _, id := range e.Options.Only {
		wanted[id.String()] = true
	}
	var roots []*records.Record
	for _, rec := range table.Records() {
		if rec.Defined && wanted[rec.Key()] {
			roots = append(roots, rec)
		}
	}
	return roots
}

// EmitTable emits a package for every root of table. Root failures are
// recorded in the result and do not stop the remaining roots; only context
// cancellation returns an error.
func (e *Emitter) EmitTable(ctx context.Context, table *records.Table) (Result, error) {
	var result Result
	for _, root := range e.Roots(table) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		root.Root = true
		rr := e.emitRoot(ctx, table, root)
		result.Roots = append(result.Roots, rr)
		if rr.Err != nil {
			result.Failed++
			continue
		}
		if !e.Options.DryRun {
			result.Exported++
		}
		result.Placeholders += rr.Placeholders
		result.ContentBytes += rr.ContentBytes
	}
	return result, nil
}

func (e *Emitter) emitRoot(ctx context.Context, table *records.Table, root *records.Record) RootResult {
	ctx = logging.WithRootID(ctx, root.Key())
	logger := logging.WithContext(ctx, e.logger())
	rr := RootResult{Root: root.Key(), Name: root.ID.PackageName()}

	plan, err := e.Plan(table, root)
	rr.Records = len(plan.Steps)
	if err != nil {
		rr.Err = err
		e.fail(logger, plan, err)
		return rr
	}
	if err := e.claim(plan); err != nil {
		rr.Err = err
		e.fail(logger, plan, err)
		return rr
	}
	rr.Placeholders = plan.Placeholders()
	if e.Options.DryRun {
		logger.Info("root planned",
			logging.String("package", plan.Name),
			logging.Int("information_objects", len(plan.Steps)),
			logging.String(logging.FieldEventType, "root_planned"),
		)
		return rr
	}

	for _, rec := range plan.Records() {
		rec.State = records.StateEmitting
	}
	bytes, err := e.write(logger, plan)
	if err != nil {
		rr.Err = err
		e.fail(logger, plan, err)
		return rr
	}
	rr.ContentBytes = bytes

	for _, rec := range plan.Records() {
		rec.State = records.StateExported
	}
	e.exported++
	logger.Info("package sealed",
		logging.String("package", plan.Name),
		logging.Int("information_objects", len(plan.Steps)),
		logging.Int("placeholders", rr.Placeholders),
		logging.Int64("content_bytes", bytes),
		logging.Bool("signed", e.Options.Sign),
		logging.String(logging.FieldEventType, "package_sealed"),
	)
	return rr
}

// claim reserves the package name of plan for its root. Names are compared
// case-insensitively since output directories may live on case-insensitive
// filesystems. The same root may be emitted again and overwrites its package.
func (e *Emitter) claim(plan *Plan) error {
	if e.claimed == nil {
		e.claimed = make(map[string]string)
	}
	key := plan.Root.Key()
	folded := strings.ToLower(plan.Name)
	if owner, ok := e.claimed[folded]; ok && owner != key {
		return failure.Wrap(failure.ErrFinalize, key, "claim package name",
			fmt.Sprintf("package name %s already used by %s", plan.Name, owner), nil)
	}
	e.claimed[folded] = key
	return nil
}

func (e *Emitter) fail(logger *slog.Logger, plan *Plan, err error) {
	if !e.Options.DryRun {
		for _, rec := range plan.Records() {
			rec.State = records.StateFailed
		}
	}
	hint := "check the record and its descendants in the export"
	var cycle *CycleError
	switch {
	case errors.As(err, &cycle):
		hint = "break the container loop in the source system"
	case errors.Is(err, failure.ErrContentAttach):
		hint = "check content_dir and the DOS file column"
	case errors.Is(err, failure.ErrDateFormat):
		hint = "fix the Date Created value"
	}
	logging.ErrorWithContext(logger, "root not exported", "root_failed",
		logging.String("package", plan.Name),
		logging.Int("planned_records", len(plan.Steps)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hint),
	)
}

// write performs the builder calls for plan and seals the package.
func (e *Emitter) write(logger *slog.Logger, plan *Plan) (int64, error) {
	pkg, err := e.Builder.Open(e.Options.OutputDir, plan.Name, e.Options.HashAlgorithm)
	if err != nil {
		return 0, failure.Wrap(failure.ErrFinalize, plan.Root.Key(), "open package", "", err)
	}

	scratch := &placeholder{text: e.templates().Placeholder}
	defer scratch.cleanup()

	if err := e.writeSteps(logger, pkg, plan, scratch); err != nil {
		pkg.Abandon()
		return 0, err
	}
	if err := pkg.Finalize(e.Options.Sign); err != nil {
		pkg.Abandon()
		return 0, failure.Wrap(failure.ErrFinalize, plan.Root.Key(), "finalize", "", err)
	}

	var bytes int64
	if sizer, ok := pkg.(contentSizer); ok {
		bytes = sizer.ContentBytes()
	}
	return bytes, nil
}

func (e *Emitter) writeSteps(logger *slog.Logger, pkg Package, plan *Plan, scratch *placeholder) error {
	if err := pkg.AddEvent(ConversionEvent, e.Options.EventDescription); err != nil {
		return failure.Wrap(failure.ErrFinalize, plan.Root.Key(), "add event", "", err)
	}
	for _, step := range plan.Steps {
		key := step.Record.Key()
		if err := pkg.AddInformationObject(step.Label, step.Depth); err != nil {
			return failure.Wrap(failure.ErrFinalize, key, "add information object", "", err)
		}
		if err := pkg.AddMetadataPackage(AGLSSchema, AGLSSyntax, step.AGLS); err != nil {
			return failure.Wrap(failure.ErrFinalize, key, "add AGLS metadata", "", err)
		}
		if err := pkg.AddMetadataPackage(TRIMSchema, TRIMSyntax, step.TRIM); err != nil {
			return failure.Wrap(failure.ErrFinalize, key, "add TRIM metadata", "", err)
		}
		if step.Content == nil {
			continue
		}
		if err := pkg.AddInformationPiece(""); err != nil {
			return failure.Wrap(failure.ErrContentAttach, key, "add information piece", "", err)
		}
		if err := pkg.AddContentFile(step.Content.Ref, step.Content.Source); err != nil {
			return failure.Wrap(failure.ErrContentAttach, key, "attach content", step.Content.Source, err)
		}
		if step.Content.Approved {
			continue
		}

		logging.WarnWithContext(logger, "content file has no long term sustainable format", "content_not_ltsf",
			logging.String(logging.FieldRecordID, key),
			logging.String("content_file", step.Content.Source),
			logging.String(logging.FieldErrorHint, "add a sustainable rendition or extend the approved formats"),
			logging.String(logging.FieldImpact, "placeholder content file attached"),
			logging.Alert("unsustainable_format"),
		)
		path, err := scratch.path()
		if err != nil {
			return failure.Wrap(failure.ErrContentAttach, key, "create placeholder", "", err)
		}
		if err := pkg.AddContentFile(step.Content.PlaceholderRef, path); err != nil {
			return failure.Wrap(failure.ErrContentAttach, key, "attach placeholder", "", err)
		}
	}
	return nil
}

// placeholder is the explanatory file attached beside unapproved content. It
// is written at most once per root, on first use.
type placeholder struct {
	text string
	dir  string
	file string
}

func (p *placeholder) path() (string, error) {
	if p.file != "" {
		return p.file, nil
	}
	dir, err := os.MkdirTemp("", "trimveo-placeholder-")
	if err != nil {
		return "", err
	}
	p.dir = dir
	file := filepath.Join(dir, PlaceholderName)
	if err := os.WriteFile(file, []byte(p.text), 0o644); err != nil {
		return "", err
	}
	p.file = file
	return file, nil
}

func (p *placeholder) cleanup() {
	if p.dir != "" {
		_ = os.RemoveAll(p.dir)
	}
}
