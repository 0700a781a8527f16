// Package convert runs a whole conversion: it discovers export files, loads
// and assembles each one, emits packages for its roots, and writes the audit
// reports and ledger entries for the run.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"trimveo/internal/audit"
	"trimveo/internal/config"
	"trimveo/internal/emit"
	"trimveo/internal/export"
	"trimveo/internal/failure"
	"trimveo/internal/ledger"
	"trimveo/internal/logging"
	"trimveo/internal/ltsf"
	"trimveo/internal/preflight"
	"trimveo/internal/recordid"
	"trimveo/internal/records"
	"trimveo/internal/staging"
	"trimveo/internal/template"
	"trimveo/internal/veo"
)

// abandonedAge is how old an unsealed package directory must be before a run
// removes it.
const abandonedAge = time.Hour

// ErrLocked is returned when another run holds the state directory lock.
var ErrLocked = errors.New("another conversion is running")

// Signer seals packages and names itself in the summary.
type Signer interface {
	veo.Signer
	Subject() string
}

// Runner converts export files using Config.
type Runner struct {
	Config *config.Config
	// Signer is required when Config.Package.Sign is set.
	Signer Signer
	Only   []recordid.ID
	DryRun bool
	Logger *slog.Logger
	// Progress is called after each export file.
	Progress func(done, total int, path string)
	Now      func() time.Time
}

// Result is the outcome of a run.
type Result struct {
	Summary audit.Summary
	// Records is the run's registry in identifier order.
	Records []*records.Record
	Roots   []emit.RootResult
	Reports []string
}

type packageBuilder struct {
	*veo.Builder
}

func (b packageBuilder) Open(outputDir, name, hashAlgorithm string) (emit.Package, error) {
	pkg, err := b.Builder.Open(outputDir, name, hashAlgorithm)
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run converts every export file found in inputs. Root and file failures are
// counted in the summary; the returned error is process scoped.
func (r *Runner) Run(ctx context.Context, inputs []string) (*Result, error) {
	cfg := r.Config
	if cfg == nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "", "run", "missing configuration", nil)
	}
	if r.DryRun && cfg.Package.Sign {
		unsigned := *cfg
		unsigned.Package.Sign = false
		cfg = &unsigned
	}
	if err := cfg.ValidateForConversion(); err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "", "validate", "", err)
	}
	if cfg.Package.Sign && r.Signer == nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "", "sign", "no signer loaded", nil)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "", "prepare directories", "", err)
	}
	for _, check := range []preflight.Result{
		preflight.CheckDirectoryAccess("output directory", cfg.Paths.OutputDir),
		preflight.CheckDirectoryAccess("state directory", cfg.Paths.StateDir),
	} {
		if !check.Passed {
			return nil, failure.Wrap(failure.ErrConfiguration, "", "preflight", check.Name+": "+check.Detail, nil)
		}
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, cfg.LockPath(), "lock", "", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, cfg.LockPath())
	}
	defer func() { _ = lock.Unlock() }()

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.Logger, "convert"))

	formats, err := loadFormats(cfg)
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "", "load formats", "", err)
	}
	templates, err := template.Load(cfg.Paths.TemplateDir)
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "", "load templates", "", err)
	}
	files, err := export.Discover(inputs, cfg.Input.Extensions)
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, "", "discover inputs", "", err)
	}
	if len(files) == 0 {
		return nil, failure.Wrap(failure.ErrConfiguration, "", "discover inputs", "no export files found", nil)
	}

	started := r.now()
	summary := audit.Summary{
		RunID:         runID,
		Started:       started,
		User:          cfg.Signing.UserID,
		Inputs:        files,
		HashAlgorithm: cfg.Package.HashAlgorithm,
		OutputDir:     cfg.Paths.OutputDir,
		Signer:        "(unsigned)",
		DryRun:        r.DryRun,
	}
	if cfg.Package.Sign {
		summary.Signer = r.Signer.Subject()
	}

	if !r.DryRun {
		cleaned := staging.CleanAbandoned(ctx, cfg.Paths.OutputDir, abandonedAge, logger)
		for _, e := range cleaned.Errors {
			logger.Debug("cleanup error", logging.String("path", e.Path), logging.Error(e.Error))
		}
	}

	emitter := &emit.Emitter{
		Builder: packageBuilder{&veo.Builder{
			Signer:        r.Signer,
			UserID:        cfg.Signing.UserID,
			Readme:        existingFile(cfg.ReadmePath()),
			KeepDirectory: cfg.Package.KeepDirectories,
			Logger:        logger,
		}},
		Formats:   formats,
		Templates: templates,
		Options: emit.Options{
			OutputDir:     cfg.Paths.OutputDir,
			ContentDir:    cfg.Paths.ContentDir,
			HashAlgorithm: cfg.Package.HashAlgorithm,
			RDFPrefix:     cfg.Package.RDFIDPrefix,
			LabelPrefix:   cfg.Package.LabelPrefix,
			Sign:          cfg.Package.Sign,
			DryRun:        r.DryRun,
			Only:          r.Only,
		},
		Logger: logger,
	}
	loader := &export.Loader{
		Encoding:   cfg.Input.Encoding,
		Vocabulary: records.DefaultVocabulary(cfg.Records.RecordTypes),
		Policy:     records.DuplicatePolicy(cfg.Input.DuplicatePolicy),
		Logger:     logger,
	}

	registry := records.NewRegistry()
	result := &Result{}

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fileCtx := logging.WithExportFile(ctx, path)
		fileLogger := logging.WithContext(fileCtx, logger)

		loaded, err := loader.Load(fileCtx, path)
		if err != nil {
			if failure.ScopeOf(err) != failure.ScopeFile {
				return nil, err
			}
			summary.SkippedFiles++
			logging.ErrorWithContext(fileLogger, "export skipped", "file_skipped",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the header row and file encoding"),
			)
			r.progress(i+1, len(files), path)
			continue
		}
		summary.Files++
		summary.Rows += loaded.Rows
		summary.Rejected += len(loaded.Rejected)

		assembly := records.Assemble(loaded.Table, fileLogger)
		summary.Stubs += len(assembly.Stubs)
		registry.Merge(loaded.Table)

		emitter.Options.EventDescription = "Converted from export " + filepath.Base(path)
		emitted, err := emitter.EmitTable(fileCtx, loaded.Table)
		if err != nil {
			return nil, err
		}
		summary.Roots += len(emitted.Roots)
		summary.Exported += emitted.Exported
		summary.FailedRoots += emitted.Failed
		summary.Placeholders += emitted.Placeholders
		summary.ContentBytes += emitted.ContentBytes
		result.Roots = append(result.Roots, emitted.Roots...)

		for _, cycle := range unreached(loaded.Table, assembly.Cycles) {
			summary.Cycles = append(summary.Cycles, cycle)
			logging.WarnWithContext(fileLogger, "container cycle not exported", "container_cycle",
				logging.Strings("records", cycle),
				logging.String(logging.FieldErrorHint, "break the container loop in the source system"),
				logging.String(logging.FieldImpact, "records in the loop were not converted"),
			)
		}
		r.progress(i+1, len(files), path)
	}

	summary.Duration = r.now().Sub(started)
	result.Records = registry.Records()
	result.Summary = summary

	if r.DryRun {
		logger.Info("dry run complete", logging.Int("roots", summary.Roots), logging.Int("failed_roots", summary.FailedRoots))
		return result, nil
	}

	reports, err := audit.WriteReports(cfg.Paths.OutputDir, result.Records)
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, cfg.Paths.OutputDir, "write reports", "", err)
	}
	result.Reports = reports

	if cfg.Ledger.Enabled {
		if err := r.record(ctx, result); err != nil {
			logging.WarnWithContext(logger, "ledger not updated", "ledger_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check ledger.path or delete an outdated ledger"),
				logging.String(logging.FieldImpact, "trimveo report will not include this run"),
			)
		}
	}

	logger.Info("conversion complete",
		logging.Int("files", summary.Files),
		logging.Int("exported", summary.Exported),
		logging.Int("failed_roots", summary.FailedRoots),
		logging.Duration("duration", summary.Duration),
		logging.String(logging.FieldEventType, "run_complete"),
	)
	return result, nil
}

func (r *Runner) progress(done, total int, path string) {
	if r.Progress != nil {
		r.Progress(done, total, path)
	}
}

func loadFormats(cfg *config.Config) (*ltsf.Validator, error) {
	if len(cfg.Formats.Approved) > 0 {
		return ltsf.New(cfg.Formats.Approved...), nil
	}
	return ltsf.Load(cfg.LTSFListPath())
}

func (r *Runner) record(ctx context.Context, result *Result) error {
	store, err := ledger.Open(r.Config.LedgerPath())
	if err != nil {
		return err
	}
	defer store.Close()

	s := result.Summary
	run := ledger.Run{
		ID:            s.RunID,
		Started:       s.Started,
		Finished:      s.Started.Add(s.Duration),
		User:          s.User,
		Inputs:        s.Inputs,
		OutputDir:     s.OutputDir,
		HashAlgorithm: s.HashAlgorithm,
		DryRun:        s.DryRun,
		Files:         s.Files,
		SkippedFiles:  s.SkippedFiles,
		Rows:          s.Rows,
		Rejected:      s.Rejected,
		Roots:         s.Roots,
		Exported:      s.Exported,
		FailedRoots:   s.FailedRoots,
		Stubs:         s.Stubs,
		Placeholders:  s.Placeholders,
		ContentBytes:  s.ContentBytes,
	}
	if err := store.SaveRun(ctx, run); err != nil {
		return err
	}
	return store.MergeRecords(ctx, run.ID, result.Records)
}

// unreached keeps the cycles none of whose records were emitted.
func unreached(table *records.Table, cycles [][]string) [][]string {
	var out [][]string
	for _, cycle := range cycles {
		touched := false
		for _, key := range cycle {
			if rec, ok := table.Get(key); ok && rec.State != records.StateUnvisited {
				touched = true
				break
			}
		}
		if !touched {
			out = append(out, cycle)
		}
	}
	return out
}

func existingFile(path string) string {
	if path == "" {
		return ""
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ""
	}
	return path
}
