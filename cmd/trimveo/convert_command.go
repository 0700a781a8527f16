package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"trimveo/internal/audit"
	"trimveo/internal/config"
	"trimveo/internal/convert"
	"trimveo/internal/logging"
	"trimveo/internal/recordid"
	"trimveo/internal/signing"
)

type convertOptions struct {
	output     string
	contentDir string
	supportDir string
	template   string
	hash       string
	rdfPrefix  string
	pfx        string
	noSign     bool
	keep       bool
	only       []string
	dryRun     bool
	progress   bool
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert [flags] <file|dir>...",
		Short: "Convert record exports into VEO packages",
		Long: `Convert one or more tab separated record exports into VEO packages.

One <id>.veo.zip is written per root record. Directories are walked
recursively for files matching input.extensions. Failed roots are listed in
the summary and do not change the exit status.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := opts.apply(base)
			if err != nil {
				return err
			}
			only, err := parseOnly(opts.only)
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logging.Close(logger) }()

			runner := &convert.Runner{
				Config: cfg,
				Only:   only,
				DryRun: opts.dryRun,
				Logger: logger,
			}
			if cfg.Package.Sign && !opts.dryRun && cfg.Signing.PFXFile != "" {
				signer, err := loadSigner(cfg)
				if err != nil {
					return err
				}
				runner.Signer = signer
			}

			var bar *progressbar.ProgressBar
			if opts.progress {
				runner.Progress = func(done, total int, path string) {
					if bar == nil {
						bar = newProgressBar(cmd, total)
					}
					bar.Describe(filepath.Base(path))
					_ = bar.Set(done)
				}
			}

			result, err := runner.Run(cmd.Context(), args)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}

			audit.RenderSummary(cmd.OutOrStdout(), result.Summary, result.Records)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "Directory for packages and reports (paths.output_dir)")
	flags.StringVar(&opts.contentDir, "content-dir", "", "Directory content files are resolved against (paths.content_dir)")
	flags.StringVar(&opts.supportDir, "support", "", "Directory holding validLTSF.txt and VEOReadme.txt (paths.support_dir)")
	flags.StringVar(&opts.template, "template", "", "Directory holding aglsCommon.txt (paths.template_dir)")
	flags.StringVar(&opts.hash, "hash", "", "Hash algorithm: SHA-1, SHA-256, SHA-384 or SHA-512")
	flags.StringVar(&opts.rdfPrefix, "rdf-prefix", "", "Prefix for rdf:about identifiers")
	flags.StringVar(&opts.pfx, "pfx", "", "PKCS#12 file holding the signing key")
	flags.BoolVar(&opts.noSign, "no-sign", false, "Write unsigned packages")
	flags.BoolVar(&opts.keep, "keep", false, "Keep the unzipped <id>.veo directory next to each archive")
	flags.StringArrayVar(&opts.only, "only", nil, "Emit only this record as a package root (repeatable)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Plan every package without writing anything")
	flags.BoolVar(&opts.progress, "progress", false, "Show a progress bar while export files are processed")
	return cmd
}

// apply copies base and layers the command-line overrides on top.
func (o convertOptions) apply(base *config.Config) (*config.Config, error) {
	cfg := *base
	cfg.Formats.Approved = append([]string(nil), base.Formats.Approved...)
	cfg.Input.Extensions = append([]string(nil), base.Input.Extensions...)

	set := func(dst *string, value string) {
		if v := strings.TrimSpace(value); v != "" {
			*dst = v
		}
	}
	set(&cfg.Paths.OutputDir, o.output)
	set(&cfg.Paths.ContentDir, o.contentDir)
	set(&cfg.Paths.SupportDir, o.supportDir)
	set(&cfg.Paths.TemplateDir, o.template)
	set(&cfg.Package.HashAlgorithm, o.hash)
	set(&cfg.Package.RDFIDPrefix, o.rdfPrefix)
	set(&cfg.Signing.PFXFile, o.pfx)
	if o.noSign {
		cfg.Package.Sign = false
	}
	if o.keep {
		cfg.Package.KeepDirectories = true
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseOnly(values []string) ([]recordid.ID, error) {
	ids := make([]recordid.ID, 0, len(values))
	for _, value := range values {
		id, err := recordid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("--only: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// loadSigner opens the configured PFX, prompting for the password on a
// terminal when neither the config nor the environment supplies one.
func loadSigner(cfg *config.Config) (*signing.KeySigner, error) {
	password := cfg.Signing.PFXPassword
	if password == "" && isatty.IsTerminal(os.Stdin.Fd()) {
		prompt := &survey.Password{
			Message: fmt.Sprintf("Password for %s:", filepath.Base(cfg.Signing.PFXFile)),
		}
		if err := survey.AskOne(prompt, &password); err != nil {
			return nil, fmt.Errorf("read pfx password: %w", err)
		}
	}
	signer, err := signing.LoadPFX(cfg.Signing.PFXFile, password)
	if err != nil {
		if password == "" {
			return nil, errors.Join(err, fmt.Errorf("no password supplied; set %s or signing.pfx_password", config.PasswordEnv))
		}
		return nil, err
	}
	return signer, nil
}

func newProgressBar(cmd *cobra.Command, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("exports"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}
