package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"trimveo/internal/audit"
	"trimveo/internal/config"
	"trimveo/internal/ledger"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var output string
	var runLimit int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Rebuild the audit reports from the ledger",
		Long: `Rebuild ExportedReport.txt, AllEntities.txt and AllFiles.txt from every
record the ledger has seen, then list the most recent runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Ledger.Enabled {
				return errors.New("ledger is disabled (ledger.enabled = false)")
			}
			dir := cfg.Paths.OutputDir
			if strings.TrimSpace(output) != "" {
				if dir, err = config.ExpandPath(output); err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
			}

			path := cfg.LedgerPath()
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("no ledger at %s; run 'trimveo convert' first", path)
			}
			store, err := ledger.Open(path)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			recs, err := store.Records(cmd.Context())
			if err != nil {
				return fmt.Errorf("read ledger records: %w", err)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory %q: %w", dir, err)
			}
			written, err := audit.WriteReports(dir, recs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rebuilt %d reports from %s records\n", len(written), humanize.Comma(int64(len(recs))))
			for _, path := range written {
				fmt.Fprintf(out, "  %s\n", path)
			}

			runs, err := store.Runs(cmd.Context(), runLimit)
			if err != nil {
				return fmt.Errorf("read ledger runs: %w", err)
			}
			if len(runs) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Directory for the rebuilt reports (defaults to paths.output_dir)")
	cmd.Flags().IntVar(&runLimit, "runs", 10, "Number of recent runs to list")
	return cmd
}

func renderRuns(runs []ledger.Run) string {
	headers := []string{"Started", "User", "Files", "Roots", "Exported", "Failed", "Content", "Dry run"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.Started.Local().Format("2006-01-02 15:04:05"),
			run.User,
			strconv.Itoa(run.Files),
			strconv.Itoa(run.Roots),
			strconv.Itoa(run.Exported),
			strconv.Itoa(run.FailedRoots),
			humanize.IBytes(uint64(run.ContentBytes)),
			yesNo(run.DryRun),
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
	return renderTable(headers, rows, aligns)
}
