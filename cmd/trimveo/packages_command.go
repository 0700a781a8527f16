package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"trimveo/internal/convert"
	"trimveo/internal/logging"
	"trimveo/internal/staging"
)

func newPackagesCommand(ctx *commandContext) *cobra.Command {
	packagesCmd := &cobra.Command{
		Use:   "packages",
		Short: "Inspect and tidy packages in the output directory",
	}

	packagesCmd.AddCommand(newPackagesListCommand(ctx))
	packagesCmd.AddCommand(newPackagesCleanCommand(ctx))

	return packagesCmd
}

func newPackagesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List packages in the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			outputDir := cfg.Paths.OutputDir
			pkgs, err := staging.ListPackages(outputDir)
			if err != nil {
				return fmt.Errorf("list packages: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(pkgs) == 0 {
				fmt.Fprintln(out, "No packages found")
				return nil
			}
			fmt.Fprintf(out, "Output directory: %s\n\n", outputDir)

			var totalSize int64
			sealed := 0
			rows := make([][]string, 0, len(pkgs))
			for _, pkg := range pkgs {
				state := "unsealed"
				if pkg.Sealed {
					state = "sealed"
					sealed++
				}
				totalSize += pkg.Size
				rows = append(rows, []string{
					pkg.Name,
					state,
					humanize.Time(pkg.ModTime),
					humanize.IBytes(uint64(pkg.Size)),
				})
			}

			fmt.Fprint(out, renderTable(
				[]string{"Package", "State", "Modified", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			fmt.Fprintf(out, "\nTotal: %d sealed, %d unsealed, %s\n", sealed, len(pkgs)-sealed, humanize.IBytes(uint64(totalSize)))
			return nil
		},
	}
}

func newPackagesCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAge time.Duration

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove abandoned package directories",
		Long: `Remove unsealed <id>.veo directories left behind by interrupted runs.

A directory is removed when it is older than --max-age and has no sealed
<id>.veo.zip beside it. Directories kept with package.keep_directories sit
next to their archive and are never removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("lock %s: %w", cfg.LockPath(), err)
			}
			if !locked {
				return convert.ErrLocked
			}
			defer func() { _ = lock.Unlock() }()

			logger, err := ctx.logger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logging.Close(logger) }()
			result := staging.CleanAbandoned(cmd.Context(), cfg.Paths.OutputDir, maxAge, logger)
			return printCleanResult(cmd, result)
		},
	}

	cmd.Flags().DurationVar(&maxAge, "max-age", time.Hour, "Only remove directories older than this")
	return cmd
}

func printCleanResult(cmd *cobra.Command, result staging.CleanResult) error {
	out := cmd.OutOrStdout()
	if len(result.Removed) == 0 && len(result.Errors) == 0 {
		fmt.Fprintln(out, "No abandoned package directories to clean")
		return nil
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "Removed %d package directories, %d errors\n", len(result.Removed), len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
		}
		return nil
	}
	fmt.Fprintf(out, "Removed %d package directories\n", len(result.Removed))
	return nil
}
