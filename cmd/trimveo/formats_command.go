package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"trimveo/internal/ltsf"
)

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the approved long-term sustainable formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var validator *ltsf.Validator
			source := "formats.approved"
			if len(cfg.Formats.Approved) > 0 {
				validator = ltsf.New(cfg.Formats.Approved...)
			} else {
				path := cfg.LTSFListPath()
				if path == "" {
					return errors.New("no formats configured: set formats.approved or paths.support_dir")
				}
				if validator, err = ltsf.Load(path); err != nil {
					return err
				}
				source = path
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d approved formats (%s)\n", validator.Len(), source)
			for _, ext := range validator.Extensions() {
				fmt.Fprintln(out, ext)
			}
			return nil
		},
	}
}
