package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var verbose bool
	var debug bool

	ctx := newCommandContext(&configFlag, &verbose, &debug)

	rootCmd := &cobra.Command{
		Use:           "trimveo",
		Short:         "Convert records management exports into VEO packages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress for every record")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Log debug detail including source locations")

	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newReportCommand(ctx))
	rootCmd.AddCommand(newFormatsCommand(ctx))
	rootCmd.AddCommand(newPackagesCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
