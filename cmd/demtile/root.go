package main

import (
	"github.com/spf13/cobra"

	"github.com/twpayne/go-demtile/internal/config"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var overrides config.Overrides

	ctx := newCommandContext(&configFlag, &overrides)

	rootCmd := &cobra.Command{
		Use:           "demtile",
		Short:         "Unpack ALOS World 3D archives into 10 degree tile directories",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnpack(cmd, ctx)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	flags.StringVar(&overrides.SourceDir, "source", "", "Directory containing the downloaded archives")
	flags.StringVar(&overrides.WorkDir, "work", "", "Directory to extract into and organize")
	flags.BoolVar(&overrides.VerifyGeoTIFF, "verify", false, "Check each GeoTIFF header against its filename")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newOrganizeCommand(ctx))
	rootCmd.AddCommand(newTileDirCommand(ctx))
	rootCmd.AddCommand(newLookupCommand(ctx))
	rootCmd.AddCommand(newVerifyCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
