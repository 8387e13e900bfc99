package main

import (
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "organize",
		Short: "Organize the working directory without extracting archives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, unlock, err := ctx.prepare(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer unlock()

			organizer, err := newOrganizer(cfg, osfs.New(cfg.Paths.WorkDir), logger)
			if err != nil {
				return err
			}
			report, err := organizer.Organize(cmd.Context())
			if err != nil {
				return err
			}
			writeOrganizeSummary(cmd.OutOrStdout(), report)
			return writeMetrics(cfg.Metrics.Textfile, logger)
		},
	}
}
