package main

import (
	"fmt"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/twpayne/go-demtile"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the GeoTIFF header of every organized file against its filename",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, unlock, err := ctx.prepare(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer unlock()

			tileSet, err := demtile.NewTileSet(osfs.New(cfg.Paths.WorkDir),
				demtile.WithTileSetOutputSuffix(cfg.Organize.OutputSuffix),
			)
			if err != nil {
				return err
			}
			failed, err := tileSet.Verify(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(failed) > 0 {
				rows := make([][]string, 0, len(failed))
				for _, check := range failed {
					logger.Warn("GeoTIFF verification failed", "file", check.Path, "err", check.Err)
					rows = append(rows, []string{check.Path, check.Err.Error()})
				}
				fmt.Fprintln(out, renderTable([]string{"File", "Error"}, rows, nil))
			}
			fmt.Fprintf(out, "Verified %s files, %s failed\n", count(tileSet.Len()), count(len(failed)))

			if err := writeMetrics(cfg.Metrics.Textfile, logger); err != nil {
				return err
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d of %d files failed verification", len(failed), tileSet.Len())
			}
			return nil
		},
	}
}
