package main

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twpayne/go-demtile"
)

func newTileDirCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tiledir NAME...",
		Short: "Print the tile directory and canonical filename for each NAME",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range args {
				coord, ok := demtile.ParseFilename(filepath.Base(name))
				if !ok {
					fmt.Fprintf(out, "%s\tunparseable\n", name)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\n", name, path.Join(coord.TileDir(), coord.Filename(cfg.Organize.OutputSuffix)))
			}
			return nil
		},
	}
}
