package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/twpayne/go-demtile"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "lookup LAT LON",
		Short:   "Print the organized file covering a latitude and longitude",
		Example: "  demtile lookup 54.3 26.7\n  demtile lookup -- -33.9 18.4",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("latitude: %w", err)
			}
			lon, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("longitude: %w", err)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tileSet, err := demtile.NewTileSet(osfs.New(cfg.Paths.WorkDir),
				demtile.WithTileSetOutputSuffix(cfg.Organize.OutputSuffix),
			)
			if err != nil {
				return err
			}

			coord, path, ok := tileSet.Lookup(lat, lon)
			switch {
			case coord == (demtile.Coord{}):
				return fmt.Errorf("%v,%v: out of range", lat, lon)
			case !ok:
				return fmt.Errorf("%v,%v: no %s in %s", lat, lon, coord.Filename(cfg.Organize.OutputSuffix), cfg.Paths.WorkDir)
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(cfg.Paths.WorkDir, path))
			return nil
		},
	}
}
