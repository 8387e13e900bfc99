package main

import (
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/twpayne/go-demtile"
)

func runUnpack(cmd *cobra.Command, ctx *commandContext) error {
	cfg, logger, unlock, err := ctx.prepare(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer unlock()

	work := osfs.New(cfg.Paths.WorkDir)
	organizer, err := newOrganizer(cfg, work, logger)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	unpacker := demtile.NewUnpacker(osfs.New(cfg.Paths.SourceDir), work, organizer,
		demtile.WithArchiveExt(cfg.Organize.ArchiveExt),
		demtile.WithUnpackerLogger(logger),
		demtile.WithArchiveFunc(func(result demtile.ArchiveResult) {
			if bar != nil {
				bar.Describe(result.Name)
				_ = bar.Add(1)
			}
		}),
	)

	if terminal, ok := terminalWriter(cmd.ErrOrStderr()); ok {
		if names, err := unpacker.Archives(); err == nil && len(names) > 0 {
			bar = progressbar.NewOptions(len(names),
				progressbar.OptionSetWriter(terminal),
				progressbar.OptionSetDescription("extracting"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
	}

	report, err := unpacker.Unpack(cmd.Context())
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return err
	}

	if len(report.Archives) == 0 {
		logger.Warn("nothing to unpack", "source_dir", cfg.Paths.SourceDir, "ext", cfg.Organize.ArchiveExt)
	}
	writeUnpackSummary(cmd.OutOrStdout(), report)
	return writeMetrics(cfg.Metrics.Textfile, logger)
}
