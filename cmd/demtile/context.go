package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"

	"github.com/twpayne/go-demtile"
	"github.com/twpayne/go-demtile/internal/config"
	"github.com/twpayne/go-demtile/internal/logging"
)

type commandContext struct {
	configFlag *string
	overrides  *config.Overrides

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, overrides *config.Overrides) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		overrides:  overrides,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		var overrides config.Overrides
		if c.overrides != nil {
			overrides = *c.overrides
		}
		cfg, _, _, err := config.LoadWithOverrides(path, overrides)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// prepare loads the configuration, creates the working directories, builds
// a logger writing to w, and takes the run lock. The returned function
// releases the lock.
func (c *commandContext) prepare(w io.Writer) (*config.Config, *slog.Logger, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, nil, nil, fmt.Errorf("ensure directories: %w", err)
	}
	logger, err := logging.NewFromConfig(cfg, w)
	if err != nil {
		return nil, nil, nil, err
	}
	unlock, err := acquireLock(cfg.Paths.LockPath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Debug("acquired lock", "path", cfg.Paths.LockPath)
	return cfg, logger, unlock, nil
}

func acquireLock(path string) (func(), error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another demtile run holds %s", path)
	}
	return func() {
		_ = lock.Unlock()
	}, nil
}

func newOrganizer(cfg *config.Config, fsys billy.Filesystem, logger *slog.Logger) (*demtile.Organizer, error) {
	return demtile.NewOrganizer(fsys,
		demtile.WithDirCacheSize(cfg.Organize.DirCacheSize),
		demtile.WithLogger(logger),
		demtile.WithMarkerSuffix(cfg.Organize.MarkerSuffix),
		demtile.WithOutputSuffix(cfg.Organize.OutputSuffix),
		demtile.WithVerifyGeoTIFF(cfg.Organize.VerifyGeoTIFF),
	)
}

func terminalWriter(w io.Writer) (*os.File, bool) {
	file, ok := w.(*os.File)
	if !ok {
		return nil, false
	}
	fd := file.Fd()
	return file, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
