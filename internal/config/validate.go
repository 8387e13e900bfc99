package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOrganize(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.SourceDir == "" {
		return errors.New("paths.source_dir must be set")
	}
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.SourceDir == c.Paths.WorkDir {
		return fmt.Errorf("paths.source_dir and paths.work_dir must differ (both %s)", c.Paths.WorkDir)
	}
	// Everything below the working directory that is not a tile is deleted.
	if within(c.Paths.WorkDir, c.Paths.SourceDir) {
		return fmt.Errorf("paths.source_dir %s must not be inside paths.work_dir", c.Paths.SourceDir)
	}
	if within(c.Paths.WorkDir, c.Paths.LockPath) {
		return fmt.Errorf("paths.lock_path %s must not be inside paths.work_dir", c.Paths.LockPath)
	}
	return nil
}

// within returns true if path is below dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != "." && filepath.IsLocal(rel)
}

func (c *Config) validateOrganize() error {
	if !strings.HasPrefix(c.Organize.ArchiveExt, ".") || len(c.Organize.ArchiveExt) < 2 {
		return fmt.Errorf("organize.archive_ext must start with '.', got %q", c.Organize.ArchiveExt)
	}
	if c.Organize.MarkerSuffix == "" {
		return errors.New("organize.marker_suffix must be set")
	}
	if c.Organize.OutputSuffix == "" {
		return errors.New("organize.output_suffix must be set")
	}
	if c.Organize.DirCacheSize <= 0 {
		return errors.New("organize.dir_cache_size must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}
