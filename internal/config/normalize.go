package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOrganize()
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return c.normalizeMetrics()
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir, err = expandPath(strings.TrimSpace(c.Paths.SourceDir)); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.WorkDir, err = expandPath(strings.TrimSpace(c.Paths.WorkDir)); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	c.Paths.LockPath = strings.TrimSpace(c.Paths.LockPath)
	if c.Paths.LockPath == "" && c.Paths.WorkDir != "" {
		c.Paths.LockPath = c.Paths.WorkDir + lockSuffix
	}
	if c.Paths.LockPath, err = expandPath(c.Paths.LockPath); err != nil {
		return fmt.Errorf("paths.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeOrganize() {
	c.Organize.ArchiveExt = strings.TrimSpace(c.Organize.ArchiveExt)
	c.Organize.MarkerSuffix = strings.TrimSpace(c.Organize.MarkerSuffix)
	c.Organize.OutputSuffix = strings.TrimSpace(c.Organize.OutputSuffix)
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeMetrics() error {
	var err error
	if c.Metrics.Textfile, err = expandPath(strings.TrimSpace(c.Metrics.Textfile)); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}
