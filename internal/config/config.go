package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the source and working directories.
type Paths struct {
	SourceDir string `toml:"source_dir"`
	WorkDir   string `toml:"work_dir"`
	LockPath  string `toml:"lock_path"` // Default: <work_dir>.lock
}

// Organize contains configuration for archive selection and file organization.
type Organize struct {
	ArchiveExt    string `toml:"archive_ext"`
	MarkerSuffix  string `toml:"marker_suffix"`
	OutputSuffix  string `toml:"output_suffix"`
	VerifyGeoTIFF bool   `toml:"verify_geotiff"`
	DirCacheSize  int    `toml:"dir_cache_size"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Metrics contains configuration for the Prometheus textfile written after a run.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Config encapsulates all configuration values for demtile.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Organize Organize `toml:"organize"`
	Logging  Logging  `toml:"logging"`
	Metrics  Metrics  `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Overrides holds command-line values applied after the configuration file and
// the environment. Zero values leave the configuration unchanged.
type Overrides struct {
	SourceDir     string
	WorkDir       string
	VerifyGeoTIFF bool
	LogLevel      string
}

func (o Overrides) apply(c *Config) {
	if o.SourceDir != "" {
		c.Paths.SourceDir = o.SourceDir
	}
	if o.WorkDir != "" {
		c.Paths.WorkDir = o.WorkDir
	}
	if o.VerifyGeoTIFF {
		c.Organize.VerifyGeoTIFF = true
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	return LoadWithOverrides(path, Overrides{})
}

// LoadWithOverrides is like [Load] but applies overrides before normalizing
// and validating.
func LoadWithOverrides(path string, overrides Overrides) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	cfg.applyEnv()
	overrides.apply(&cfg)

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) applyEnv() {
	if value, ok := os.LookupEnv(envSourceDir); ok && strings.TrimSpace(value) != "" {
		c.Paths.SourceDir = value
	}
	if value, ok := os.LookupEnv(envWorkDir); ok && strings.TrimSpace(value) != "" {
		c.Paths.WorkDir = value
	}
}

// EnsureDirectories creates the working directory and the parent of the lock file.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, filepath.Dir(c.Paths.LockPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
