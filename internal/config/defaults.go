package config

const (
	defaultSourceDir    = "~/Downloads/alosw30"
	defaultWorkDir      = "~/Downloads/_unpack"
	defaultArchiveExt   = ".zip"
	defaultMarkerSuffix = "_DSM.tif"
	defaultOutputSuffix = "_ALOS3W30.tif"
	defaultDirCacheSize = 64
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultConfigPath   = "~/.config/demtile/config.toml"
	projectConfigName   = "demtile.toml"
	lockSuffix          = ".lock"
	envSourceDir        = "DEMTILE_SOURCE_DIR"
	envWorkDir          = "DEMTILE_WORK_DIR"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir: defaultSourceDir,
			WorkDir:   defaultWorkDir,
		},
		Organize: Organize{
			ArchiveExt:   defaultArchiveExt,
			MarkerSuffix: defaultMarkerSuffix,
			OutputSuffix: defaultOutputSuffix,
			DirCacheSize: defaultDirCacheSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
