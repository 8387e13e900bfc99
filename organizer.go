package demtile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Defaults for ALOS World 3D 30m (AW3D30) archives.
const (
	DefaultMarkerSuffix = "_DSM.tif"
	DefaultOutputSuffix = "_ALOS3W30.tif"
)

// An OrganizeReport summarizes a single call to [Organizer.Organize].
type OrganizeReport struct {
	Found          int            // Marker files found.
	Organized      int            // Marker files moved into tile directories.
	Kept           int            // Canonical files already in place.
	Unparseable    []string       // Files kept under their staged name.
	Collisions     []string       // Destinations that were overwritten.
	VerifyWarnings []string       // Files whose GeoTIFF header did not match.
	DeletedFiles   int            // Other files deleted.
	RemovedDirs    int            // Empty directories removed.
	TileDirs       map[string]int // Files per tile directory after organizing.
}

// An Organizer moves marker files in a working directory into tile
// directories and removes everything else.
type Organizer struct {
	fsys         billy.Filesystem
	markerSuffix string
	outputSuffix string
	verify       bool
	logger       *slog.Logger
	dirCacheSize int
	dirCache     *lru.Cache[string, struct{}]
}

// An OrganizerOption sets an option on an Organizer.
type OrganizerOption func(*Organizer)

// NewOrganizer returns a new Organizer that operates on the root of fsys.
func NewOrganizer(fsys billy.Filesystem, options ...OrganizerOption) (*Organizer, error) {
	o := &Organizer{
		fsys:         fsys,
		markerSuffix: DefaultMarkerSuffix,
		outputSuffix: DefaultOutputSuffix,
		logger:       slog.New(slog.DiscardHandler),
		dirCacheSize: 64,
	}
	for _, option := range options {
		option(o)
	}

	if o.markerSuffix == "" {
		return nil, errors.New("empty marker suffix")
	}

	var err error
	o.dirCache, err = lru.New[string, struct{}](o.dirCacheSize)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func WithDirCacheSize(dirCacheSize int) OrganizerOption {
	return func(o *Organizer) {
		o.dirCacheSize = dirCacheSize
	}
}

func WithLogger(logger *slog.Logger) OrganizerOption {
	return func(o *Organizer) {
		o.logger = logger
	}
}

// WithMarkerSuffix sets the case-sensitive suffix that identifies files to be
// organized.
func WithMarkerSuffix(markerSuffix string) OrganizerOption {
	return func(o *Organizer) {
		o.markerSuffix = markerSuffix
	}
}

// WithOutputSuffix sets the suffix appended to the coordinate stem of each
// organized file.
func WithOutputSuffix(outputSuffix string) OrganizerOption {
	return func(o *Organizer) {
		o.outputSuffix = outputSuffix
	}
}

// WithVerifyGeoTIFF enables checking each organized file's GeoTIFF header
// against its filename.
func WithVerifyGeoTIFF(verify bool) OrganizerOption {
	return func(o *Organizer) {
		o.verify = verify
	}
}

// A scanResult is the set of paths found by walking the working directory.
type scanResult struct {
	markers   []string
	canonical []string
	files     []string
	dirs      []string
}

// Organize finds every marker file under the root of o's filesystem, moves it
// into its tile directory under its canonical name, deletes all other files,
// and removes empty directories that are not tile directories. If no marker
// files are found then nothing is changed.
func (o *Organizer) Organize(ctx context.Context) (*OrganizeReport, error) {
	o.dirCache.Purge()

	scan, err := o.scan()
	if err != nil {
		return nil, err
	}

	report := &OrganizeReport{
		Found:    len(scan.markers),
		Kept:     len(scan.canonical),
		TileDirs: make(map[string]int),
	}
	if len(scan.markers) == 0 {
		o.logger.Info("no marker files found", "suffix", o.markerSuffix)
		return report, nil
	}

	keep := make(map[string]struct{}, len(scan.markers)+len(scan.canonical))
	for _, path := range scan.canonical {
		keep[path] = struct{}{}
	}

	// Move all marker files to the root first so that files with the same
	// name in different directories are disambiguated before renaming.
	staged := make([]string, 0, len(scan.markers))
	for _, path := range scan.markers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stagedPath, err := o.stage(path)
		if err != nil {
			return nil, err
		}
		staged = append(staged, stagedPath)
	}

	for i, stagedPath := range staged {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path, err := o.place(stagedPath, filepath.Base(scan.markers[i]), report)
		if err != nil {
			return nil, err
		}
		keep[path] = struct{}{}
	}

	if err := o.cleanup(keep, report); err != nil {
		return nil, err
	}

	for path := range keep {
		if dir := filepath.Dir(path); isRootTileDir(dir) {
			report.TileDirs[dir]++
		}
	}

	o.logger.Info("organized marker files",
		"found", report.Found,
		"organized", report.Organized,
		"unparseable", len(report.Unparseable),
		"deleted_files", report.DeletedFiles,
		"removed_dirs", report.RemovedDirs,
	)
	return report, nil
}

// scan walks o's filesystem.
func (o *Organizer) scan() (*scanResult, error) {
	result := &scanResult{}
	if err := util.Walk(o.fsys, ".", func(path string, info os.FileInfo, err error) error {
		switch {
		case err != nil:
			return err
		case path == ".":
			return nil
		case info.IsDir():
			result.dirs = append(result.dirs, path)
		default:
			result.files = append(result.files, path)
			switch {
			case o.isCanonical(path):
				result.canonical = append(result.canonical, path)
			case strings.HasSuffix(info.Name(), o.markerSuffix):
				result.markers = append(result.markers, path)
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	return result, nil
}

// isCanonical returns true if path is already an organized file, i.e. it has
// its canonical name and is in the tile directory matching its coordinate.
func (o *Organizer) isCanonical(path string) bool {
	dir := filepath.Dir(path)
	if !isRootTileDir(dir) {
		return false
	}
	name := filepath.Base(path)
	coord, ok := ParseFilename(name)
	if !ok {
		return false
	}
	return coord.TileDir() == dir && coord.Filename(o.outputSuffix) == name
}

// stage moves the file at path to the root, appending _1, _2, ... to its stem
// if a file with the same name is already there.
func (o *Organizer) stage(path string) (string, error) {
	if filepath.Dir(path) == "." {
		return path, nil
	}
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	stagedPath := name
	for n := 1; ; n++ {
		exists, err := o.exists(stagedPath)
		if err != nil {
			return "", err
		}
		if !exists {
			break
		}
		stagedPath = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
	if err := o.fsys.Rename(path, stagedPath); err != nil {
		return "", fmt.Errorf("stage %s: %w", path, err)
	}
	o.logger.Debug("staged", "from", path, "to", stagedPath)
	return stagedPath, nil
}

// place moves the staged file at stagedPath into its tile directory, using
// the coordinate in name. It returns the file's final path.
func (o *Organizer) place(stagedPath, name string, report *OrganizeReport) (string, error) {
	coord, ok := ParseFilename(name)
	if !ok {
		o.logger.Warn("could not extract coordinate, keeping original name", "file", stagedPath)
		report.Unparseable = append(report.Unparseable, stagedPath)
		filesUnparseable.Inc()
		return stagedPath, nil
	}

	tileDir := coord.TileDir()
	if err := o.ensureTileDir(tileDir); err != nil {
		return "", err
	}

	path := o.fsys.Join(tileDir, coord.Filename(o.outputSuffix))
	switch exists, err := o.exists(path); {
	case err != nil:
		return "", err
	case exists:
		o.logger.Warn("destination already exists, replacing", "file", path, "tile_dir", tileDir)
		report.Collisions = append(report.Collisions, path)
		destinationCollisions.Inc()
		if err := o.fsys.Remove(path); err != nil {
			return "", fmt.Errorf("remove %s: %w", path, err)
		}
	}
	if err := o.fsys.Rename(stagedPath, path); err != nil {
		return "", fmt.Errorf("rename %s: %w", stagedPath, err)
	}
	o.logger.Info("organized", "file", name, "to", path)
	report.Organized++
	filesOrganized.Inc()

	if o.verify {
		if err := o.verifyFile(path, coord, report); err != nil {
			return "", err
		}
	}

	return path, nil
}

// cleanup deletes every file not in keep and removes empty directories,
// deepest first. Tile directories in the root are never removed.
func (o *Organizer) cleanup(keep map[string]struct{}, report *OrganizeReport) error {
	scan, err := o.scan()
	if err != nil {
		return err
	}

	for _, path := range scan.files {
		if _, ok := keep[path]; ok {
			continue
		}
		if err := o.fsys.Remove(path); err != nil {
			return fmt.Errorf("delete %s: %w", path, err)
		}
		o.logger.Debug("deleted", "file", path)
		report.DeletedFiles++
		filesDeleted.Inc()
	}

	dirs := slices.Clone(scan.dirs)
	slices.SortStableFunc(dirs, func(a, b string) int {
		return pathDepth(b) - pathDepth(a)
	})
	for _, dir := range dirs {
		if isRootTileDir(dir) {
			continue
		}
		// Directories that still contain files are left in place.
		if err := o.fsys.Remove(dir); err != nil {
			continue
		}
		o.logger.Debug("removed directory", "dir", dir)
		report.RemovedDirs++
		dirsRemoved.Inc()
	}

	return nil
}

// ensureTileDir creates the tile directory name, using the cache if
// possible.
func (o *Organizer) ensureTileDir(name string) error {
	if _, ok := o.dirCache.Get(name); ok {
		tileDirCacheHits.Inc()
		return nil
	}
	tileDirCacheMisses.Inc()
	if err := o.fsys.MkdirAll(name, 0o755); err != nil {
		return fmt.Errorf("create tile directory %s: %w", name, err)
	}
	o.dirCache.Add(name, struct{}{})
	return nil
}

// verifyFile checks the GeoTIFF header of the file at path against coord.
// Mismatches are recorded in report and are not errors.
func (o *Organizer) verifyFile(path string, coord Coord, report *OrganizeReport) error {
	file, err := o.fsys.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	header, err := ReadGeoTIFFHeader(file)
	if err == nil {
		err = header.Check(coord)
	}
	if err != nil {
		o.logger.Warn("GeoTIFF verification failed", "file", path, "err", err)
		report.VerifyWarnings = append(report.VerifyWarnings, path)
		verifyWarnings.Inc()
	}
	return nil
}

func (o *Organizer) exists(path string) (bool, error) {
	switch _, err := o.fsys.Stat(path); {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	default:
		return true, nil
	}
}

// isRootTileDir returns true if dir is a tile directory directly below the
// root.
func isRootTileDir(dir string) bool {
	return filepath.Dir(dir) == "." && IsTileDir(dir)
}

func pathDepth(path string) int {
	return strings.Count(filepath.ToSlash(path), "/")
}
