package demtile

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"sync"

	"github.com/go-git/go-billy/v5"
	lru "github.com/hashicorp/golang-lru/v2"
)

// A TileSet is an index of the canonical files in an organized working
// directory.
type TileSet struct {
	mutex        sync.Mutex
	fsys         billy.Filesystem
	outputSuffix string
	cacheSize    int
	paths        map[Coord]string
	headerCache  *lru.Cache[Coord, *GeoTIFFHeader]
}

// A TileSetOption sets an option on a TileSet.
type TileSetOption func(*TileSet)

// A TileCheck is a file in a TileSet whose GeoTIFF header could not be read
// or did not match its coordinate.
type TileCheck struct {
	Coord Coord
	Path  string
	Err   error
}

// NewTileSet returns a new TileSet indexing the canonical files in the tile
// directories at the root of fsys. A missing root is an empty TileSet.
func NewTileSet(fsys billy.Filesystem, options ...TileSetOption) (*TileSet, error) {
	s := &TileSet{
		fsys:         fsys,
		outputSuffix: DefaultOutputSuffix,
		cacheSize:    32,
		paths:        make(map[Coord]string),
	}
	for _, option := range options {
		option(s)
	}
	if s.outputSuffix == "" {
		return nil, errors.New("empty output suffix")
	}

	var err error
	s.headerCache, err = lru.NewWithEvict(s.cacheSize, func(Coord, *GeoTIFFHeader) {
		headerCacheEvictions.Inc()
	})
	if err != nil {
		return nil, err
	}

	if err := s.scan(); err != nil {
		return nil, err
	}
	return s, nil
}

// WithHeaderCacheSize sets the number of GeoTIFF headers to cache.
func WithHeaderCacheSize(cacheSize int) TileSetOption {
	return func(s *TileSet) {
		s.cacheSize = cacheSize
	}
}

// WithTileSetOutputSuffix sets the suffix of canonical filenames.
func WithTileSetOutputSuffix(outputSuffix string) TileSetOption {
	return func(s *TileSet) {
		s.outputSuffix = outputSuffix
	}
}

func (s *TileSet) scan() error {
	dirInfos, err := s.fsys.ReadDir(".")
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return err
	}
	for _, dirInfo := range dirInfos {
		if !dirInfo.IsDir() || !IsTileDir(dirInfo.Name()) {
			continue
		}
		fileInfos, err := s.fsys.ReadDir(dirInfo.Name())
		if err != nil {
			return err
		}
		for _, fileInfo := range fileInfos {
			if fileInfo.IsDir() {
				continue
			}
			coord, ok := ParseFilename(fileInfo.Name())
			if !ok || fileInfo.Name() != coord.Filename(s.outputSuffix) || coord.TileDir() != dirInfo.Name() {
				continue
			}
			s.paths[coord] = filepath.Join(dirInfo.Name(), fileInfo.Name())
		}
	}
	return nil
}

// Len returns the number of files in s.
func (s *TileSet) Len() int {
	return len(s.paths)
}

// Coords returns the coordinates of the files in s, south to north and then
// west to east.
func (s *TileSet) Coords() []Coord {
	coords := make([]Coord, 0, len(s.paths))
	for coord := range s.paths {
		coords = append(coords, coord)
	}
	slices.SortFunc(coords, func(a, b Coord) int {
		return cmp.Or(cmp.Compare(a.Lat(), b.Lat()), cmp.Compare(a.Lon(), b.Lon()))
	})
	return coords
}

// Path returns the path of the file at coord.
func (s *TileSet) Path(coord Coord) (string, bool) {
	path, ok := s.paths[coord]
	return path, ok
}

// Lookup returns the coordinate and path of the file containing lat, lon.
// The returned bool is false if lat, lon is out of range or no file covers it.
func (s *TileSet) Lookup(lat, lon float64) (Coord, string, bool) {
	coord, ok := CoordAt(lat, lon)
	if !ok {
		return Coord{}, "", false
	}
	path, ok := s.paths[coord]
	return coord, path, ok
}

// Header returns the GeoTIFF header of the file at coord, using the cache if
// possible.
func (s *TileSet) Header(coord Coord) (*GeoTIFFHeader, error) {
	if header, ok := s.headerCache.Get(coord); ok {
		headerCacheHits.Inc()
		return header, nil
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if header, ok := s.headerCache.Get(coord); ok {
		headerCacheHits.Inc()
		return header, nil
	}

	headerCacheMisses.Inc()

	path, ok := s.paths[coord]
	if !ok {
		return nil, fmt.Errorf("%s: %w", coord, fs.ErrNotExist)
	}
	file, err := s.fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	header, err := ReadGeoTIFFHeader(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.headerCache.Add(coord, header)
	return header, nil
}

// Verify checks the GeoTIFF header of every file in s against its coordinate
// and returns the files that failed, in the order of [TileSet.Coords].
func (s *TileSet) Verify(ctx context.Context) ([]TileCheck, error) {
	var failed []TileCheck
	for _, coord := range s.Coords() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		header, err := s.Header(coord)
		if err == nil {
			err = header.Check(coord)
		}
		if err != nil {
			failed = append(failed, TileCheck{
				Coord: coord,
				Path:  s.paths[coord],
				Err:   err,
			})
			verifyWarnings.Inc()
		}
	}
	return failed, nil
}
