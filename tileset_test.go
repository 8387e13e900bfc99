package demtile

import (
	"io/fs"
	"math"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

func TestTileSet(t *testing.T) {
	fsys := memfs.New()
	for path, data := range map[string][]byte{
		"+50+020/N54E026_ALOS3W30.tif": newTestGeoTIFF(3600, 3600, 0, 0, 26, 55, 2),
		"+50+020/N54E026_DSM.tif":      []byte("not canonical"),
		"+50+020/N44E026_ALOS3W30.tif": []byte("wrong tile directory"),
		"-10-010/S01W001_ALOS3W30.tif": newTestGeoTIFF(3600, 3600, 0, 0, -1, 0, 2),
		"-10-010/S02W001_ALOS3W30.tif": newTestGeoTIFF(3600, 3600, 0, 0, -1, 0, 2),
		"+30-130/N36W121_ALOS3W30.tif": []byte("not a tiff"),
		"other/N10E010_ALOS3W30.tif":   []byte("outside tile directory"),
		"N20E020_ALOS3W30.tif":         []byte("at root"),
	} {
		assert.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
		assert.NoError(t, util.WriteFile(fsys, path, data, 0o644))
	}

	tileSet, err := NewTileSet(fsys)
	assert.NoError(t, err)
	assert.Equal(t, 4, tileSet.Len())
	assert.Equal(t, []Coord{
		{LatDeg: 2, LonDeg: 1, NS: South, EW: West},
		{LatDeg: 1, LonDeg: 1, NS: South, EW: West},
		{LatDeg: 36, LonDeg: 121, NS: North, EW: West},
		{LatDeg: 54, LonDeg: 26, NS: North, EW: East},
	}, tileSet.Coords())

	for _, tc := range []struct {
		name          string
		lat           float64
		lon           float64
		expectedPath  string
		expectedFound bool
	}{
		{name: "north_east", lat: 54.5, lon: 26.25, expectedPath: "+50+020/N54E026_ALOS3W30.tif", expectedFound: true},
		{name: "south_west", lat: -0.5, lon: -0.25, expectedPath: "-10-010/S01W001_ALOS3W30.tif", expectedFound: true},
		{name: "corner", lat: 54, lon: 26, expectedPath: "+50+020/N54E026_ALOS3W30.tif", expectedFound: true},
		{name: "missing", lat: 10.5, lon: 10.5},
		{name: "out_of_range", lat: 90, lon: 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, path, found := tileSet.Lookup(tc.lat, tc.lon)
			assert.Equal(t, tc.expectedFound, found)
			assert.Equal(t, tc.expectedPath, path)
		})
	}

	header, err := tileSet.Header(Coord{LatDeg: 54, LonDeg: 26, NS: North, EW: East})
	assert.NoError(t, err)
	assert.Equal(t, 3600, header.ImageLength)
	cachedHeader, err := tileSet.Header(Coord{LatDeg: 54, LonDeg: 26, NS: North, EW: East})
	assert.NoError(t, err)
	assert.True(t, header == cachedHeader)

	_, err = tileSet.Header(Coord{LatDeg: 10, LonDeg: 10, NS: North, EW: East})
	assert.IsError(t, err, fs.ErrNotExist)

	failed, err := tileSet.Verify(t.Context())
	assert.NoError(t, err)
	paths := make([]string, 0, len(failed))
	for _, check := range failed {
		paths = append(paths, check.Path)
		assert.Error(t, check.Err)
	}
	assert.Equal(t, []string{
		"-10-010/S02W001_ALOS3W30.tif",
		"+30-130/N36W121_ALOS3W30.tif",
	}, paths)
}

func TestTileSetEmpty(t *testing.T) {
	tileSet, err := NewTileSet(memfs.New())
	assert.NoError(t, err)
	assert.Equal(t, 0, tileSet.Len())
	failed, err := tileSet.Verify(t.Context())
	assert.NoError(t, err)
	assert.Equal(t, 0, len(failed))
}

func TestNewTileSetErrors(t *testing.T) {
	_, err := NewTileSet(memfs.New(), WithTileSetOutputSuffix(""))
	assert.Error(t, err)
	_, err = NewTileSet(memfs.New(), WithHeaderCacheSize(0))
	assert.Error(t, err)
}

func TestCoordAt(t *testing.T) {
	for _, tc := range []struct {
		lat           float64
		lon           float64
		expected      string
		expectedFound bool
	}{
		{lat: 54.9, lon: 26.1, expected: "N54E026", expectedFound: true},
		{lat: 0, lon: 0, expected: "N00E000", expectedFound: true},
		{lat: -0.1, lon: -0.1, expected: "S01W001", expectedFound: true},
		{lat: -90, lon: -180, expected: "S90W180", expectedFound: true},
		{lat: 89.99, lon: 179.99, expected: "N89E179", expectedFound: true},
		{lat: 90, lon: 0},
		{lat: 0, lon: 180},
		{lat: math.NaN(), lon: 0},
	} {
		coord, found := CoordAt(tc.lat, tc.lon)
		assert.Equal(t, tc.expectedFound, found)
		if found {
			assert.Equal(t, tc.expected, coord.String())
		}
	}
}
