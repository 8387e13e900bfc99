package demtile_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-demtile"
)

func TestParseFilename(t *testing.T) {
	for _, tc := range []struct {
		name             string
		expectedCoord    demtile.Coord
		expectedOK       bool
		expectedStem     string
		expectedTileDir  string
		expectedFilename string
	}{
		{
			name:             "ALPSMLC30_N054E026_DSM.tif",
			expectedCoord:    demtile.Coord{LatDeg: 54, LonDeg: 26, NS: demtile.North, EW: demtile.East},
			expectedOK:       true,
			expectedStem:     "N54E026",
			expectedTileDir:  "+50+020",
			expectedFilename: "N54E026_ALOS3W30.tif",
		},
		{
			name:             "ALPSMLC30_N036W121_DSM.tif",
			expectedCoord:    demtile.Coord{LatDeg: 36, LonDeg: 121, NS: demtile.North, EW: demtile.West},
			expectedOK:       true,
			expectedStem:     "N36W121",
			expectedTileDir:  "+30-130",
			expectedFilename: "N36W121_ALOS3W30.tif",
		},
		{
			name:             "S05E015.tif",
			expectedCoord:    demtile.Coord{LatDeg: 5, LonDeg: 15, NS: demtile.South, EW: demtile.East},
			expectedOK:       true,
			expectedStem:     "S05E015",
			expectedTileDir:  "-10+010",
			expectedFilename: "S05E015_ALOS3W30.tif",
		},
		{
			name:             "N200E999_DSM.tif",
			expectedCoord:    demtile.Coord{LatDeg: 200, LonDeg: 999, NS: demtile.North, EW: demtile.East},
			expectedOK:       true,
			expectedStem:     "N200E999",
			expectedTileDir:  "+200+990",
			expectedFilename: "N200E999_ALOS3W30.tif",
		},
		{
			name:             "S025W115_MSK.tif",
			expectedCoord:    demtile.Coord{LatDeg: 25, LonDeg: 115, NS: demtile.South, EW: demtile.West},
			expectedOK:       true,
			expectedStem:     "S25W115",
			expectedTileDir:  "-30-120",
			expectedFilename: "S25W115_ALOS3W30.tif",
		},
		{
			name: "README.txt",
		},
		{
			name: "ALPSMLC30_DSM.tif",
		},
		{
			name: "n054e026_DSM.tif",
		},
		{
			name: "N054_E026_DSM.tif",
		},
		{
			name: "N99999999999999999999E026_DSM.tif",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, ok := demtile.ParseFilename(tc.name)
			assert.Equal(t, tc.expectedOK, ok)
			assert.Equal(t, tc.expectedCoord, actual)
			if !ok {
				return
			}
			assert.Equal(t, tc.expectedStem, actual.FileStem())
			assert.Equal(t, tc.expectedTileDir, actual.TileDir())
			assert.Equal(t, tc.expectedFilename, actual.Filename(demtile.DefaultOutputSuffix))
		})
	}
}

func TestCoordSigned(t *testing.T) {
	coord := demtile.Coord{LatDeg: 25, LonDeg: 115, NS: demtile.South, EW: demtile.West}
	assert.Equal(t, -25, coord.Lat())
	assert.Equal(t, -115, coord.Lon())

	coord = demtile.Coord{LatDeg: 54, LonDeg: 26, NS: demtile.North, EW: demtile.East}
	assert.Equal(t, 54, coord.Lat())
	assert.Equal(t, 26, coord.Lon())
}
