package demtile

import (
	"fmt"
	"regexp"
)

// TileSize is the size of a tile in degrees.
const TileSize = 10

var tileDirRx = regexp.MustCompile(`^[+-]\d{2}[+-]\d{3}$`)

// A TileCoord is the south-west corner of a tile, in signed degrees. Both
// fields are multiples of TileSize.
type TileCoord struct {
	Lat int
	Lon int
}

// TileDir returns the name of the tile directory that contains the coordinate
// with the given magnitudes and hemispheres, e.g. TileDir(36, 121, North, West)
// is "+30-130".
func TileDir(latDeg, lonDeg int, ns, ew Hemisphere) string {
	return Coord{LatDeg: latDeg, LonDeg: lonDeg, NS: ns, EW: ew}.TileDir()
}

// DirName returns t formatted as a sign and two latitude digits followed by a
// sign and three longitude digits. Zero is formatted with a plus sign.
func (t TileCoord) DirName() string {
	latSign, lat := signAbs(t.Lat)
	lonSign, lon := signAbs(t.Lon)
	return fmt.Sprintf("%c%02d%c%03d", latSign, lat, lonSign, lon)
}

// IsTileDir returns true if name is a tile directory name.
func IsTileDir(name string) bool {
	return tileDirRx.MatchString(name)
}

// floorAnchor returns the largest multiple of TileSize less than or equal to
// value. Go's integer division truncates towards zero, so negative values that
// are not exact multiples are adjusted downwards.
func floorAnchor(value int) int {
	q := value / TileSize
	if value%TileSize != 0 && value < 0 {
		q--
	}
	return q * TileSize
}

func signAbs(value int) (byte, int) {
	if value < 0 {
		return '-', -value
	}
	return '+', value
}
