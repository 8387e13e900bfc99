package demtile

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// A Hemisphere is one of N, S, E, or W.
type Hemisphere byte

const (
	North Hemisphere = 'N'
	South Hemisphere = 'S'
	East  Hemisphere = 'E'
	West  Hemisphere = 'W'
)

var coordRx = regexp.MustCompile(`([NS])(\d+)([EW])(\d+)`)

// A Coord is a coordinate parsed from a filename. LatDeg and LonDeg are
// magnitudes; NS and EW carry the sign.
type Coord struct {
	LatDeg int
	LonDeg int
	NS     Hemisphere
	EW     Hemisphere
}

// ParseFilename returns the first coordinate token in name, for example
// N054E026 in ALPSMLC30_N054E026_DSM.tif. It returns false if name contains no
// coordinate token. Magnitudes are not range checked.
func ParseFilename(name string) (Coord, bool) {
	m := coordRx.FindStringSubmatch(name)
	if m == nil {
		return Coord{}, false
	}
	latDeg, err := strconv.Atoi(m[2])
	if err != nil {
		return Coord{}, false
	}
	lonDeg, err := strconv.Atoi(m[4])
	if err != nil {
		return Coord{}, false
	}
	return Coord{
		LatDeg: latDeg,
		LonDeg: lonDeg,
		NS:     Hemisphere(m[1][0]),
		EW:     Hemisphere(m[3][0]),
	}, true
}

// Lat returns c's signed latitude.
func (c Coord) Lat() int {
	if c.NS == South {
		return -c.LatDeg
	}
	return c.LatDeg
}

// Lon returns c's signed longitude.
func (c Coord) Lon() int {
	if c.EW == West {
		return -c.LonDeg
	}
	return c.LonDeg
}

// CoordAt returns the coordinate of the one degree cell whose south-west
// corner is the floor of lat, lon. It returns false if lat is outside
// [-90, 90) or lon is outside [-180, 180).
func CoordAt(lat, lon float64) (Coord, bool) {
	if !(-90 <= lat && lat < 90 && -180 <= lon && lon < 180) {
		return Coord{}, false
	}
	c := Coord{
		LatDeg: int(math.Floor(lat)),
		LonDeg: int(math.Floor(lon)),
		NS:     North,
		EW:     East,
	}
	if c.LatDeg < 0 {
		c.LatDeg, c.NS = -c.LatDeg, South
	}
	if c.LonDeg < 0 {
		c.LonDeg, c.EW = -c.LonDeg, West
	}
	return c, true
}

// FileStem returns c as N/S plus two latitude digits and E/W plus three
// longitude digits, e.g. N54E026.
func (c Coord) FileStem() string {
	return fmt.Sprintf("%c%02d%c%03d", c.NS, c.LatDeg, c.EW, c.LonDeg)
}

// Filename returns the canonical filename for c with suffix appended.
func (c Coord) Filename(suffix string) string {
	return c.FileStem() + suffix
}

// TileCoord returns the tile containing c.
func (c Coord) TileCoord() TileCoord {
	return TileCoord{
		Lat: floorAnchor(c.Lat()),
		Lon: floorAnchor(c.Lon()),
	}
}

// TileDir returns the name of the tile directory containing c.
func (c Coord) TileDir() string {
	return c.TileCoord().DirName()
}

func (c Coord) String() string {
	return c.FileStem()
}
