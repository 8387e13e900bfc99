package demtile

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/tiff"
	_ "github.com/google/tiff/bigtiff"
	_ "github.com/google/tiff/geotiff"
)

// modelTypeGeographic is the GTModelTypeGeoKey value for a geographic
// (latitude/longitude) raster.
const modelTypeGeographic = 2

var (
	errCoordMismatch = errors.New("coordinate mismatch")
	errNotGeographic = errors.New("not a geographic model")
)

// A GeoTIFFHeader is the georeferencing information of a GeoTIFF file.
type GeoTIFFHeader struct {
	ImageWidth  int
	ImageLength int
	ScaleX      float64
	ScaleY      float64
	OriginX     float64 // Longitude of the upper-left corner.
	OriginY     float64 // Latitude of the upper-left corner.
	GeoKeys     *ParsedGeoKeys
}

// A geoTIFFIFD is a struct into which github.com/google/tiff can unmarshal an
// IFD.
type geoTIFFIFD struct {
	ImageWidth         uint16    `tiff:"field,tag=256"`
	ImageLength        uint16    `tiff:"field,tag=257"`
	ModelPixelScaleTag []float64 `tiff:"field,tag=33550"`
	ModelTiepointTag   []float64 `tiff:"field,tag=33922"`
	GeoKeyDirectoryTag []uint16  `tiff:"field,tag=34735"`
	GeoDoubleParamsTag []float64 `tiff:"field,tag=34736"`
	GeoASCIIParamsTag  string    `tiff:"field,tag=34737"`
}

type readAtReadSeeker interface {
	io.ReadSeeker
	io.ReaderAt
}

// ReadGeoTIFFHeader reads the georeferencing information from r.
func ReadGeoTIFFHeader(r readAtReadSeeker) (*GeoTIFFHeader, error) {
	tiffTIFF, err := tiff.Parse(r, tiff.GetTagSpace("GeoTIFF"), nil)
	if err != nil {
		return nil, err
	}

	if len(tiffTIFF.IFDs()) == 0 {
		return nil, errors.New("found no IFDs")
	}

	var ifd geoTIFFIFD
	if err := tiff.UnmarshalIFD(tiffTIFF.IFDs()[0], &ifd); err != nil {
		return nil, err
	}

	if len(ifd.ModelPixelScaleTag) != 3 || len(ifd.ModelTiepointTag) != 6 {
		return nil, errors.ErrUnsupported
	}
	if ifd.ImageWidth == 0 || ifd.ImageLength == 0 {
		return nil, errors.New("empty image")
	}

	h := &GeoTIFFHeader{
		ImageWidth:  int(ifd.ImageWidth),
		ImageLength: int(ifd.ImageLength),
		ScaleX:      ifd.ModelPixelScaleTag[0],
		ScaleY:      ifd.ModelPixelScaleTag[1],
	}

	// Translate the tie point to the raster origin.
	i, j := ifd.ModelTiepointTag[0], ifd.ModelTiepointTag[1]
	x, y := ifd.ModelTiepointTag[3], ifd.ModelTiepointTag[4]
	h.OriginX = x - i*h.ScaleX
	h.OriginY = y + j*h.ScaleY

	if len(ifd.GeoKeyDirectoryTag) != 0 {
		h.GeoKeys, err = ParseGeoKeys(ifd.GeoKeyDirectoryTag, ifd.GeoDoubleParamsTag, []byte(ifd.GeoASCIIParamsTag))
		if err != nil {
			return nil, fmt.Errorf("geo keys: %w", err)
		}
	}

	return h, nil
}

// SouthWest returns the signed latitude and longitude of h's south-west
// corner, rounded to whole degrees.
func (h *GeoTIFFHeader) SouthWest() (int, int) {
	lat := int(math.Round(h.OriginY - h.ScaleY*float64(h.ImageLength)))
	lon := int(math.Round(h.OriginX))
	return lat, lon
}

// Check returns an error if h does not describe the one degree cell at coord.
func (h *GeoTIFFHeader) Check(coord Coord) error {
	if h.GeoKeys != nil {
		if modelType, ok := h.GeoKeys.Params[GeoKeyGTModelType]; ok && modelType != modelTypeGeographic {
			return fmt.Errorf("%w: model type %d", errNotGeographic, modelType)
		}
	}
	lat, lon := h.SouthWest()
	if lat != coord.Lat() || lon != coord.Lon() {
		return fmt.Errorf("%w: header has %d,%d, filename has %d,%d", errCoordMismatch, lat, lon, coord.Lat(), coord.Lon())
	}
	return nil
}
