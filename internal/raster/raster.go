package raster

import (
	"fmt"
	"math"
	"strings"
)

// GeoTransform holds the six affine coefficients in GDAL order:
// originX, pixelWidth, rowRotation, originY, columnRotation, pixelHeight.
type GeoTransform [6]float64

// Grid is the pixel grid shared by co-registered rasters.
type Grid struct {
	Rows      int
	Cols      int
	Transform GeoTransform
	CRS       string
	// Geographic is set by readers that can tell from the spatial reference that
	// the CRS is in angular units.
	Geographic bool `json:",omitempty"`
}

func (g Grid) Size() int {
	return g.Rows * g.Cols
}

// PixelCenter maps grid indices to the geographic coordinates of the cell center.
func (g Grid) PixelCenter(x, y int) (float64, float64) {
	gt := g.Transform
	xCoord := gt[0] + gt[1]*(float64(x)+0.5) + gt[2]*(float64(y)+0.5)
	yCoord := gt[3] + gt[4]*(float64(x)+0.5) + gt[5]*(float64(y)+0.5)
	return xCoord, yCoord
}

// Corner maps the top-left corner of cell (x, y); x == Cols or y == Rows give the far edges.
func (g Grid) Corner(x, y int) (float64, float64) {
	gt := g.Transform
	return gt[0] + gt[1]*float64(x) + gt[2]*float64(y), gt[3] + gt[4]*float64(x) + gt[5]*float64(y)
}

// PixelAreaHa is the cell area in hectares for a projected CRS in metres.
// Geographic grids have no fixed cell area and are rejected.
func (g Grid) PixelAreaHa() (float64, error) {
	if g.IsGeographic() {
		return 0, &InvalidConfigError{
			Field:  "pixel area (ha)",
			Value:  g.CRS,
			Reason: "cannot be derived from a geographic CRS, set PIXEL_AREA_HA",
		}
	}
	gt := g.Transform
	return math.Abs(gt[1]*gt[5]-gt[2]*gt[4]) / 10_000, nil
}

func (g Grid) IsGeographic() bool {
	return g.Geographic || IsGeographicCRS(g.CRS)
}

// geographicCodes are the common geographic (lat/lon) EPSG codes.
var geographicCodes = map[string]bool{
	"EPSG:4326": true, // WGS 84
	"EPSG:4258": true, // ETRS89
	"EPSG:4269": true, // NAD83
	"EPSG:4267": true, // NAD27
	"EPSG:4674": true, // SIRGAS 2000
	"EPSG:4283": true, // GDA94
	"EPSG:7844": true, // GDA2020
	"EPSG:4490": true, // CGCS2000
	"EPSG:4612": true, // JGD2000
	"EPSG:6668": true, // JGD2011
	"EPSG:4167": true, // NZGD2000
	"EPSG:4230": true, // ED50
}

// IsGeographicCRS recognizes geographic CRS identifiers and WKT definitions.
func IsGeographicCRS(crs string) bool {
	c := NormalizeCRS(crs)
	if geographicCodes[c] {
		return true
	}
	return strings.HasPrefix(c, "GEOGCS[") || strings.HasPrefix(c, "GEOGCRS[") || strings.HasPrefix(c, "GEODCRS[")
}

// Raster is a row-major grid of samples with an explicit nodata sentinel.
type Raster struct {
	Grid
	NoData float64
	Data   []float64
}

// New returns a raster filled with nodata.
func New(grid Grid, noData float64) *Raster {
	data := make([]float64, grid.Size())
	for i := range data {
		data[i] = noData
	}
	return &Raster{Grid: grid, NoData: noData, Data: data}
}

// FromValues wraps data without copying it.
func FromValues(grid Grid, noData float64, data []float64) (*Raster, error) {
	if grid.Rows <= 0 || grid.Cols <= 0 {
		return nil, &GridMismatchError{What: "shape", Left: fmt.Sprintf("%dx%d", grid.Rows, grid.Cols), Right: "positive rows and cols"}
	}
	if len(data) != grid.Size() {
		return nil, &GridMismatchError{What: "sample count", Left: fmt.Sprint(len(data)), Right: fmt.Sprint(grid.Size())}
	}
	return &Raster{Grid: grid, NoData: noData, Data: data}, nil
}

func (r *Raster) Index(x, y int) int {
	return y*r.Cols + x
}

func (r *Raster) At(x, y int) float64 {
	return r.Data[r.Index(x, y)]
}

// Valid reports whether sample i holds data. NaN is treated as nodata.
func (r *Raster) Valid(i int) bool {
	v := r.Data[i]
	return v != r.NoData && !math.IsNaN(v)
}

func (r *Raster) ValidCount() int {
	count := 0
	for i := range r.Data {
		if r.Valid(i) {
			count++
		}
	}
	return count
}

// CheckCoRegistered fails with a GridMismatchError when the two grids differ in shape, transform or CRS.
func CheckCoRegistered(what string, a, b Grid) error {
	if a.Rows != b.Rows || a.Cols != b.Cols {
		return &GridMismatchError{
			What:  what + " shape",
			Left:  fmt.Sprintf("%dx%d", a.Rows, a.Cols),
			Right: fmt.Sprintf("%dx%d", b.Rows, b.Cols),
		}
	}
	for i := range a.Transform {
		if !closeTo(a.Transform[i], b.Transform[i]) {
			return &GridMismatchError{
				What:  what + " transform",
				Left:  fmt.Sprint(a.Transform),
				Right: fmt.Sprint(b.Transform),
			}
		}
	}
	if !SameCRS(a.CRS, b.CRS) {
		return &GridMismatchError{What: what + " CRS", Left: a.CRS, Right: b.CRS}
	}
	return nil
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// SameCRS compares two CRS identifiers after normalizing common EPSG spellings
// ("EPSG:32718", "epsg:32718", "urn:ogc:def:crs:EPSG::32718", "OGC:CRS84" as EPSG:4326).
func SameCRS(a, b string) bool {
	return NormalizeCRS(a) == NormalizeCRS(b)
}

func NormalizeCRS(crs string) string {
	c := strings.ToUpper(strings.TrimSpace(crs))
	switch c {
	case "OGC:CRS84", "URN:OGC:DEF:CRS:OGC:1.3:CRS84", "CRS84", "WGS84":
		return "EPSG:4326"
	}
	if rest, ok := strings.CutPrefix(c, "URN:OGC:DEF:CRS:EPSG:"); ok {
		rest = strings.TrimLeft(rest, ":")
		if i := strings.LastIndex(rest, ":"); i >= 0 {
			rest = rest[i+1:]
		}
		return "EPSG:" + rest
	}
	return c
}
