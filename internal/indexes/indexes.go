package indexes

import (
	"math"
	"time"

	"github.com/forest-guardian/landcover-change/internal/raster"
)

type Band string

const (
	Blue  Band = "blue"
	Green Band = "green"
	Red   Band = "red"
	NIR   Band = "nir"
	SWIR1 Band = "swir1"
)

// DefaultBandOrder is the band layout of a scene when the file carries no band descriptions.
var DefaultBandOrder = []Band{Blue, Green, Red, NIR, SWIR1}

type Name string

const (
	NDVI Name = "NDVI"
	NDBI Name = "NDBI"
	NDWI Name = "NDWI"
	BSI  Name = "BSI"
)

var AllIndexes = []Name{NDVI, NDBI, NDWI, BSI}

// NoData marks undecidable index pixels; it lies outside the [-1, 1] value range.
const NoData = -9999.0

// BandSet holds the co-registered bands of one acquisition date.
type BandSet struct {
	Date  time.Time
	Bands map[Band]*raster.Raster
}

// IndexSet holds the indexes derived from one BandSet.
type IndexSet struct {
	Date   time.Time
	Grid   raster.Grid
	Layers map[Name]*raster.Raster
}

func (s IndexSet) Get(name Name) (*raster.Raster, bool) {
	r, ok := s.Layers[name]
	return r, ok
}

// formula is a normalized difference: (sum(plus) - sum(minus)) / (sum(plus) + sum(minus)).
type formula struct {
	plus  []Band
	minus []Band
}

var formulas = map[Name]formula{
	NDVI: {plus: []Band{NIR}, minus: []Band{Red}},
	NDBI: {plus: []Band{SWIR1}, minus: []Band{NIR}},
	NDWI: {plus: []Band{Green}, minus: []Band{NIR}},
	BSI:  {plus: []Band{SWIR1, Red}, minus: []Band{NIR, Blue}},
}

// RequiredBands lists the bands an index is computed from.
func RequiredBands(name Name) []Band {
	f, ok := formulas[name]
	if !ok {
		return nil
	}
	return append(append([]Band{}, f.plus...), f.minus...)
}

// ComputeIndices derives the requested indexes from a BandSet. An empty request computes all of them.
// Bands must already share one grid; resampling is the caller's job.
func ComputeIndices(bands BandSet, requested []Name) (IndexSet, error) {
	names, err := normalizeRequest(requested)
	if err != nil {
		return IndexSet{}, err
	}

	var grid *raster.Grid
	for _, name := range names {
		for _, band := range RequiredBands(name) {
			r, ok := bands.Bands[band]
			if !ok || r == nil {
				return IndexSet{}, &raster.MissingBandError{Band: string(band), Index: string(name)}
			}
			if grid == nil {
				g := r.Grid
				grid = &g
				continue
			}
			if err := raster.CheckCoRegistered("band "+string(band), *grid, r.Grid); err != nil {
				return IndexSet{}, err
			}
		}
	}

	set := IndexSet{
		Date:   bands.Date,
		Grid:   *grid,
		Layers: make(map[Name]*raster.Raster, len(names)),
	}
	for _, name := range names {
		f := formulas[name]
		set.Layers[name] = calculateIndex(*grid, pick(bands, f.plus), pick(bands, f.minus))
	}
	return set, nil
}

func normalizeRequest(requested []Name) ([]Name, error) {
	if len(requested) == 0 {
		return AllIndexes, nil
	}
	seen := make(map[Name]bool, len(requested))
	names := make([]Name, 0, len(requested))
	for _, name := range requested {
		if _, ok := formulas[name]; !ok {
			return nil, &raster.InvalidConfigError{Field: "index name", Value: name, Reason: "unknown index"}
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

func pick(bands BandSet, names []Band) []*raster.Raster {
	out := make([]*raster.Raster, len(names))
	for i, b := range names {
		out[i] = bands.Bands[b]
	}
	return out
}

func calculateIndex(grid raster.Grid, plus, minus []*raster.Raster) *raster.Raster {
	result := raster.New(grid, NoData)
	n := grid.Size()

	valid := make([]bool, n)
	for i := range valid {
		valid[i] = true
	}
	for _, r := range append(append([]*raster.Raster{}, plus...), minus...) {
		for i := range valid {
			if valid[i] && !r.Valid(i) {
				valid[i] = false
			}
		}
	}

	p := sumBands(n, plus)
	m := sumBands(n, minus)
	for i := range result.Data {
		if !valid[i] {
			continue
		}
		denominator := p[i] + m[i]
		if denominator == 0 {
			continue
		}
		value := (p[i] - m[i]) / denominator
		if math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		result.Data[i] = clamp(value)
	}
	return result
}

func sumBands(n int, bands []*raster.Raster) []float64 {
	sum := make([]float64, n)
	for _, b := range bands {
		for i, v := range b.Data {
			sum[i] += v
		}
	}
	return sum
}

func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// ScaleReflectance divides every band by scale (10000 for Sentinel-2 L2A digital numbers).
// Nodata samples keep the band's nodata value.
func ScaleReflectance(bands BandSet, scale float64) (BandSet, error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return BandSet{}, &raster.InvalidConfigError{Field: "reflectance scale", Value: scale, Reason: "must be a positive finite number"}
	}
	scaled := BandSet{Date: bands.Date, Bands: make(map[Band]*raster.Raster, len(bands.Bands))}
	for name, r := range bands.Bands {
		out := &raster.Raster{Grid: r.Grid, NoData: r.NoData, Data: make([]float64, len(r.Data))}
		for i, v := range r.Data {
			if r.Valid(i) {
				out.Data[i] = v / scale
			} else {
				out.Data[i] = r.NoData
			}
		}
		scaled.Bands[name] = out
	}
	return scaled, nil
}
