package zonal

import (
	"math"
	"runtime"
	"slices"

	"github.com/forest-guardian/landcover-change/internal/change"
	"github.com/forest-guardian/landcover-change/internal/raster"
	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"
)

// ZonalStat is one (zone, category) row of a label raster.
type ZonalStat struct {
	ZoneID     string  `csv:"zone_id"`
	Category   string  `csv:"category"`
	Code       int     `csv:"code"`
	PixelCount int     `csv:"pixel_count"`
	AreaHa     float64 `csv:"area_ha"`
	Percentage float64 `csv:"percentage"`
}

// IndexZonalStat is one zone row of a continuous index.
type IndexZonalStat struct {
	ZoneID     string  `csv:"zone_id"`
	Index      string  `csv:"index"`
	PixelCount int     `csv:"pixel_count"`
	AreaHa     float64 `csv:"area_ha"`
	Percentage float64 `csv:"percentage"`
	Mean       float64 `csv:"mean"`
	StdDev     float64 `csv:"std"`
}

// members returns, per zone, the indices of pixels whose center falls inside the zone.
// Zones are validated up front so that a bad geometry fails the whole call.
func members(grid raster.Grid, layer ZoneLayer) ([][]int, error) {
	if !raster.SameCRS(grid.CRS, layer.CRS) {
		return nil, &raster.GridMismatchError{What: "zone layer CRS", Left: grid.CRS, Right: layer.CRS}
	}
	prepared := make([]preparedZone, len(layer.Zones))
	for i, z := range layer.Zones {
		p, err := prepareZone(z)
		if err != nil {
			return nil, err
		}
		prepared[i] = p
	}

	centers := make([]orb.Point, grid.Size())
	for y := range grid.Rows {
		for x := range grid.Cols {
			cx, cy := grid.PixelCenter(x, y)
			centers[y*grid.Cols+x] = orb.Point{cx, cy}
		}
	}

	result := make([][]int, len(prepared))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, z := range prepared {
		g.Go(func() error {
			var inside []int
			for idx, c := range centers {
				if z.bound.Contains(c) && z.contains(c) {
					inside = append(inside, idx)
				}
			}
			result[i] = inside
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func validatePixelArea(pixelAreaHa float64) error {
	if pixelAreaHa <= 0 || math.IsNaN(pixelAreaHa) || math.IsInf(pixelAreaHa, 0) {
		return &raster.InvalidConfigError{Field: "pixel area (ha)", Value: pixelAreaHa, Reason: "must be a positive finite number"}
	}
	return nil
}

// AggregateByZone counts label pixels per zone and category. Percentages are relative
// to the zone's valid pixels; rows follow zone input order, then ascending label code.
func AggregateByZone(labels *change.LabelRaster, layer ZoneLayer, pixelAreaHa float64) ([]ZonalStat, error) {
	if err := validatePixelArea(pixelAreaHa); err != nil {
		return nil, err
	}
	zoneMembers, err := members(labels.Grid, layer)
	if err != nil {
		return nil, err
	}

	var stats []ZonalStat
	for i, zone := range layer.Zones {
		counts := make(map[change.Label]int)
		total := 0
		for _, idx := range zoneMembers[i] {
			if !labels.Valid(idx) {
				continue
			}
			counts[labels.Data[idx]]++
			total++
		}

		codes := make([]change.Label, 0, len(counts))
		for code := range counts {
			codes = append(codes, code)
		}
		slices.Sort(codes)

		for _, code := range codes {
			n := counts[code]
			stats = append(stats, ZonalStat{
				ZoneID:     zone.ID,
				Category:   labels.Legend.Name(code),
				Code:       int(code),
				PixelCount: n,
				AreaHa:     float64(n) * pixelAreaHa,
				Percentage: 100 * float64(n) / float64(total),
			})
		}
	}
	return stats, nil
}

// AggregateIndexByZone reports count, area, mean and population standard deviation of an
// index per zone. Percentage is the share of the zone's pixels holding valid index data.
// Zones without valid pixels are left out.
func AggregateIndexByZone(index *raster.Raster, name string, layer ZoneLayer, pixelAreaHa float64) ([]IndexZonalStat, error) {
	if err := validatePixelArea(pixelAreaHa); err != nil {
		return nil, err
	}
	zoneMembers, err := members(index.Grid, layer)
	if err != nil {
		return nil, err
	}

	var stats []IndexZonalStat
	for i, zone := range layer.Zones {
		var m moments
		for _, idx := range zoneMembers[i] {
			if index.Valid(idx) {
				m.add(index.Data[idx])
			}
		}
		if m.n == 0 {
			continue
		}
		stats = append(stats, IndexZonalStat{
			ZoneID:     zone.ID,
			Index:      name,
			PixelCount: m.n,
			AreaHa:     float64(m.n) * pixelAreaHa,
			Percentage: 100 * float64(m.n) / float64(len(zoneMembers[i])),
			Mean:       m.mean(),
			StdDev:     m.std(),
		})
	}
	return stats, nil
}

// Majority returns the most frequent category of a zone; ties go to the lowest code.
func Majority(stats []ZonalStat, zoneID string) (ZonalStat, bool) {
	var best ZonalStat
	found := false
	for _, s := range stats {
		if s.ZoneID != zoneID {
			continue
		}
		if !found || s.PixelCount > best.PixelCount || (s.PixelCount == best.PixelCount && s.Code < best.Code) {
			best = s
			found = true
		}
	}
	return best, found
}

// moments accumulates a running mean and variance (Welford).
type moments struct {
	n  int
	mu float64
	m2 float64
}

func (m *moments) add(v float64) {
	m.n++
	d := v - m.mu
	m.mu += d / float64(m.n)
	m.m2 += d * (v - m.mu)
}

func (m *moments) mean() float64 {
	return m.mu
}

func (m *moments) std() float64 {
	if m.n == 0 {
		return 0
	}
	return math.Sqrt(m.m2 / float64(m.n))
}
