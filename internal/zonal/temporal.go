package zonal

import (
	"slices"
	"time"

	"github.com/forest-guardian/landcover-change/internal/change"
	"github.com/forest-guardian/landcover-change/internal/indexes"
	"github.com/forest-guardian/landcover-change/internal/raster"
	"github.com/forest-guardian/landcover-change/internal/utils"
)

type TemporalPoint struct {
	Year   int     `csv:"year"`
	Index  string  `csv:"index"`
	Mean   float64 `csv:"mean"`
	StdDev float64 `csv:"std"`
	Pixels int     `csv:"pixels"`
}

// TemporalSeries is ordered by year, then by index name.
type TemporalSeries []TemporalPoint

// For returns the points of one index, in year order.
func (s TemporalSeries) For(name indexes.Name) []TemporalPoint {
	var out []TemporalPoint
	for _, p := range s {
		if p.Index == string(name) {
			out = append(out, p)
		}
	}
	return out
}

// AggregateTemporal averages each year's IndexSet over the valid pixels of the study mask.
// A nil mask covers the whole grid. Years (per index) without valid pixels are omitted.
func AggregateTemporal(byYear map[int]indexes.IndexSet, mask *raster.Raster) (TemporalSeries, error) {
	grouped := make(map[int][]indexes.IndexSet, len(byYear))
	for year, set := range byYear {
		grouped[year] = []indexes.IndexSet{set}
	}
	return aggregateYears(grouped, mask)
}

// AggregateDateSeries groups acquisitions by calendar year and pools all their valid pixels
// into one yearly mean.
func AggregateDateSeries(byDate map[time.Time]indexes.IndexSet, mask *raster.Raster) (TemporalSeries, error) {
	return aggregateYears(groupByYear(byDate), mask)
}

func groupByYear(byDate map[time.Time]indexes.IndexSet) map[int][]indexes.IndexSet {
	grouped := make(map[int][]indexes.IndexSet)
	for _, date := range utils.GetSortedKeys(byDate, true) {
		grouped[date.Year()] = append(grouped[date.Year()], byDate[date])
	}
	return grouped
}

func aggregateYears(grouped map[int][]indexes.IndexSet, mask *raster.Raster) (TemporalSeries, error) {
	years := utils.SortedKeys(grouped)

	for _, year := range years {
		for _, set := range grouped[year] {
			if err := checkMask(set, mask); err != nil {
				return nil, err
			}
		}
	}

	var series TemporalSeries
	for _, year := range years {
		sets := grouped[year]
		for _, name := range layerNames(sets) {
			var m moments
			for _, set := range sets {
				layer, ok := set.Get(name)
				if !ok {
					continue
				}
				for i, v := range layer.Data {
					if layer.Valid(i) && (mask == nil || mask.Valid(i)) {
						m.add(v)
					}
				}
			}
			if m.n == 0 {
				continue
			}
			series = append(series, TemporalPoint{
				Year:   year,
				Index:  string(name),
				Mean:   m.mean(),
				StdDev: m.std(),
				Pixels: m.n,
			})
		}
	}
	return series, nil
}

func checkMask(set indexes.IndexSet, mask *raster.Raster) error {
	for _, name := range utils.SortedKeys(set.Layers) {
		layer := set.Layers[name]
		if err := raster.CheckCoRegistered(string(name)+" layer", set.Grid, layer.Grid); err != nil {
			return err
		}
		if mask != nil {
			if err := raster.CheckCoRegistered("study mask", mask.Grid, layer.Grid); err != nil {
				return err
			}
		}
	}
	return nil
}

// layerNames lists the index names present in sets: the standard indexes first, then any others sorted.
func layerNames(sets []indexes.IndexSet) []indexes.Name {
	present := make(map[indexes.Name]bool)
	for _, set := range sets {
		for name := range set.Layers {
			present[name] = true
		}
	}
	var names []indexes.Name
	for _, name := range indexes.AllIndexes {
		if present[name] {
			names = append(names, name)
			delete(present, name)
		}
	}
	extra := make([]indexes.Name, 0, len(present))
	for name := range present {
		extra = append(extra, name)
	}
	slices.Sort(extra)
	return append(names, extra...)
}

// CoverShare is the yearly share of vegetated and built-up pixels.
type CoverShare struct {
	Year          int     `csv:"year"`
	VegetationPct float64 `csv:"pct_veg"`
	UrbanPct      float64 `csv:"pct_urb"`
}

// CoverShares reports, per year, the percentage of valid NDVI pixels above the vegetation
// threshold and of valid NDBI pixels above the urban threshold.
func CoverShares(byDate map[time.Time]indexes.IndexSet, mask *raster.Raster, thresholds change.ThresholdConfig) ([]CoverShare, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	grouped := groupByYear(byDate)

	var shares []CoverShare
	for _, year := range utils.SortedKeys(grouped) {
		var vegetated, vegTotal, urban, urbTotal int
		for _, set := range grouped[year] {
			if err := checkMask(set, mask); err != nil {
				return nil, err
			}
			if ndvi, ok := set.Get(indexes.NDVI); ok {
				for i, v := range ndvi.Data {
					if ndvi.Valid(i) && (mask == nil || mask.Valid(i)) {
						vegTotal++
						if v > thresholds.VegThreshold {
							vegetated++
						}
					}
				}
			}
			if ndbi, ok := set.Get(indexes.NDBI); ok {
				for i, v := range ndbi.Data {
					if ndbi.Valid(i) && (mask == nil || mask.Valid(i)) {
						urbTotal++
						if v > thresholds.UrbanThreshold {
							urban++
						}
					}
				}
			}
		}
		if vegTotal == 0 && urbTotal == 0 {
			continue
		}
		share := CoverShare{Year: year}
		if vegTotal > 0 {
			share.VegetationPct = 100 * float64(vegetated) / float64(vegTotal)
		}
		if urbTotal > 0 {
			share.UrbanPct = 100 * float64(urban) / float64(urbTotal)
		}
		shares = append(shares, share)
	}
	return shares, nil
}
