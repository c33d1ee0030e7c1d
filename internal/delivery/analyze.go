package delivery

import (
	"fmt"
	"time"

	"github.com/forest-guardian/landcover-change/internal/change"
	"github.com/forest-guardian/landcover-change/internal/indexes"
	"github.com/forest-guardian/landcover-change/internal/output"
	"github.com/forest-guardian/landcover-change/internal/raster"
	"github.com/forest-guardian/landcover-change/internal/utils"
	"github.com/forest-guardian/landcover-change/internal/zonal"
)

// Analysis holds everything derived from one set of dated IndexSets.
type Analysis struct {
	Start, End  indexes.IndexSet
	PixelAreaHa float64
	Thresholds  change.ThresholdConfig

	Difference        *change.LabelRaster
	MultiIndex        *change.LabelRaster
	NDVIChange        *raster.Raster
	DifferenceSummary change.DifferenceSummary
	DifferenceClasses []change.ClassStat
	MultiIndexClasses []change.ClassStat
	Agreement         map[[2]string]int

	DifferenceByZone []zonal.ZonalStat
	MultiIndexByZone []zonal.ZonalStat
	NDVIChangeByZone []zonal.IndexZonalStat

	Temporal    zonal.TemporalSeries
	CoverShares []zonal.CoverShare
}

// Analyze classifies the earliest against the latest IndexSet and aggregates the results
// over layer. The yearly series uses every date.
func Analyze(sets map[time.Time]indexes.IndexSet, layer zonal.ZoneLayer, cfg Config) (*Analysis, error) {
	dates := utils.GetSortedKeys(sets, true)
	if len(dates) < 2 {
		return nil, fmt.Errorf("need at least two dates to detect change, got %d", len(dates))
	}
	a := &Analysis{
		Start:      sets[dates[0]],
		End:        sets[dates[len(dates)-1]],
		Thresholds: cfg.Thresholds,
	}

	var err error
	a.PixelAreaHa = cfg.PixelAreaHa
	if a.PixelAreaHa == 0 {
		if a.PixelAreaHa, err = a.Start.Grid.PixelAreaHa(); err != nil {
			return nil, err
		}
	}

	threshold := cfg.Thresholds.ChangeThreshold
	if a.Difference, err = change.ClassifyDifference(a.Start, a.End, threshold); err != nil {
		return nil, fmt.Errorf("difference method: %w", err)
	}
	if a.MultiIndex, err = change.ClassifyMultiIndex(a.Start, a.End, cfg.Thresholds); err != nil {
		return nil, fmt.Errorf("multi-index method: %w", err)
	}
	if a.NDVIChange, err = change.DifferenceRaster(a.Start, a.End, indexes.NDVI); err != nil {
		return nil, err
	}
	if a.DifferenceSummary, err = change.SummarizeDifference(a.Start, a.End, a.Difference, threshold); err != nil {
		return nil, err
	}
	a.DifferenceClasses = change.Summarize(a.Difference)
	a.MultiIndexClasses = change.Summarize(a.MultiIndex)
	if a.Agreement, err = output.CrossTabulate(a.Difference, a.MultiIndex); err != nil {
		return nil, err
	}

	if a.DifferenceByZone, err = zonal.AggregateByZone(a.Difference, layer, a.PixelAreaHa); err != nil {
		return nil, err
	}
	if a.MultiIndexByZone, err = zonal.AggregateByZone(a.MultiIndex, layer, a.PixelAreaHa); err != nil {
		return nil, err
	}
	if a.NDVIChangeByZone, err = zonal.AggregateIndexByZone(a.NDVIChange, "NDVI change", layer, a.PixelAreaHa); err != nil {
		return nil, err
	}

	if a.Temporal, err = zonal.AggregateDateSeries(sets, nil); err != nil {
		return nil, err
	}
	if a.CoverShares, err = zonal.CoverShares(sets, nil, cfg.Thresholds); err != nil {
		return nil, err
	}
	return a, nil
}
