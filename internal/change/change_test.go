package change

import (
	"math"
	"testing"

	"github.com/forest-guardian/landcover-change/internal/indexes"
	"github.com/forest-guardian/landcover-change/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nd = indexes.NoData

func rowGrid(n int) raster.Grid {
	return raster.Grid{Rows: 1, Cols: n, Transform: raster.GeoTransform{0, 10, 0, 0, 0, -10}, CRS: "EPSG:32718"}
}

// indexSet builds a one-row IndexSet; every layer gets one value per pixel.
func indexSet(t *testing.T, layers map[indexes.Name][]float64) indexes.IndexSet {
	t.Helper()
	var n int
	for _, v := range layers {
		n = len(v)
		break
	}
	set := indexes.IndexSet{Grid: rowGrid(n), Layers: map[indexes.Name]*raster.Raster{}}
	for name, values := range layers {
		r, err := raster.FromValues(set.Grid, nd, values)
		require.NoError(t, err)
		set.Layers[name] = r
	}
	return set
}

func TestClassifyDifferenceBoundaryIsOpen(t *testing.T) {
	start := indexSet(t, map[indexes.Name][]float64{indexes.NDVI: {0.25, 0.25, 0.40, 0.4001, 0.5, nd, 0.3}})
	end := indexSet(t, map[indexes.Name][]float64{indexes.NDVI: {0.40, 0.4001, 0.25, 0.25, 0.5, 0.2, nd}})

	labels, err := ClassifyDifference(start, end, DefaultDifferenceThreshold)
	require.NoError(t, err)

	assert.Equal(t, []Label{NoChange, Gain, NoChange, Loss, NoChange, NoDataLabel, NoDataLabel}, labels.Data)
	assert.Equal(t, MethodDifference, labels.Method)
	assert.Equal(t, "vegetation-loss", labels.Legend.Name(Loss))
	assert.Equal(t, "nodata", labels.Legend.Name(NoDataLabel))
}

func TestClassifyDifferenceInvalidThreshold(t *testing.T) {
	set := indexSet(t, map[indexes.Name][]float64{indexes.NDVI: {0.1}})
	for _, threshold := range []float64{0, -0.15, math.NaN(), math.Inf(1)} {
		_, err := ClassifyDifference(set, set, threshold)
		assert.ErrorIs(t, err, raster.ErrInvalidConfig, "threshold %v", threshold)
	}
}

func TestClassifyDifferenceGridMismatch(t *testing.T) {
	start := indexSet(t, map[indexes.Name][]float64{indexes.NDVI: {0.1, 0.2}})
	end := indexSet(t, map[indexes.Name][]float64{indexes.NDVI: {0.1, 0.2, 0.3}})

	labels, err := ClassifyDifference(start, end, 0.15)
	assert.ErrorIs(t, err, raster.ErrGridMismatch)
	assert.Nil(t, labels)

	end = indexSet(t, map[indexes.Name][]float64{indexes.NDVI: {0.1, 0.2}})
	end.Grid.CRS = "EPSG:4326"
	end.Layers[indexes.NDVI].CRS = "EPSG:4326"
	_, err = ClassifyDifference(start, end, 0.15)
	assert.ErrorIs(t, err, raster.ErrGridMismatch)
}

func TestClassifyDifferenceMissingNDVI(t *testing.T) {
	start := indexSet(t, map[indexes.Name][]float64{indexes.NDBI: {0.1}})
	_, err := ClassifyDifference(start, start, 0.15)
	var missing *raster.MissingBandError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "NDVI", missing.Band)
}

func TestClassifyMultiIndexRules(t *testing.T) {
	tests := []struct {
		name               string
		ndviStart, ndviEnd float64
		ndbiEnd            float64
		ndwiStart, ndwiEnd float64
		want               Label
	}{
		{"urbanization wins over vegetation loss", 0.6, 0.2, 0.1, -0.2, -0.2, Urbanization},
		{"vegetation loss without built-up signal", 0.6, 0.2, -0.1, -0.2, -0.2, VegetationLoss},
		{"vegetation loss below vegetation threshold", 0.25, 0.05, 0.3, -0.2, -0.2, VegetationLoss},
		{"vegetation gain", 0.1, 0.5, -0.1, -0.2, -0.2, VegetationGain},
		{"vegetation gain precedes new water", 0.1, 0.5, -0.1, 0.0, 0.3, VegetationGain},
		{"new water", 0.1, 0.1, -0.1, 0.0, 0.3, NewWater},
		{"new water from threshold", 0.1, 0.1, -0.1, 0.1, 0.3, NewWater},
		{"water loss", 0.1, 0.1, -0.1, 0.3, 0.1, WaterLoss},
		{"stable water", 0.0, 0.0, -0.1, 0.3, 0.4, Unchanged},
		{"stable vegetation", 0.7, 0.65, -0.2, -0.3, -0.3, Unchanged},
		{"change exactly at threshold", 0.5, 0.35, 0.1, -0.2, -0.2, Unchanged},
		{"nodata start ndvi", nd, 0.2, 0.1, -0.2, -0.2, NoDataLabel},
		{"nodata end ndbi", 0.6, 0.2, nd, -0.2, -0.2, NoDataLabel},
		{"nodata end ndwi", 0.6, 0.6, -0.1, -0.2, nd, NoDataLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := indexSet(t, map[indexes.Name][]float64{
				indexes.NDVI: {tt.ndviStart},
				indexes.NDWI: {tt.ndwiStart},
			})
			end := indexSet(t, map[indexes.Name][]float64{
				indexes.NDVI: {tt.ndviEnd},
				indexes.NDBI: {tt.ndbiEnd},
				indexes.NDWI: {tt.ndwiEnd},
			})

			labels, err := ClassifyMultiIndex(start, end, DefaultThresholds())
			require.NoError(t, err)
			assert.Equal(t, tt.want, labels.Data[0], "got %s", labels.Legend.Name(labels.Data[0]))
		})
	}
}

func TestClassifyMultiIndexInvalidConfig(t *testing.T) {
	set := indexSet(t, map[indexes.Name][]float64{
		indexes.NDVI: {0.1}, indexes.NDBI: {0.1}, indexes.NDWI: {0.1},
	})

	tests := []struct {
		name   string
		mutate func(c *ThresholdConfig)
	}{
		{"zero change threshold", func(c *ThresholdConfig) { c.ChangeThreshold = 0 }},
		{"negative change threshold", func(c *ThresholdConfig) { c.ChangeThreshold = -0.1 }},
		{"nan vegetation threshold", func(c *ThresholdConfig) { c.VegThreshold = math.NaN() }},
		{"infinite water threshold", func(c *ThresholdConfig) { c.WaterThreshold = math.Inf(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultThresholds()
			tt.mutate(&cfg)
			_, err := ClassifyMultiIndex(set, set, cfg)
			var invalid *raster.InvalidConfigError
			assert.ErrorAs(t, err, &invalid)
		})
	}

	cfg := DefaultThresholds()
	cfg.UrbanThreshold = -0.5
	_, err := ClassifyMultiIndex(set, set, cfg)
	assert.NoError(t, err, "negative non-change thresholds are allowed")
}

func TestClassifyMultiIndexMissingLayer(t *testing.T) {
	start := indexSet(t, map[indexes.Name][]float64{indexes.NDVI: {0.1}, indexes.NDWI: {0.1}})
	end := indexSet(t, map[indexes.Name][]float64{indexes.NDVI: {0.1}, indexes.NDWI: {0.1}})

	_, err := ClassifyMultiIndex(start, end, DefaultThresholds())
	var missing *raster.MissingBandError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "NDBI", missing.Band)
}

func TestClassifyMultiIndexGridMismatch(t *testing.T) {
	start := indexSet(t, map[indexes.Name][]float64{
		indexes.NDVI: {0.6}, indexes.NDBI: {0.1}, indexes.NDWI: {0.0},
	})
	end := indexSet(t, map[indexes.Name][]float64{
		indexes.NDVI: {0.2}, indexes.NDBI: {0.1}, indexes.NDWI: {0.0},
	})
	end.Layers[indexes.NDBI].Transform[1] = 20

	labels, err := ClassifyMultiIndex(start, end, DefaultThresholds())
	assert.ErrorIs(t, err, raster.ErrGridMismatch)
	assert.Nil(t, labels)
}

func TestSummarize(t *testing.T) {
	start := indexSet(t, map[indexes.Name][]float64{indexes.NDVI: {0.6, 0.6, 0.2, 0.3, nd}})
	end := indexSet(t, map[indexes.Name][]float64{indexes.NDVI: {0.2, 0.3, 0.6, 0.3, 0.3}})

	labels, err := ClassifyDifference(start, end, 0.15)
	require.NoError(t, err)

	stats := Summarize(labels)
	require.Len(t, stats, 3)
	assert.Equal(t, "vegetation-loss", stats[0].Class)
	assert.Equal(t, 2, stats[0].Pixels)
	assert.InDelta(t, 50.0, stats[0].Percentage, 1e-9)
	assert.Equal(t, 1, stats[1].Pixels)
	assert.Equal(t, 1, stats[2].Pixels)

	summary, err := SummarizeDifference(start, end, labels, 0.15)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.TotalPixels)
	assert.Equal(t, 2, summary.LossPixels)
	assert.Equal(t, 1, summary.GainPixels)
	assert.Equal(t, 1, summary.NoChangePixels)
	assert.InDelta(t, 25.0, summary.GainPct, 1e-9)
	// differences: -0.4, -0.3, 0.4, 0
	assert.InDelta(t, -0.075, summary.MeanDifference, 1e-9)
	assert.InDelta(t, math.Sqrt((0.325*0.325+0.225*0.225+0.475*0.475+0.075*0.075)/4), summary.StdDifference, 1e-9)
}
