package indexes

import (
	"math"
	"testing"
	"time"

	"github.com/forest-guardian/landcover-change/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bandNoData = -1.0

var grid2x2 = raster.Grid{
	Rows:      2,
	Cols:      2,
	Transform: raster.GeoTransform{0, 10, 0, 0, 0, -10},
	CRS:       "EPSG:32718",
}

func band(t *testing.T, values ...float64) *raster.Raster {
	t.Helper()
	r, err := raster.FromValues(grid2x2, bandNoData, values)
	require.NoError(t, err)
	return r
}

func fullBandSet(t *testing.T) BandSet {
	return BandSet{
		Date: time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC),
		Bands: map[Band]*raster.Raster{
			Blue:  band(t, 500, 400, 0, 1000),
			Green: band(t, 800, 900, 0, 1500),
			Red:   band(t, 2000, 1000, 0, bandNoData),
			NIR:   band(t, 6000, 3000, 0, 2500),
			SWIR1: band(t, 1000, 4000, 0, 3000),
		},
	}
}

func TestComputeIndicesFormulas(t *testing.T) {
	set, err := ComputeIndices(fullBandSet(t), nil)
	require.NoError(t, err)
	require.Len(t, set.Layers, 4)

	ndvi, _ := set.Get(NDVI)
	ndbi, _ := set.Get(NDBI)
	ndwi, _ := set.Get(NDWI)
	bsi, _ := set.Get(BSI)

	assert.InDelta(t, 0.5, ndvi.Data[0], 1e-12)
	assert.InDelta(t, (1000.0-6000)/(1000+6000), ndbi.Data[0], 1e-12)
	assert.InDelta(t, (800.0-6000)/(800+6000), ndwi.Data[0], 1e-12)
	assert.InDelta(t, ((1000.0+2000)-(6000+500))/((1000+2000)+(6000+500)), bsi.Data[0], 1e-12)

	assert.InDelta(t, 0.5, ndvi.Data[1], 1e-12)
	assert.InDelta(t, 1.0/7.0, ndbi.Data[1], 1e-12)
	assert.Equal(t, grid2x2, set.Grid)
}

func TestComputeIndicesZeroDenominatorIsNoData(t *testing.T) {
	set, err := ComputeIndices(fullBandSet(t), nil)
	require.NoError(t, err)

	for _, name := range AllIndexes {
		r, _ := set.Get(name)
		assert.Equal(t, NoData, r.Data[2], "%s at all-zero pixel", name)
		assert.False(t, math.IsNaN(r.Data[2]))
	}
}

func TestComputeIndicesPropagatesNoData(t *testing.T) {
	set, err := ComputeIndices(fullBandSet(t), nil)
	require.NoError(t, err)

	// red is nodata at pixel 3: NDVI and BSI depend on it, NDBI and NDWI do not
	ndvi, _ := set.Get(NDVI)
	bsi, _ := set.Get(BSI)
	ndbi, _ := set.Get(NDBI)
	ndwi, _ := set.Get(NDWI)
	assert.Equal(t, NoData, ndvi.Data[3])
	assert.Equal(t, NoData, bsi.Data[3])
	assert.NotEqual(t, NoData, ndbi.Data[3])
	assert.NotEqual(t, NoData, ndwi.Data[3])
}

func TestComputeIndicesNoDataInSharedBand(t *testing.T) {
	bands := fullBandSet(t)
	bands.Bands[NIR] = band(t, bandNoData, 3000, 0, 2500)

	set, err := ComputeIndices(bands, nil)
	require.NoError(t, err)
	for _, name := range AllIndexes {
		r, _ := set.Get(name)
		assert.Equal(t, NoData, r.Data[0], "%s depends on nir", name)
	}
}

func TestComputeIndicesRange(t *testing.T) {
	bands := fullBandSet(t)
	// negative reflectances can push the ratio outside [-1, 1]
	bands.Bands[NIR] = band(t, 6000, -3000, 0, 2500)
	bands.Bands[Red] = band(t, 2000, 1000, 0, 10)

	set, err := ComputeIndices(bands, nil)
	require.NoError(t, err)
	for _, name := range AllIndexes {
		r, _ := set.Get(name)
		for i := range r.Data {
			v := r.Data[i]
			if v == NoData {
				continue
			}
			assert.GreaterOrEqual(t, v, -1.0, "%s[%d]", name, i)
			assert.LessOrEqual(t, v, 1.0, "%s[%d]", name, i)
		}
	}
	ndvi, _ := set.Get(NDVI)
	assert.Equal(t, 1.0, ndvi.Data[1], "clipped, not discarded")
}

func TestComputeIndicesDeterministic(t *testing.T) {
	bands := fullBandSet(t)
	first, err := ComputeIndices(bands, nil)
	require.NoError(t, err)
	second, err := ComputeIndices(bands, nil)
	require.NoError(t, err)

	for _, name := range AllIndexes {
		assert.Equal(t, first.Layers[name].Data, second.Layers[name].Data)
	}
}

func TestComputeIndicesDoesNotMutateInput(t *testing.T) {
	bands := fullBandSet(t)
	before := append([]float64{}, bands.Bands[NIR].Data...)
	_, err := ComputeIndices(bands, nil)
	require.NoError(t, err)
	assert.Equal(t, before, bands.Bands[NIR].Data)
}

func TestComputeIndicesMissingBand(t *testing.T) {
	bands := fullBandSet(t)
	delete(bands.Bands, SWIR1)

	_, err := ComputeIndices(bands, []Name{NDVI, NDBI})
	var missing *raster.MissingBandError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "swir1", missing.Band)
	assert.Equal(t, "NDBI", missing.Index)

	set, err := ComputeIndices(bands, []Name{NDVI, NDWI, NDVI})
	require.NoError(t, err)
	assert.Len(t, set.Layers, 2)
}

func TestComputeIndicesGridMismatch(t *testing.T) {
	bands := fullBandSet(t)
	shifted := grid2x2
	shifted.Transform[0] = 5
	bands.Bands[Red] = &raster.Raster{Grid: shifted, NoData: bandNoData, Data: []float64{1, 2, 3, 4}}

	_, err := ComputeIndices(bands, []Name{NDVI})
	assert.ErrorIs(t, err, raster.ErrGridMismatch)
}

func TestComputeIndicesUnknownIndex(t *testing.T) {
	_, err := ComputeIndices(fullBandSet(t), []Name{"EVI"})
	assert.ErrorIs(t, err, raster.ErrInvalidConfig)
}

func TestScaleReflectance(t *testing.T) {
	scaled, err := ScaleReflectance(fullBandSet(t), 10000)
	require.NoError(t, err)

	assert.InDelta(t, 0.6, scaled.Bands[NIR].Data[0], 1e-12)
	assert.Equal(t, bandNoData, scaled.Bands[Red].Data[3])

	raw, err := ComputeIndices(fullBandSet(t), []Name{NDVI})
	require.NoError(t, err)
	fromScaled, err := ComputeIndices(scaled, []Name{NDVI})
	require.NoError(t, err)
	assert.InDeltaSlice(t, raw.Layers[NDVI].Data, fromScaled.Layers[NDVI].Data, 1e-12)

	_, err = ScaleReflectance(fullBandSet(t), 0)
	assert.ErrorIs(t, err, raster.ErrInvalidConfig)
}
