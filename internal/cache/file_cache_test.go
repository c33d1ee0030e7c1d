package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forest-guardian/landcover-change/internal/indexes"
	"github.com/forest-guardian/landcover-change/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCacheIndexSet(t *testing.T) {
	fc := NewFileCache[indexes.IndexSet](filepath.Join(t.TempDir(), "indexes"))
	grid := raster.Grid{Rows: 1, Cols: 3, Transform: raster.GeoTransform{0, 10, 0, 0, 0, -10}, CRS: "EPSG:32718"}
	ndvi, err := raster.FromValues(grid, indexes.NoData, []float64{0.5, indexes.NoData, -0.2})
	require.NoError(t, err)
	set := indexes.IndexSet{
		Date:   time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC),
		Grid:   grid,
		Layers: map[indexes.Name]*raster.Raster{indexes.NDVI: ndvi},
	}

	key := fc.GenerateKey("20200115.tif", 10000.0, []indexes.Name{indexes.NDVI})
	assert.Equal(t, key, fc.GenerateKey("20200115.tif", 10000.0, []indexes.Name{indexes.NDVI}))
	assert.NotEqual(t, key, fc.GenerateKey("20200115.tif", 1.0, []indexes.Name{indexes.NDVI}))

	_, ok := fc.Get(key)
	assert.False(t, ok)

	require.NoError(t, fc.Set(key, set))
	got, ok := fc.Get(key)
	require.True(t, ok)
	assert.True(t, set.Date.Equal(got.Date))
	assert.Equal(t, set.Grid, got.Grid)
	assert.Equal(t, ndvi.Data, got.Layers[indexes.NDVI].Data)
}

func TestFileCacheRejectsTamperedEntry(t *testing.T) {
	fc := NewFileCache[[]float64](t.TempDir())
	require.NoError(t, fc.Set("k", []float64{1, 2, 3}))

	path := filepath.Join(fc.Dir(), "k.json")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(string(raw), "[1,2,3]", "[1,2,4]", 1)), 0o644))

	_, ok := fc.Get("k")
	assert.False(t, ok)
}
