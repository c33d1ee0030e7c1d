package sentinel

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/airbusgeo/godal"
	"github.com/forest-guardian/landcover-change/internal/change"
	"github.com/forest-guardian/landcover-change/internal/indexes"
	"github.com/forest-guardian/landcover-change/internal/raster"
	"github.com/forest-guardian/landcover-change/internal/utils"
)

var creationOptions = godal.CreationOption("COMPRESS=DEFLATE", "TILED=YES")

type bandData struct {
	data        interface{}
	noData      float64
	description string
}

// WriteRaster stores r as a single-band Float32 GeoTIFF.
func WriteRaster(path string, r *raster.Raster, description string) error {
	return writeBands(path, r.Grid, godal.Float32, []bandData{{float32s(r), r.NoData, description}})
}

// WriteLabels stores a label raster as Int16 so the -128 nodata code survives.
func WriteLabels(path string, labels *change.LabelRaster) error {
	data := make([]int16, len(labels.Data))
	for i, v := range labels.Data {
		data[i] = int16(v)
	}
	return writeBands(path, labels.Grid, godal.Int16, []bandData{{data, float64(change.NoDataLabel), labels.Method}})
}

// WriteBandSet stores a scene as a multi-band Float32 GeoTIFF in DefaultBandOrder,
// with each band described by its name so ReadBandSet can restore it.
func WriteBandSet(path string, set indexes.BandSet) error {
	var (
		grid  *raster.Grid
		bands []bandData
	)
	for _, name := range indexes.DefaultBandOrder {
		r, ok := set.Bands[name]
		if !ok {
			continue
		}
		if grid == nil {
			grid = &r.Grid
		} else if err := raster.CheckCoRegistered("band "+string(name), *grid, r.Grid); err != nil {
			return err
		}
		bands = append(bands, bandData{float32s(r), r.NoData, string(name)})
	}
	if grid == nil {
		return fmt.Errorf("no spectral bands to write to %s", path)
	}
	return writeBands(path, *grid, godal.Float32, bands)
}

// WriteIndexSet writes one GeoTIFF per layer into dir, named after the index and date.
func WriteIndexSet(dir string, set indexes.IndexSet) ([]string, error) {
	var paths []string
	for _, name := range utils.SortedKeys(set.Layers) {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.tif", name, set.Date.Format(sceneDateLayout)))
		if err := WriteRaster(path, set.Layers[name], string(name)); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func float32s(r *raster.Raster) []float32 {
	data := make([]float32, len(r.Data))
	for i, v := range r.Data {
		data[i] = float32(v)
	}
	return data
}

func writeBands(path string, grid raster.Grid, dtype godal.DataType, bands []bandData) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create result folder: %w", err)
	}
	var err error
	utils.ExecuteWithMutex(func() {
		err = createGeoTIFF(path, grid, dtype, bands)
	})
	return err
}

func createGeoTIFF(path string, grid raster.Grid, dtype godal.DataType, bands []bandData) error {
	ds, err := godal.Create(godal.GTiff, path, len(bands), dtype, grid.Cols, grid.Rows, creationOptions, quietErrors)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fillDataset(ds, grid, bands); err != nil {
		ds.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := ds.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func fillDataset(ds *godal.Dataset, grid raster.Grid, bands []bandData) error {
	if err := ds.SetGeoTransform([6]float64(grid.Transform)); err != nil {
		return fmt.Errorf("set GeoTransform: %w", err)
	}
	if grid.CRS != "" {
		sr, err := godal.NewSpatialRef(grid.CRS)
		if err != nil {
			return fmt.Errorf("parse CRS %q: %w", grid.CRS, err)
		}
		defer sr.Close()
		if err := ds.SetSpatialRef(sr); err != nil {
			return fmt.Errorf("set CRS: %w", err)
		}
	}

	for i, band := range ds.Bands() {
		b := bands[i]
		if err := band.SetNoData(b.noData); err != nil {
			return fmt.Errorf("set nodata on band %d: %w", i+1, err)
		}
		if b.description != "" {
			if err := band.SetDescription(b.description); err != nil {
				return fmt.Errorf("set description on band %d: %w", i+1, err)
			}
		}
		if err := band.Write(0, 0, b.data, grid.Cols, grid.Rows); err != nil {
			return fmt.Errorf("write band %d: %w", i+1, err)
		}
	}
	return nil
}
