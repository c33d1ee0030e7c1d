package sentinel

import (
	"fmt"
	"strings"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/forest-guardian/landcover-change/internal/indexes"
	"github.com/forest-guardian/landcover-change/internal/log"
	"github.com/forest-guardian/landcover-change/internal/raster"
	"github.com/forest-guardian/landcover-change/internal/utils"
	"go.uber.org/zap"
)

// DefaultNoData is used for bands that declare no nodata value.
const DefaultNoData = 0.0

// quietErrors demotes GDAL warnings to debug logs; anything worse fails the call.
var quietErrors = godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
	if ec == godal.CE_Warning {
		log.Debug("gdal warning", zap.Int("code", code), zap.String("msg", msg))
		return nil
	}
	return fmt.Errorf("gdal error %d: %s", code, msg)
})

// ReadBandSet loads every band of a multi-band GeoTIFF into a BandSet.
func ReadBandSet(path string, date time.Time) (indexes.BandSet, error) {
	var (
		set indexes.BandSet
		err error
	)
	utils.ExecuteWithMutex(func() {
		set, err = readBandSet(path, date)
	})
	return set, err
}

func readBandSet(path string, date time.Time) (indexes.BandSet, error) {
	ds, err := godal.Open(path, quietErrors)
	if err != nil {
		return indexes.BandSet{}, fmt.Errorf("failed to open scene %s: %w", path, err)
	}
	defer ds.Close()

	grid, err := gridOf(ds)
	if err != nil {
		return indexes.BandSet{}, fmt.Errorf("scene %s: %w", path, err)
	}

	bands := ds.Bands()
	descriptions := make([]string, len(bands))
	for i, band := range bands {
		descriptions[i] = band.Description()
	}
	order := ResolveBandOrder(descriptions)

	set := indexes.BandSet{Date: date, Bands: make(map[indexes.Band]*raster.Raster, len(order))}
	for i, name := range order {
		band := bands[i]
		noData, ok := band.NoData()
		if !ok {
			noData = DefaultNoData
		}
		data := make([]float64, grid.Size())
		if err := band.Read(0, 0, data, grid.Cols, grid.Rows); err != nil {
			return indexes.BandSet{}, fmt.Errorf("failed to read band %d (%s) of %s: %w", i+1, name, path, err)
		}
		set.Bands[name] = &raster.Raster{Grid: grid, NoData: noData, Data: data}
	}

	log.Debug("scene loaded",
		zap.String("path", path),
		zap.Int("bands", len(order)),
		zap.Int("cols", grid.Cols),
		zap.Int("rows", grid.Rows),
		zap.String("crs", grid.CRS))
	return set, nil
}

func gridOf(ds *godal.Dataset) (raster.Grid, error) {
	structure := ds.Structure()
	gt, err := ds.GeoTransform()
	if err != nil {
		return raster.Grid{}, fmt.Errorf("failed to get GeoTransform: %w", err)
	}
	sr := ds.SpatialRef()
	return raster.Grid{
		Rows:       structure.SizeY,
		Cols:       structure.SizeX,
		Transform:  raster.GeoTransform(gt),
		CRS:        crsOf(sr),
		Geographic: sr != nil && sr.Geographic(),
	}, nil
}

// crsOf prefers an AUTHORITY:CODE identifier and falls back to WKT.
func crsOf(sr *godal.SpatialRef) string {
	if sr == nil {
		return ""
	}
	name, code := sr.AuthorityName(""), sr.AuthorityCode("")
	if name != "" && code != "" {
		return strings.ToUpper(name) + ":" + code
	}
	wkt, err := sr.WKT()
	if err != nil {
		return ""
	}
	return wkt
}
