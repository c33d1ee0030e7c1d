package change

import (
	"github.com/forest-guardian/landcover-change/internal/indexes"
	"github.com/forest-guardian/landcover-change/internal/raster"
)

// ClassifyDifference labels NDVI loss/gain between two dates:
// loss when NDVI_end - NDVI_start < -threshold, gain when it is > threshold.
func ClassifyDifference(start, end indexes.IndexSet, threshold float64) (*LabelRaster, error) {
	if err := validateDifferenceThreshold(threshold); err != nil {
		return nil, err
	}
	delta, err := DifferenceRaster(start, end, indexes.NDVI)
	if err != nil {
		return nil, err
	}

	labels := newLabelRaster(start.Grid, MethodDifference, DifferenceLegend)
	for i, d := range delta.Data {
		if !delta.Valid(i) {
			continue
		}
		switch {
		case exceeds(-d, threshold):
			labels.Data[i] = Loss
		case exceeds(d, threshold):
			labels.Data[i] = Gain
		default:
			labels.Data[i] = NoChange
		}
	}
	return labels, nil
}

// DifferenceRaster returns end - start for one index, nodata wherever either date is nodata.
func DifferenceRaster(start, end indexes.IndexSet, name indexes.Name) (*raster.Raster, error) {
	layers, err := requireLayers(start, end, []indexes.Name{name}, []indexes.Name{name}, string(name)+" difference")
	if err != nil {
		return nil, err
	}
	s, e := layers.start[name], layers.end[name]

	out := raster.New(start.Grid, indexes.NoData)
	for i := range out.Data {
		if s.Valid(i) && e.Valid(i) {
			out.Data[i] = e.Data[i] - s.Data[i]
		}
	}
	return out, nil
}

type layerPair struct {
	start map[indexes.Name]*raster.Raster
	end   map[indexes.Name]*raster.Raster
}

// requireLayers fetches the named layers and checks every one of them against the start grid
// before any pixel is touched.
func requireLayers(start, end indexes.IndexSet, fromStart, fromEnd []indexes.Name, purpose string) (layerPair, error) {
	if err := raster.CheckCoRegistered("index sets", start.Grid, end.Grid); err != nil {
		return layerPair{}, err
	}
	pair := layerPair{
		start: make(map[indexes.Name]*raster.Raster, len(fromStart)),
		end:   make(map[indexes.Name]*raster.Raster, len(fromEnd)),
	}
	collect := func(set indexes.IndexSet, names []indexes.Name, into map[indexes.Name]*raster.Raster) error {
		for _, name := range names {
			r, ok := set.Get(name)
			if !ok || r == nil {
				return &raster.MissingBandError{Band: string(name), Index: purpose}
			}
			if err := raster.CheckCoRegistered(string(name)+" layer", start.Grid, r.Grid); err != nil {
				return err
			}
			into[name] = r
		}
		return nil
	}
	if err := collect(start, fromStart, pair.start); err != nil {
		return layerPair{}, err
	}
	if err := collect(end, fromEnd, pair.end); err != nil {
		return layerPair{}, err
	}
	return pair, nil
}
