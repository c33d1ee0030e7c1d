package change

import (
	"github.com/forest-guardian/landcover-change/internal/indexes"
)

// sample holds the index values one pixel contributes to the cascade.
type sample struct {
	ndviStart, ndviEnd float64
	ndbiEnd            float64
	ndwiStart, ndwiEnd float64
}

type rule struct {
	label Label
	match func(s sample, t ThresholdConfig) bool
}

// cascade is evaluated in order; the first matching rule labels the pixel.
var cascade = []rule{
	{Urbanization, func(s sample, t ThresholdConfig) bool {
		return s.ndviStart > t.VegThreshold &&
			s.ndbiEnd > t.UrbanThreshold &&
			exceeds(s.ndviStart-s.ndviEnd, t.ChangeThreshold)
	}},
	{VegetationLoss, func(s sample, t ThresholdConfig) bool {
		return exceeds(s.ndviStart-s.ndviEnd, t.ChangeThreshold)
	}},
	{VegetationGain, func(s sample, t ThresholdConfig) bool {
		return exceeds(s.ndviEnd-s.ndviStart, t.ChangeThreshold)
	}},
	{NewWater, func(s sample, t ThresholdConfig) bool {
		return s.ndwiStart <= t.WaterThreshold && s.ndwiEnd > t.WaterThreshold
	}},
	{WaterLoss, func(s sample, t ThresholdConfig) bool {
		return s.ndwiStart > t.WaterThreshold && s.ndwiEnd <= t.WaterThreshold
	}},
}

func classify(s sample, t ThresholdConfig) Label {
	for _, r := range cascade {
		if r.match(s, t) {
			return r.label
		}
	}
	return Unchanged
}

// ClassifyMultiIndex labels change types from NDVI, NDBI and NDWI at two dates.
// A pixel with any required index at nodata is labelled nodata.
func ClassifyMultiIndex(start, end indexes.IndexSet, thresholds ThresholdConfig) (*LabelRaster, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	layers, err := requireLayers(start, end,
		[]indexes.Name{indexes.NDVI, indexes.NDWI},
		[]indexes.Name{indexes.NDVI, indexes.NDBI, indexes.NDWI},
		"multi-index classification")
	if err != nil {
		return nil, err
	}
	ndviStart, ndwiStart := layers.start[indexes.NDVI], layers.start[indexes.NDWI]
	ndviEnd, ndbiEnd, ndwiEnd := layers.end[indexes.NDVI], layers.end[indexes.NDBI], layers.end[indexes.NDWI]

	labels := newLabelRaster(start.Grid, MethodMultiIndex, MultiIndexLegend)
	for i := range labels.Data {
		if !ndviStart.Valid(i) || !ndviEnd.Valid(i) || !ndbiEnd.Valid(i) || !ndwiStart.Valid(i) || !ndwiEnd.Valid(i) {
			continue
		}
		labels.Data[i] = classify(sample{
			ndviStart: ndviStart.Data[i],
			ndviEnd:   ndviEnd.Data[i],
			ndbiEnd:   ndbiEnd.Data[i],
			ndwiStart: ndwiStart.Data[i],
			ndwiEnd:   ndwiEnd.Data[i],
		}, thresholds)
	}
	return labels, nil
}
