package change

import (
	"math"

	"github.com/forest-guardian/landcover-change/internal/raster"
)

const DefaultDifferenceThreshold = 0.15

// boundaryTolerance absorbs float rounding in index differences so that a
// difference equal to the threshold stays on the no-change side.
const boundaryTolerance = 1e-9

type ThresholdConfig struct {
	VegThreshold    float64
	UrbanThreshold  float64
	ChangeThreshold float64
	WaterThreshold  float64
}

func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		VegThreshold:    0.3,
		UrbanThreshold:  0.0,
		ChangeThreshold: 0.15,
		WaterThreshold:  0.1,
	}
}

func (c ThresholdConfig) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"vegThreshold", c.VegThreshold},
		{"urbanThreshold", c.UrbanThreshold},
		{"changeThreshold", c.ChangeThreshold},
		{"waterThreshold", c.WaterThreshold},
	}
	for _, f := range fields {
		if !finite(f.value) {
			return &raster.InvalidConfigError{Field: f.name, Value: f.value, Reason: "must be finite"}
		}
	}
	if c.ChangeThreshold <= 0 {
		return &raster.InvalidConfigError{Field: "changeThreshold", Value: c.ChangeThreshold, Reason: "must be positive"}
	}
	return nil
}

func validateDifferenceThreshold(threshold float64) error {
	if !finite(threshold) || threshold <= 0 {
		return &raster.InvalidConfigError{Field: "threshold", Value: threshold, Reason: "must be a positive finite number"}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// exceeds reports delta > threshold with an open boundary.
func exceeds(delta, threshold float64) bool {
	return delta-threshold > boundaryTolerance
}
