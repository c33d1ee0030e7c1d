package change

import (
	"image/color"

	"github.com/forest-guardian/landcover-change/internal/raster"
)

// Label is an integer-coded change class.
type Label int8

// NoDataLabel marks pixels where a classifier could not decide.
const NoDataLabel Label = -128

// Difference method classes.
const (
	Loss     Label = -1
	NoChange Label = 0
	Gain     Label = 1
)

// Multi-index method classes.
const (
	Unchanged      Label = 0
	Urbanization   Label = 1
	VegetationLoss Label = 2
	VegetationGain Label = 3
	NewWater       Label = 4
	WaterLoss      Label = 5
)

const (
	MethodDifference = "difference"
	MethodMultiIndex = "multi-index"
)

// LegendEntry colors are straight alpha, not premultiplied.
type LegendEntry struct {
	Code  Label
	Name  string
	Color color.RGBA
}

// Legend maps codes to class names, ordered by code.
type Legend []LegendEntry

func (l Legend) Name(code Label) string {
	for _, e := range l {
		if e.Code == code {
			return e.Name
		}
	}
	if code == NoDataLabel {
		return "nodata"
	}
	return "unknown"
}

func (l Legend) Color(code Label) color.RGBA {
	for _, e := range l {
		if e.Code == code {
			return e.Color
		}
	}
	return color.RGBA{}
}

var DifferenceLegend = Legend{
	{Code: Loss, Name: "vegetation-loss", Color: color.RGBA{255, 100, 100, 255}},
	{Code: NoChange, Name: "no-change", Color: color.RGBA{200, 200, 200, 128}},
	{Code: Gain, Name: "vegetation-gain", Color: color.RGBA{100, 255, 100, 255}},
}

var MultiIndexLegend = Legend{
	{Code: Unchanged, Name: "no-change", Color: color.RGBA{0, 0, 0, 0}},
	{Code: Urbanization, Name: "urbanization", Color: color.RGBA{255, 0, 0, 255}},
	{Code: VegetationLoss, Name: "vegetation-loss", Color: color.RGBA{255, 165, 0, 255}},
	{Code: VegetationGain, Name: "vegetation-gain", Color: color.RGBA{0, 255, 0, 255}},
	{Code: NewWater, Name: "new-water", Color: color.RGBA{0, 0, 255, 255}},
	{Code: WaterLoss, Name: "water-loss", Color: color.RGBA{0, 255, 255, 255}},
}

// LabelRaster is the output of a classifier: one code per pixel plus its legend.
type LabelRaster struct {
	raster.Grid
	Method string
	Data   []Label
	Legend Legend
}

func newLabelRaster(grid raster.Grid, method string, legend Legend) *LabelRaster {
	data := make([]Label, grid.Size())
	for i := range data {
		data[i] = NoDataLabel
	}
	return &LabelRaster{Grid: grid, Method: method, Data: data, Legend: legend}
}

func (l *LabelRaster) Valid(i int) bool {
	return l.Data[i] != NoDataLabel
}

func (l *LabelRaster) At(x, y int) Label {
	return l.Data[y*l.Cols+x]
}
