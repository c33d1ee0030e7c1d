package output

import (
	"bytes"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/forest-guardian/landcover-change/internal/change"
	"github.com/forest-guardian/landcover-change/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoByTwo() raster.Grid {
	return raster.Grid{Rows: 2, Cols: 2, Transform: raster.GeoTransform{0, 10, 0, 20, 0, -10}, CRS: "EPSG:32718"}
}

func differenceLabels(data ...change.Label) *change.LabelRaster {
	return &change.LabelRaster{Grid: twoByTwo(), Method: change.MethodDifference, Data: data, Legend: change.DifferenceLegend}
}

func TestCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "classes.csv")
	rows := change.Summarize(differenceLabels(change.Loss, change.Loss, change.Gain, change.NoDataLabel))

	require.NoError(t, WriteCSV(path, rows))
	got, err := ReadCSV[change.ClassStat](path)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "vegetation-loss", got[0].Class)
	assert.Equal(t, 2, got[0].Pixels)
	assert.InDelta(t, 200.0/3, got[0].Percentage, 1e-9)
}

func TestRenderLabels(t *testing.T) {
	labels := differenceLabels(change.Loss, change.Gain, change.NoDataLabel, change.NoChange)

	img, err := RenderLabels(labels, 4)
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, legendWidth, b.Dx())
	assert.Equal(t, 8+10+legendRowHeight*3, b.Dy())

	assert.Equal(t, color.RGBA{255, 100, 100, 255}, color.RGBAModel.Convert(img.At(1, 1)))
	assert.Equal(t, color.RGBA{100, 255, 100, 255}, color.RGBAModel.Convert(img.At(5, 2)))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, color.RGBAModel.Convert(img.At(2, 6)), "nodata stays white")

	_, err = RenderLabels(labels, 0)
	assert.Error(t, err)
}

func TestRenderIndex(t *testing.T) {
	r, err := raster.FromValues(twoByTwo(), -9999, []float64{-1, 0, 1, -9999})
	require.NoError(t, err)

	img := RenderIndex(r, -1, 1)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, color.RGBAModel.Convert(img.At(0, 0)))
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, color.RGBAModel.Convert(img.At(1, 0)))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, color.RGBAModel.Convert(img.At(0, 1)))
	_, _, _, a := img.At(1, 1).RGBA()
	assert.Zero(t, a)
}

func TestComparisonReport(t *testing.T) {
	diff := differenceLabels(change.Loss, change.Loss, change.Gain, change.NoChange)
	multi := &change.LabelRaster{
		Grid:   twoByTwo(),
		Method: change.MethodMultiIndex,
		Data:   []change.Label{change.Urbanization, change.VegetationLoss, change.VegetationGain, change.NoDataLabel},
		Legend: change.MultiIndexLegend,
	}

	agreement, err := CrossTabulate(diff, multi)
	require.NoError(t, err)
	assert.Equal(t, 1, agreement[[2]string{"vegetation-loss", "urbanization"}])
	assert.Equal(t, 1, agreement[[2]string{"vegetation-gain", "vegetation-gain"}])
	assert.Len(t, agreement, 3)

	var buf bytes.Buffer
	err = RenderComparisonReport(&buf, Comparison{
		Start:       "2020-01-15",
		End:         "2024-01-20",
		Thresholds:  change.DefaultThresholds(),
		Difference:  change.DifferenceSummary{Threshold: 0.15, TotalPixels: 4, LossPixels: 2, LossPct: 50},
		DiffClasses: change.Summarize(diff),
		MultiIndex:  change.Summarize(multi),
		Agreement:   agreement,
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Period: 2020-01-15 to 2024-01-20")
	assert.Contains(t, out, "- Loss pixels: 2 (50.00%)")
	assert.Contains(t, out, "| 1 | urbanization | 1 | 33.33 |")
	assert.Contains(t, out, "| vegetation-loss | urbanization | 1 |")

	other := differenceLabels(change.Loss)
	other.Grid = raster.Grid{Rows: 1, Cols: 1, CRS: "EPSG:32718"}
	_, err = CrossTabulate(diff, other)
	assert.ErrorIs(t, err, raster.ErrGridMismatch)
}
