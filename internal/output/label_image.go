package output

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/forest-guardian/landcover-change/internal/change"
)

const (
	legendRowHeight = 20
	legendWidth     = 160
	legendBox       = 15
)

// RenderLabels draws every label as a cell x cell block in its legend color, with the
// legend below the map. Nodata cells stay white.
func RenderLabels(labels *change.LabelRaster, cell int) (image.Image, error) {
	if cell < 1 {
		return nil, fmt.Errorf("cell size must be positive, got %d", cell)
	}
	mapW, mapH := labels.Cols*cell, labels.Rows*cell
	width := max(mapW, legendWidth)
	height := mapH + 10 + legendRowHeight*len(labels.Legend)

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for y := range labels.Rows {
		for x := range labels.Cols {
			code := labels.At(x, y)
			if code == change.NoDataLabel {
				continue
			}
			c := labels.Legend.Color(code)
			dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
			for dy := range cell {
				for dx := range cell {
					dc.SetPixel(x*cell+dx, y*cell+dy)
				}
			}
		}
	}

	legendY := mapH + 10
	for i, entry := range labels.Legend {
		y := float64(legendY + i*legendRowHeight)
		c := entry.Color
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
		dc.DrawRectangle(10, y, legendBox, legendBox)
		dc.Fill()

		dc.SetRGB(0, 0, 0)
		dc.DrawRectangle(10, y, legendBox, legendBox)
		dc.SetLineWidth(1)
		dc.Stroke()
		dc.DrawStringAnchored(entry.Name, 10+legendBox+5, y+legendBox/2, 0, 0.5)
	}
	return dc.Image(), nil
}

func SaveLabelsPNG(labels *change.LabelRaster, cell int, path string) error {
	img, err := RenderLabels(labels, cell)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create result folder: %w", err)
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
