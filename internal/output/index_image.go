package output

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/forest-guardian/landcover-change/internal/raster"
)

func normalize(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	norm := (value - min) / (max - min)
	if norm < 0 {
		return 0
	}
	if norm > 1 {
		return 1
	}
	return norm
}

// valueToColor ramps blue -> green -> red over [0, 1].
func valueToColor(norm float64) color.NRGBA {
	var r, g, b uint8
	if norm <= 0.5 {
		ratio := norm / 0.5
		g = uint8(255 * ratio)
		b = uint8(255 * (1 - ratio))
	} else {
		ratio := (norm - 0.5) / 0.5
		r = uint8(255 * ratio)
		g = uint8(255 * (1 - ratio))
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// RenderIndex colors an index raster over [min, max]; nodata pixels are transparent.
func RenderIndex(r *raster.Raster, min, max float64) image.Image {
	dc := gg.NewContext(r.Cols, r.Rows)
	for y := range r.Rows {
		for x := range r.Cols {
			i := r.Index(x, y)
			if !r.Valid(i) {
				continue
			}
			c := valueToColor(normalize(r.Data[i], min, max))
			dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
			dc.SetPixel(x, y)
		}
	}
	return dc.Image()
}

func SaveIndexPNG(r *raster.Raster, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create result folder: %w", err)
	}
	if err := gg.SavePNG(path, RenderIndex(r, -1, 1)); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
