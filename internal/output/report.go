package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/forest-guardian/landcover-change/internal/change"
	"github.com/forest-guardian/landcover-change/internal/raster"
)

// Comparison gathers what the method comparison report needs.
type Comparison struct {
	Start, End  string
	Thresholds  change.ThresholdConfig
	Difference  change.DifferenceSummary
	DiffClasses []change.ClassStat
	MultiIndex  []change.ClassStat
	// Agreement counts valid pixels per (difference class, multi-index class) pair.
	Agreement map[[2]string]int
}

// CrossTabulate counts co-located label pairs over pixels valid in both rasters.
func CrossTabulate(a, b *change.LabelRaster) (map[[2]string]int, error) {
	if err := raster.CheckCoRegistered("label rasters", a.Grid, b.Grid); err != nil {
		return nil, err
	}
	counts := make(map[[2]string]int)
	for i := range a.Data {
		if !a.Valid(i) || !b.Valid(i) {
			continue
		}
		counts[[2]string{a.Legend.Name(a.Data[i]), b.Legend.Name(b.Data[i])}]++
	}
	return counts, nil
}

func WriteComparisonReport(path string, c Comparison) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create result folder: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := RenderComparisonReport(file, c); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func RenderComparisonReport(w io.Writer, c Comparison) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Change detection method comparison\n\n")
	fmt.Fprintf(&b, "Period: %s to %s\n\n", c.Start, c.End)

	d := c.Difference
	fmt.Fprintf(&b, "## Method 1: NDVI difference\n\n")
	fmt.Fprintf(&b, "Threshold: %.2f (boundary counts as no change)\n\n", d.Threshold)
	fmt.Fprintf(&b, "- Valid pixels: %d\n", d.TotalPixels)
	fmt.Fprintf(&b, "- Loss pixels: %d (%.2f%%)\n", d.LossPixels, d.LossPct)
	fmt.Fprintf(&b, "- Gain pixels: %d (%.2f%%)\n", d.GainPixels, d.GainPct)
	fmt.Fprintf(&b, "- Mean NDVI difference: %.4f ± %.4f\n\n", d.MeanDifference, d.StdDifference)
	writeClassTable(&b, c.DiffClasses)

	t := c.Thresholds
	fmt.Fprintf(&b, "## Method 2: multi-index rules\n\n")
	fmt.Fprintf(&b, "Thresholds: vegetation %.2f, urban %.2f, change %.2f, water %.2f\n\n",
		t.VegThreshold, t.UrbanThreshold, t.ChangeThreshold, t.WaterThreshold)
	writeClassTable(&b, c.MultiIndex)

	if len(c.Agreement) > 0 {
		fmt.Fprintf(&b, "## Agreement\n\n")
		fmt.Fprintf(&b, "| Difference class | Multi-index class | Pixels |\n|---|---|---:|\n")
		for _, diff := range c.DiffClasses {
			for _, multi := range c.MultiIndex {
				if n := c.Agreement[[2]string{diff.Class, multi.Class}]; n > 0 {
					fmt.Fprintf(&b, "| %s | %s | %d |\n", diff.Class, multi.Class, n)
				}
			}
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeClassTable(b *strings.Builder, stats []change.ClassStat) {
	b.WriteString("| Code | Class | Pixels | % |\n|---:|---|---:|---:|\n")
	for _, s := range stats {
		fmt.Fprintf(b, "| %d | %s | %d | %.2f |\n", s.Code, s.Class, s.Pixels, s.Percentage)
	}
	b.WriteString("\n")
}
