package delivery

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forest-guardian/landcover-change/internal/change"
	"github.com/forest-guardian/landcover-change/internal/indexes"
	"github.com/forest-guardian/landcover-change/internal/output"
	"github.com/forest-guardian/landcover-change/internal/sentinel"
	"github.com/forest-guardian/landcover-change/internal/zonal"
)

// writeResults writes every product into <resultDir>/<start>_<end>. Files go to a
// sibling ".partial" folder first, which replaces the final folder only when all writes succeed.
func writeResults(resultDir string, a *Analysis) (string, []string, error) {
	name := fmt.Sprintf("%s_%s", a.Start.Date.Format(time.DateOnly), a.End.Date.Format(time.DateOnly))
	outDir := filepath.Join(resultDir, name)
	tmpDir := outDir + ".partial"
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", nil, fmt.Errorf("failed to clear %s: %w", tmpDir, err)
	}

	files, err := writeProducts(tmpDir, a)
	if err != nil {
		os.RemoveAll(tmpDir)
		return "", nil, err
	}

	if err := os.RemoveAll(outDir); err != nil {
		os.RemoveAll(tmpDir)
		return "", nil, fmt.Errorf("failed to replace %s: %w", outDir, err)
	}
	if err := os.Rename(tmpDir, outDir); err != nil {
		os.RemoveAll(tmpDir)
		return "", nil, fmt.Errorf("failed to publish results: %w", err)
	}

	for i, f := range files {
		files[i] = filepath.Join(outDir, f)
	}
	return outDir, files, nil
}

// writeProducts returns the written paths relative to dir.
func writeProducts(dir string, a *Analysis) ([]string, error) {
	var files []string
	for _, set := range []indexes.IndexSet{a.Start, a.End} {
		paths, err := sentinel.WriteIndexSet(filepath.Join(dir, "indices"), set)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return nil, err
			}
			files = append(files, rel)
		}
	}

	steps := []struct {
		rel   string
		write func(path string) error
	}{
		{"change_difference.tif", func(p string) error { return sentinel.WriteLabels(p, a.Difference) }},
		{"change_multi_index.tif", func(p string) error { return sentinel.WriteLabels(p, a.MultiIndex) }},
		{"ndvi_change.tif", func(p string) error { return sentinel.WriteRaster(p, a.NDVIChange, "NDVI change") }},
		{"change_difference.png", func(p string) error { return output.SaveLabelsPNG(a.Difference, 1, p) }},
		{"change_multi_index.png", func(p string) error { return output.SaveLabelsPNG(a.MultiIndex, 1, p) }},
		{"ndvi_start.png", func(p string) error { return output.SaveIndexPNG(a.Start.Layers[indexes.NDVI], p) }},
		{"ndvi_end.png", func(p string) error { return output.SaveIndexPNG(a.End.Layers[indexes.NDVI], p) }},
		{"difference_summary.csv", func(p string) error {
			return output.WriteCSV(p, []change.DifferenceSummary{a.DifferenceSummary})
		}},
		{"classes_difference.csv", func(p string) error { return output.WriteCSV(p, a.DifferenceClasses) }},
		{"classes_multi_index.csv", func(p string) error { return output.WriteCSV(p, a.MultiIndexClasses) }},
		{"zonal_difference.csv", func(p string) error { return output.WriteCSV(p, a.DifferenceByZone) }},
		{"zonal_multi_index.csv", func(p string) error { return output.WriteCSV(p, a.MultiIndexByZone) }},
		{"zonal_ndvi_change.csv", func(p string) error { return output.WriteCSV(p, a.NDVIChangeByZone) }},
		{"temporal_series.csv", func(p string) error { return output.WriteCSV(p, []zonal.TemporalPoint(a.Temporal)) }},
		{"cover_shares.csv", func(p string) error { return output.WriteCSV(p, a.CoverShares) }},
		{"method_comparison.md", func(p string) error {
			return output.WriteComparisonReport(p, output.Comparison{
				Start:       a.Start.Date.Format(time.DateOnly),
				End:         a.End.Date.Format(time.DateOnly),
				Thresholds:  a.Thresholds,
				Difference:  a.DifferenceSummary,
				DiffClasses: a.DifferenceClasses,
				MultiIndex:  a.MultiIndexClasses,
				Agreement:   a.Agreement,
			})
		}},
	}
	for _, step := range steps {
		if err := step.write(filepath.Join(dir, step.rel)); err != nil {
			return nil, err
		}
		files = append(files, step.rel)
	}
	return files, nil
}
