package change

import (
	"math"

	"github.com/forest-guardian/landcover-change/internal/indexes"
	"github.com/forest-guardian/landcover-change/internal/raster"
)

// ClassStat is one row of a per-class summary.
type ClassStat struct {
	Method     string  `csv:"method"`
	Code       int     `csv:"code"`
	Class      string  `csv:"class"`
	Pixels     int     `csv:"pixels"`
	Percentage float64 `csv:"percentage"`
}

// Summarize counts pixels per legend class. Percentages are relative to valid pixels.
func Summarize(labels *LabelRaster) []ClassStat {
	counts := make(map[Label]int, len(labels.Legend))
	valid := 0
	for i, v := range labels.Data {
		if !labels.Valid(i) {
			continue
		}
		counts[v]++
		valid++
	}

	stats := make([]ClassStat, 0, len(labels.Legend))
	for _, entry := range labels.Legend {
		stat := ClassStat{
			Method: labels.Method,
			Code:   int(entry.Code),
			Class:  entry.Name,
			Pixels: counts[entry.Code],
		}
		if valid > 0 {
			stat.Percentage = 100 * float64(stat.Pixels) / float64(valid)
		}
		stats = append(stats, stat)
	}
	return stats
}

type DifferenceSummary struct {
	Threshold      float64 `csv:"threshold"`
	TotalPixels    int     `csv:"total_pixels"`
	LossPixels     int     `csv:"loss_pixels"`
	GainPixels     int     `csv:"gain_pixels"`
	NoChangePixels int     `csv:"no_change_pixels"`
	LossPct        float64 `csv:"loss_pct"`
	GainPct        float64 `csv:"gain_pct"`
	MeanDifference float64 `csv:"mean_difference"`
	StdDifference  float64 `csv:"std_difference"`
}

// SummarizeDifference reports the NDVI difference method: class counts and the
// mean and population standard deviation of the NDVI difference over valid pixels.
func SummarizeDifference(start, end indexes.IndexSet, labels *LabelRaster, threshold float64) (DifferenceSummary, error) {
	delta, err := DifferenceRaster(start, end, indexes.NDVI)
	if err != nil {
		return DifferenceSummary{}, err
	}
	if err := raster.CheckCoRegistered("labels", start.Grid, labels.Grid); err != nil {
		return DifferenceSummary{}, err
	}

	summary := DifferenceSummary{Threshold: threshold}
	var sum float64
	for i, v := range labels.Data {
		if !labels.Valid(i) {
			continue
		}
		summary.TotalPixels++
		switch v {
		case Loss:
			summary.LossPixels++
		case Gain:
			summary.GainPixels++
		default:
			summary.NoChangePixels++
		}
		sum += delta.Data[i]
	}
	if summary.TotalPixels == 0 {
		return summary, nil
	}

	n := float64(summary.TotalPixels)
	summary.LossPct = 100 * float64(summary.LossPixels) / n
	summary.GainPct = 100 * float64(summary.GainPixels) / n
	summary.MeanDifference = sum / n

	var squares float64
	for i := range labels.Data {
		if labels.Valid(i) {
			d := delta.Data[i] - summary.MeanDifference
			squares += d * d
		}
	}
	summary.StdDifference = math.Sqrt(squares / n)
	return summary, nil
}
