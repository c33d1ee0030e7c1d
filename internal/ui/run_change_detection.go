package ui

import (
	"fmt"
	"strings"

	"github.com/forest-guardian/landcover-change/internal/delivery"
	"github.com/forest-guardian/landcover-change/internal/properties"
)

// RunChangeDetection handles the UI for a change detection run
func RunChangeDetection() {
	PrintWarning("Scenes are read from 'data/scenes' and must be named YYYYMMDD*.tif.\nBands are matched by description, or assumed to be blue, green, red, nir, swir1.")

	start, err := ReadOptionalDate("Enter the start date (YYYY-MM-DD, empty for the first scene): ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	end, err := ReadOptionalDate("Enter the end date (YYYY-MM-DD, empty for the last scene): ")
	if err != nil {
		PrintError(err.Error())
		return
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		PrintError("the end date must not be before the start date")
		return
	}

	zonesPath, err := SelectZoneLayer()
	if err != nil {
		PrintError(err.Error())
		return
	}
	var idField string
	if zonesPath != "" {
		idField = ReadString("Enter the zone id property (empty for the feature id): ")
	}
	requested := ReadIndexNames("Enter the indices to compute (NDVI,NDBI,NDWI,BSI; empty for all): ")

	result, err := delivery.RunChangeDetection(delivery.Request{
		ScenesDir:   properties.ScenesPath(),
		ZonesPath:   zonesPath,
		ZoneIDField: idField,
		Start:       start,
		End:         end,
		Requested:   requested,
	}, delivery.ConfigFromEnv())
	if err != nil {
		PrintError(fmt.Sprintf("Error detecting change: %s", err.Error()))
		return
	}

	s := result.Analysis.DifferenceSummary
	var b strings.Builder
	fmt.Fprintf(&b, "Successful analysis!\n")
	fmt.Fprintf(&b, "Vegetation loss: %d pixels (%.2f%%)\n", s.LossPixels, s.LossPct)
	fmt.Fprintf(&b, "Vegetation gain: %d pixels (%.2f%%)\n", s.GainPixels, s.GainPct)
	fmt.Fprintf(&b, "Results located at: %s", result.OutputDir)
	PrintSuccess(b.String())
}
