package ui

import (
	"fmt"

	"github.com/forest-guardian/landcover-change/internal/zonal"
)

// ListZones handles the UI for viewing the zones of a zone layer
func ListZones() {
	path, err := SelectZoneLayer()
	if err != nil {
		PrintError(err.Error())
		return
	}
	if path == "" {
		return
	}
	idField := ReadString("Enter the zone id property (empty for the feature id): ")

	layer, err := zonal.LoadZones(path, idField)
	if err != nil {
		PrintError(err.Error())
		return
	}

	fmt.Printf("\n%sZones (%s):%s\n", ColorGreen, layer.CRS, ColorReset)
	for _, zone := range layer.Zones {
		fmt.Printf("%s- %s (%s)%s\n", ColorGreen, zone.ID, zone.Geometry.GeoJSONType(), ColorReset)
	}
}
