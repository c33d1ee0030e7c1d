package sentinel

import (
	"strings"

	"github.com/forest-guardian/landcover-change/internal/indexes"
)

// bandAliases maps band descriptions, including Sentinel-2 band ids, to spectral bands.
var bandAliases = map[string]indexes.Band{
	"blue":  indexes.Blue,
	"b02":   indexes.Blue,
	"b2":    indexes.Blue,
	"green": indexes.Green,
	"b03":   indexes.Green,
	"b3":    indexes.Green,
	"red":   indexes.Red,
	"b04":   indexes.Red,
	"b4":    indexes.Red,
	"nir":   indexes.NIR,
	"b08":   indexes.NIR,
	"b8":    indexes.NIR,
	"swir1": indexes.SWIR1,
	"swir":  indexes.SWIR1,
	"b11":   indexes.SWIR1,
}

// ResolveBandOrder names the bands of a scene from their descriptions. When any description
// is missing or unknown, the scene is assumed to follow DefaultBandOrder.
func ResolveBandOrder(descriptions []string) []indexes.Band {
	order := make([]indexes.Band, 0, len(descriptions))
	seen := make(map[indexes.Band]bool, len(descriptions))
	for _, d := range descriptions {
		band, ok := bandAliases[strings.ToLower(strings.TrimSpace(d))]
		if !ok || seen[band] {
			return defaultOrder(len(descriptions))
		}
		seen[band] = true
		order = append(order, band)
	}
	return order
}

func defaultOrder(n int) []indexes.Band {
	if n > len(indexes.DefaultBandOrder) {
		n = len(indexes.DefaultBandOrder)
	}
	return indexes.DefaultBandOrder[:n]
}
