package zonal

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/forest-guardian/landcover-change/internal/raster"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// DefaultZoneCRS is assumed for GeoJSON layers without a "crs" member (RFC 7946).
const DefaultZoneCRS = "EPSG:4326"

type Zone struct {
	ID       string
	Geometry orb.Geometry
	Metadata map[string]interface{}
}

// ZoneLayer is a set of named polygons in one CRS. Zones may overlap.
type ZoneLayer struct {
	CRS   string
	Zones []Zone
}

type preparedZone struct {
	id       string
	bound    orb.Bound
	contains func(orb.Point) bool
}

func prepareZone(z Zone) (preparedZone, error) {
	if z.Geometry == nil {
		return preparedZone{}, &raster.GeometryError{ZoneID: z.ID, Reason: "missing geometry"}
	}

	var contains func(orb.Point) bool
	switch g := z.Geometry.(type) {
	case orb.Polygon:
		contains = func(p orb.Point) bool { return polygonContains(g, p) }
	case orb.MultiPolygon:
		contains = func(p orb.Point) bool {
			for _, poly := range g {
				if polygonContains(poly, p) {
					return true
				}
			}
			return false
		}
	default:
		return preparedZone{}, &raster.GeometryError{ZoneID: z.ID, Reason: fmt.Sprintf("unsupported geometry type %s", z.Geometry.GeoJSONType())}
	}

	area := math.Abs(planar.Area(z.Geometry))
	if area == 0 || math.IsNaN(area) {
		return preparedZone{}, &raster.GeometryError{ZoneID: z.ID, Reason: "zero area"}
	}
	return preparedZone{id: z.ID, bound: z.Geometry.Bound(), contains: contains}, nil
}

// polygonContains is a half-open point-in-polygon test: a point on an edge shared by
// two adjacent polygons belongs to exactly one of them, as with GDAL rasterization.
func polygonContains(poly orb.Polygon, p orb.Point) bool {
	if len(poly) == 0 || !ringContains(poly[0], p) {
		return false
	}
	for _, hole := range poly[1:] {
		if ringContains(hole, p) {
			return false
		}
	}
	return true
}

// ringContains counts crossings of a ray cast towards +x.
func ringContains(ring orb.Ring, p orb.Point) bool {
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a[1] > p[1]) == (b[1] > p[1]) {
			continue
		}
		x := a[0] + (p[1]-a[1])*(b[0]-a[0])/(b[1]-a[1])
		if p[0] < x {
			inside = !inside
		}
	}
	return inside
}

type crsMember struct {
	CRS *struct {
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
}

// LoadZones reads a GeoJSON FeatureCollection of polygons. The zone ID is taken from
// the idField property, then the feature id, then the feature position.
func LoadZones(path, idField string) (ZoneLayer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ZoneLayer{}, fmt.Errorf("failed to read zone layer: %w", err)
	}
	return ParseZones(data, idField)
}

func ParseZones(data []byte, idField string) (ZoneLayer, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return ZoneLayer{}, fmt.Errorf("failed to parse zone layer: %w", err)
	}

	layer := ZoneLayer{CRS: DefaultZoneCRS}
	var member crsMember
	if err := json.Unmarshal(data, &member); err == nil && member.CRS != nil && member.CRS.Properties.Name != "" {
		layer.CRS = member.CRS.Properties.Name
	}

	seen := make(map[string]bool, len(fc.Features))
	for i, feature := range fc.Features {
		id := zoneID(feature, idField, i)
		if seen[id] {
			return ZoneLayer{}, &raster.GeometryError{ZoneID: id, Reason: "duplicate zone id"}
		}
		seen[id] = true
		switch feature.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			return ZoneLayer{}, &raster.GeometryError{ZoneID: id, Reason: "zone geometry must be a Polygon or MultiPolygon"}
		}
		layer.Zones = append(layer.Zones, Zone{
			ID:       id,
			Geometry: feature.Geometry,
			Metadata: map[string]interface{}(feature.Properties),
		})
	}
	return layer, nil
}

func zoneID(feature *geojson.Feature, idField string, position int) string {
	if idField != "" {
		if v, ok := feature.Properties[idField]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	if feature.ID != nil {
		return fmt.Sprint(feature.ID)
	}
	return fmt.Sprintf("zone_%d", position)
}

// GridZones splits the raster extent into nx columns by ny rows of rectangular zones named Z<col><row>.
func GridZones(grid raster.Grid, nx, ny int) (ZoneLayer, error) {
	if nx < 1 || ny < 1 {
		return ZoneLayer{}, &raster.InvalidConfigError{Field: "zone grid", Value: fmt.Sprintf("%dx%d", nx, ny), Reason: "needs at least one column and one row"}
	}
	x0, y0 := grid.Corner(0, 0)
	x1, y1 := grid.Corner(grid.Cols, grid.Rows)
	minX, maxX := math.Min(x0, x1), math.Max(x0, x1)
	minY, maxY := math.Min(y0, y1), math.Max(y0, y1)
	dx := (maxX - minX) / float64(nx)
	dy := (maxY - minY) / float64(ny)

	layer := ZoneLayer{CRS: grid.CRS}
	for i := range nx {
		for j := range ny {
			b := orb.Bound{
				Min: orb.Point{minX + float64(i)*dx, minY + float64(j)*dy},
				Max: orb.Point{minX + float64(i+1)*dx, minY + float64(j+1)*dy},
			}
			layer.Zones = append(layer.Zones, Zone{
				ID:       fmt.Sprintf("Z%d%d", i, j),
				Geometry: b.ToPolygon(),
			})
		}
	}
	return layer, nil
}
