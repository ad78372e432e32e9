package wards

import (
	"fmt"
	"os"

	"github.com/landwatch/landwatch-api-poc/internal/raster"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Boundary files come from different municipal sources; each uses its own
// property names, so every field is looked up under several candidate keys.
var (
	nameKeys = []string{"ward_name", "WARD_NAME", "Ward_Name", "ward", "WARD", "name", "Name", "NAME"}
	zoneKeys = []string{"zone_name", "ZONE_NAME", "zone", "ZONE", "Zone"}
	areaKeys = []string{"area_sqkm", "AREA_SQKM", "area", "AREA", "Shape_Area"}
)

// Ward is one administrative polygon. Bound is its bounding rectangle; zone
// statistics aggregate over that rectangle, not the exact polygon footprint,
// so the original polygon is kept for later refinement.
type Ward struct {
	Name     string
	Zone     string
	AreaSqKm float64
	Geometry orb.Geometry
	Bound    raster.BoundingBox
	Feature  *geojson.Feature
}

// Load reads a GeoJSON FeatureCollection of ward polygons.
func Load(path string) ([]Ward, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read boundary file %s: %v", path, err)
	}

	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse boundary file %s: %v", path, err)
	}

	list := make([]Ward, 0, len(collection.Features))
	for _, feature := range collection.Features {
		if feature.Geometry == nil {
			continue
		}
		bound := feature.Geometry.Bound()
		list = append(list, Ward{
			Name:     stringProperty(feature.Properties, nameKeys...),
			Zone:     stringProperty(feature.Properties, zoneKeys...),
			AreaSqKm: floatProperty(feature.Properties, areaKeys...),
			Geometry: feature.Geometry,
			Bound:    raster.NewBoundingBox(bound.Min.X(), bound.Min.Y(), bound.Max.X(), bound.Max.Y()),
			Feature:  feature,
		})
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("boundary file %s contains no polygon features", path)
	}
	return list, nil
}

// Centroid returns the ward's centroid as (latitude, longitude).
func (w Ward) Centroid() (float64, float64, error) {
	centroid, area := planar.CentroidArea(w.Geometry)
	if area <= 0 {
		return 0, 0, fmt.Errorf("ward %s has a degenerate geometry", w.Name)
	}
	return centroid.Y(), centroid.X(), nil
}

func stringProperty(props geojson.Properties, keys ...string) string {
	for _, key := range keys {
		if value, ok := props[key]; ok {
			if s, ok := value.(string); ok && s != "" {
				return s
			}
		}
	}
	return "unknown"
}

func floatProperty(props geojson.Properties, keys ...string) float64 {
	for _, key := range keys {
		if value, ok := props[key]; ok {
			switch v := value.(type) {
			case float64:
				return v
			case int:
				return float64(v)
			}
		}
	}
	return 0
}
