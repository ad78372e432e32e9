package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/landwatch/landwatch-api-poc/internal/change"
	"github.com/landwatch/landwatch-api-poc/internal/wards"
	"github.com/paulmach/orb/geojson"
)

// CreateWardGeoJson writes the ward polygons annotated with their computed
// change statistics, ready to feed a map layer. wardList and zones must be
// aligned (zones[i] was computed for wardList[i]).
func CreateWardGeoJson(wardList []wards.Ward, zones []change.ZoneStats, outputPath string) error {
	if len(wardList) != len(zones) {
		return fmt.Errorf("ward list and zone statistics are misaligned: %d vs %d", len(wardList), len(zones))
	}

	collection := geojson.NewFeatureCollection()
	for i, ward := range wardList {
		feature := geojson.NewFeature(ward.Geometry)
		feature.Properties = geojson.Properties{
			"ward":                ward.Name,
			"zone":                ward.Zone,
			"area_sqkm":           ward.AreaSqKm,
			"vegetation_loss_pct": zones[i].LossPct,
			"vegetation_gain_pct": zones[i].GainPct,
			"urban_growth_pct":    zones[i].GrowthPct,
			"pixels":              zones[i].Pixels,
		}
		collection.Append(feature)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create GeoJSON file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(collection); err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %v", err)
	}
	return nil
}
