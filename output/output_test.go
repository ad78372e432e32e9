package output

import (
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/landwatch/landwatch-api-poc/internal/change"
	"github.com/landwatch/landwatch-api-poc/internal/raster"
	"github.com/landwatch/landwatch-api-poc/internal/wards"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleZones() []change.ZoneStats {
	return []change.ZoneStats{
		{Ward: "Adyar", Zone: "South", LossPct: 12.5, GainPct: 3.0, GrowthPct: 8.75, Pixels: 2500},
		{Ward: "Anna Nagar", Zone: "West", LossPct: 4.0, GainPct: 9.5, GrowthPct: 1.25, Pixels: 1800},
	}
}

func samplePolygon() orb.Polygon {
	return orb.Polygon{{{80.24, 13.00}, {80.26, 13.00}, {80.26, 13.02}, {80.24, 13.02}, {80.24, 13.00}}}
}

func TestCreateZoneSummaryCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wards.csv")
	require.NoError(t, CreateZoneSummaryCSV(sampleZones(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3) // header + 2 rows
	assert.Contains(t, lines[0], "vegetation_loss_pct")
	assert.Contains(t, lines[1], "Adyar")
	assert.Contains(t, lines[1], "12.5")
}

func TestCreateZoneSummaryCSVEmpty(t *testing.T) {
	err := CreateZoneSummaryCSV(nil, filepath.Join(t.TempDir(), "wards.csv"))
	require.Error(t, err)
}

func TestCreateWardGeoJson(t *testing.T) {
	wardList := []wards.Ward{
		{Name: "Adyar", Zone: "South", Geometry: samplePolygon()},
		{Name: "Anna Nagar", Zone: "West", Geometry: samplePolygon()},
	}

	path := filepath.Join(t.TempDir(), "wards.geojson")
	require.NoError(t, CreateWardGeoJson(wardList, sampleZones(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	collection, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, collection.Features, 2)

	props := collection.Features[0].Properties
	assert.Equal(t, "Adyar", props.MustString("ward"))
	assert.InDelta(t, 12.5, props["vegetation_loss_pct"].(float64), 1e-9)
	assert.InDelta(t, 8.75, props["urban_growth_pct"].(float64), 1e-9)
}

func TestCreateWardGeoJsonMisaligned(t *testing.T) {
	err := CreateWardGeoJson([]wards.Ward{{Name: "Adyar"}}, sampleZones(), filepath.Join(t.TempDir(), "w.geojson"))
	require.Error(t, err)
}

func TestCreateWardGeoJsonIsValidJSON(t *testing.T) {
	wardList := []wards.Ward{{Name: "Adyar", Geometry: samplePolygon()}}
	path := filepath.Join(t.TempDir(), "wards.geojson")
	require.NoError(t, CreateWardGeoJson(wardList, sampleZones()[:1], path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var anything map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &anything))
	assert.Equal(t, "FeatureCollection", anything["type"])
}

func TestCreateChangeImage(t *testing.T) {
	changeRaster := raster.New(10, 8)
	changeRaster[0][0] = -0.6 // saturated loss
	changeRaster[5][5] = 0.6  // saturated gain

	path := filepath.Join(t.TempDir(), "change.png")
	require.NoError(t, CreateChangeImage(changeRaster, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
}

func TestCreateChangeImageEmptyRaster(t *testing.T) {
	err := CreateChangeImage(raster.Raster{}, filepath.Join(t.TempDir(), "change.png"))
	require.Error(t, err)
}

func TestCreateClassMapImage(t *testing.T) {
	veg := raster.Raster{
		{-0.5, 0.5},
		{0.0, 0.0},
	}
	urban := raster.Raster{
		{0.0, 0.0},
		{0.5, 0.0},
	}

	path := filepath.Join(t.TempDir(), "classes.png")
	require.NoError(t, CreateClassMapImage(veg, urban, change.DefaultThresholds(), path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	img, err := png.Decode(file)
	require.NoError(t, err)

	lossR, _, _, _ := img.At(0, 0).RGBA()
	gainR, gainG, _, _ := img.At(1, 0).RGBA()
	assert.Greater(t, lossR>>8, uint32(200)) // loss renders red-dominant
	assert.Greater(t, gainG>>8, gainR>>8)    // gain renders green-dominant
}
