package properties

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/landwatch/landwatch-api-poc/internal/raster"
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

// StacAPIURL is the catalog endpoint searched for Sentinel-2 scenes.
func StacAPIURL() string {
	if url := os.Getenv("STAC_API_URL"); url != "" {
		return url
	}
	return "https://planetarycomputer.microsoft.com/api/stac/v1"
}

// SasTokenURL is the signing endpoint that turns restricted asset hrefs into
// directly fetchable URLs.
func SasTokenURL() string {
	if url := os.Getenv("SAS_TOKEN_URL"); url != "" {
		return url
	}
	return "https://planetarycomputer.microsoft.com/api/sas/v1"
}

// Optional OAuth2 client-credentials for catalogs that require it. All three
// must be set together.
func CatalogClientID() string {
	return os.Getenv("CATALOG_CLIENT_ID")
}
func CatalogClientSecret() string {
	return os.Getenv("CATALOG_CLIENT_SECRET")
}
func CatalogTokenURL() string {
	return os.Getenv("CATALOG_TOKEN_URL")
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}
func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}
func DiscordWarnNotificationUrl() string {
	return os.Getenv("DISCORD_WARN_NOTIFICATION_URL")
}

type Color struct {
	R, G, B uint8
}

// ColorMap assigns a render color to each change class.
var ColorMap = map[string]Color{
	"loss":    {211, 47, 47},
	"gain":    {56, 142, 60},
	"growth":  {245, 124, 0},
	"stable":  {189, 189, 189},
	"unknown": {255, 0, 0},
}

// City is one analyzable region: a bounding box plus an optional ward
// boundary file under data/boundaries.
type City struct {
	Name     string
	BBox     raster.BoundingBox
	WardFile string
}

var cities = map[string]City{
	"chennai":   {Name: "Chennai", BBox: raster.NewBoundingBox(80.20, 12.90, 80.35, 13.15)},
	"mumbai":    {Name: "Mumbai", BBox: raster.NewBoundingBox(72.77, 18.89, 72.99, 19.27)},
	"delhi":     {Name: "Delhi", BBox: raster.NewBoundingBox(76.84, 28.40, 77.35, 28.88)},
	"bengaluru": {Name: "Bengaluru", BBox: raster.NewBoundingBox(77.46, 12.83, 77.74, 13.14)},
	"hyderabad": {Name: "Hyderabad", BBox: raster.NewBoundingBox(78.24, 17.25, 78.62, 17.56)},
	"kolkata":   {Name: "Kolkata", BBox: raster.NewBoundingBox(88.24, 22.45, 88.45, 22.70)},
	"pune":      {Name: "Pune", BBox: raster.NewBoundingBox(73.74, 18.44, 73.98, 18.64)},
	"ahmedabad": {Name: "Ahmedabad", BBox: raster.NewBoundingBox(72.45, 22.93, 72.70, 23.13)},
}

func CityByName(name string) (City, error) {
	city, ok := cities[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return City{}, fmt.Errorf("unknown city %q, available cities: %s", name, strings.Join(AvailableCities(), ", "))
	}
	if city.WardFile == "" {
		wardFile := filepath.Join(RootPath(), "data", "boundaries", strings.ToLower(city.Name)+".geojson")
		if _, err := os.Stat(wardFile); err == nil {
			city.WardFile = wardFile
		}
	}
	return city, nil
}

func AvailableCities() []string {
	names := make([]string, 0, len(cities))
	for key := range cities {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}
