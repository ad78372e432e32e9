package change

import (
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/landwatch/landwatch-api-poc/internal/raster"
	"github.com/landwatch/landwatch-api-poc/internal/wards"
	"github.com/schollz/progressbar/v3"
)

// ZoneStats is the per-ward summary row exported to CSV and GeoJSON.
type ZoneStats struct {
	Ward      string  `json:"ward" csv:"ward"`
	Zone      string  `json:"zone" csv:"zone"`
	AreaSqKm  float64 `json:"area_sqkm" csv:"area_sqkm"`
	LossPct   float64 `json:"vegetation_loss_pct" csv:"vegetation_loss_pct"`
	GainPct   float64 `json:"vegetation_gain_pct" csv:"vegetation_gain_pct"`
	GrowthPct float64 `json:"urban_growth_pct" csv:"urban_growth_pct"`
	Pixels    int     `json:"pixels" csv:"pixels"`
}

const zoneWorkers = 16

// AggregateZones computes loss/gain/growth percentages per ward over the
// ward's bounding rectangle mapped into raster pixel space against the overall
// query bounding box. Pixels inside the rectangle but outside the polygon are
// counted; this mirrors the original dashboards. Each ward is independent and
// pure, so they run on a bounded pool; results keep the input ward order.
func AggregateZones(vegChange, urbanChange raster.Raster, bbox raster.BoundingBox, list []wards.Ward, t Thresholds) []ZoneStats {
	results := make([]ZoneStats, len(list))
	rows, cols := vegChange.Rows(), vegChange.Cols()

	var (
		mu          sync.Mutex
		progressBar = progressbar.Default(int64(len(list)), "Aggregating wards")
	)

	wp := workerpool.New(zoneWorkers)
	for i, ward := range list {
		i, ward := i, ward
		wp.Submit(func() {
			window := bbox.WindowFor(ward.Bound, rows, cols)
			stats := ClassifyWindow(vegChange, urbanChange, window, t)
			results[i] = ZoneStats{
				Ward:      ward.Name,
				Zone:      ward.Zone,
				AreaSqKm:  ward.AreaSqKm,
				LossPct:   stats.LossPct,
				GainPct:   stats.GainPct,
				GrowthPct: stats.GrowthPct,
				Pixels:    stats.TotalPixels,
			}
			mu.Lock()
			progressBar.Add(1)
			mu.Unlock()
		})
	}
	wp.StopWait()

	return results
}
