package change

import (
	"fmt"

	"github.com/landwatch/landwatch-api-poc/internal/raster"
)

// Thresholds classify index change magnitudes. Defaults follow the original
// dashboards; user-tunable variants accept [0.1, 0.4].
type Thresholds struct {
	Vegetation float64 `json:"vegetation"`
	Urban      float64 `json:"urban"`
}

const (
	DefaultThreshold = 0.2
	minThreshold     = 0.1
	maxThreshold     = 0.4
)

func DefaultThresholds() Thresholds {
	return Thresholds{Vegetation: DefaultThreshold, Urban: DefaultThreshold}
}

func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{"vegetation": t.Vegetation, "urban": t.Urban} {
		if v < minThreshold || v > maxThreshold {
			return fmt.Errorf("%s threshold %.2f out of range [%.1f, %.1f]", name, v, minThreshold, maxThreshold)
		}
	}
	return nil
}

// Compute subtracts the before raster from the after raster. Shape
// mismatch is resolved by cropping to the smaller shape, not treated as an
// error.
func Compute(before, after raster.Raster) raster.Raster {
	return raster.Subtract(after, before)
}

// Stats are loss/gain/growth percentages over one raster region. Percentages
// are count/total*100; an empty region yields 0.0 everywhere rather than an
// error.
type Stats struct {
	TotalPixels  int     `json:"total_pixels"`
	LossPixels   int     `json:"loss_pixels"`
	GainPixels   int     `json:"gain_pixels"`
	GrowthPixels int     `json:"growth_pixels"`
	StablePixels int     `json:"stable_pixels"`
	LossPct      float64 `json:"loss_pct"`
	GainPct      float64 `json:"gain_pct"`
	GrowthPct    float64 `json:"growth_pct"`
}

// Classify counts vegetation loss (change < -Tveg), vegetation gain
// (change > Tveg) and urban growth (urban change > Turb) over whole rasters.
// The urban raster may be nil when a variant computes NDVI only.
func Classify(vegChange, urbanChange raster.Raster, t Thresholds) Stats {
	window := raster.Window{Row1: vegChange.Rows(), Col1: vegChange.Cols()}
	return ClassifyWindow(vegChange, urbanChange, window, t)
}

// ClassifyWindow computes the same statistics over a pixel sub-window only.
// The window is assumed to be clamped to the raster bounds already.
func ClassifyWindow(vegChange, urbanChange raster.Raster, w raster.Window, t Thresholds) Stats {
	var s Stats
	for y := w.Row0; y < w.Row1; y++ {
		for x := w.Col0; x < w.Col1; x++ {
			s.TotalPixels++
			delta := vegChange[y][x]
			switch {
			case delta < -t.Vegetation:
				s.LossPixels++
			case delta > t.Vegetation:
				s.GainPixels++
			default:
				s.StablePixels++
			}
			if urbanChange != nil && y < urbanChange.Rows() && x < urbanChange.Cols() {
				if urbanChange[y][x] > t.Urban {
					s.GrowthPixels++
				}
			}
		}
	}

	if s.TotalPixels > 0 {
		s.LossPct = float64(s.LossPixels) / float64(s.TotalPixels) * 100
		s.GainPct = float64(s.GainPixels) / float64(s.TotalPixels) * 100
		s.GrowthPct = float64(s.GrowthPixels) / float64(s.TotalPixels) * 100
	}
	return s
}
