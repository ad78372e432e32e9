package change

import (
	"testing"

	"github.com/landwatch/landwatch-api-poc/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.NoError(t, Thresholds{Vegetation: 0.1, Urban: 0.4}.Validate())
	assert.Error(t, Thresholds{Vegetation: 0.05, Urban: 0.2}.Validate())
	assert.Error(t, Thresholds{Vegetation: 0.2, Urban: 0.5}.Validate())
}

func TestComputeCropsMismatchedShapes(t *testing.T) {
	before := raster.Filled(10, 10, 0.5)
	after := raster.Filled(8, 9, 0.5)

	diff := Compute(before, after)

	require.Equal(t, 8, diff.Rows())
	require.Equal(t, 9, diff.Cols())
}

// End-to-end synthetic scenario: NDVI drops from 0.6 to 0 everywhere, so with
// the default 0.2 threshold every pixel classifies as vegetation loss.
func TestClassifyUniformLoss(t *testing.T) {
	nir2019 := raster.Filled(20, 20, 0.8)
	red2019 := raster.Filled(20, 20, 0.2)
	nir2024 := raster.Filled(20, 20, 0.3)
	red2024 := raster.Filled(20, 20, 0.3)

	ndviBefore, err := raster.NormalizedDifference(nir2019, red2019)
	require.NoError(t, err)
	ndviAfter, err := raster.NormalizedDifference(nir2024, red2024)
	require.NoError(t, err)

	diff := Compute(ndviBefore, ndviAfter)
	for y := range diff {
		for x := range diff[y] {
			require.InDelta(t, -0.6, diff[y][x], 1e-9)
		}
	}

	stats := Classify(diff, nil, DefaultThresholds())
	assert.Equal(t, 400, stats.TotalPixels)
	assert.InDelta(t, 100.0, stats.LossPct, 1e-9)
	assert.Zero(t, stats.GainPct)
	assert.Zero(t, stats.GrowthPct)
}

func TestClassifyGainAndGrowth(t *testing.T) {
	veg := raster.Raster{
		{0.3, -0.3},
		{0.0, 0.1},
	}
	urban := raster.Raster{
		{0.0, 0.25},
		{0.3, -0.1},
	}

	stats := Classify(veg, urban, DefaultThresholds())

	assert.Equal(t, 4, stats.TotalPixels)
	assert.Equal(t, 1, stats.LossPixels)
	assert.Equal(t, 1, stats.GainPixels)
	assert.Equal(t, 2, stats.StablePixels)
	assert.Equal(t, 2, stats.GrowthPixels)
	assert.InDelta(t, 25.0, stats.LossPct, 1e-9)
	assert.InDelta(t, 25.0, stats.GainPct, 1e-9)
	assert.InDelta(t, 50.0, stats.GrowthPct, 1e-9)
}

func TestClassifyZeroSizeRaster(t *testing.T) {
	stats := Classify(raster.Raster{}, nil, DefaultThresholds())

	assert.Zero(t, stats.TotalPixels)
	assert.Zero(t, stats.LossPct)
	assert.Zero(t, stats.GainPct)
	assert.Zero(t, stats.GrowthPct)
}

func TestClassifyIsPure(t *testing.T) {
	veg := raster.Raster{
		{0.3, -0.3, 0.05},
		{0.0, 0.21, -0.5},
	}

	first := Classify(veg, nil, DefaultThresholds())
	second := Classify(veg, nil, DefaultThresholds())

	assert.Equal(t, first, second)
}

func TestComputeIsIdempotent(t *testing.T) {
	before := raster.Raster{{0.1, 0.2}, {0.3, 0.4}}
	after := raster.Raster{{0.4, 0.3}, {0.2, 0.1}}

	first := Compute(before, after)
	second := Compute(before, after)

	assert.Equal(t, first, second)
}

func TestClassifyWindowSubRegion(t *testing.T) {
	veg := raster.New(10, 10)
	// only the top-left quadrant shows loss
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			veg[y][x] = -0.5
		}
	}

	window := raster.Window{Row0: 0, Col0: 0, Row1: 5, Col1: 5}
	stats := ClassifyWindow(veg, nil, window, DefaultThresholds())

	assert.Equal(t, 25, stats.TotalPixels)
	assert.InDelta(t, 100.0, stats.LossPct, 1e-9)

	whole := Classify(veg, nil, DefaultThresholds())
	assert.InDelta(t, 25.0, whole.LossPct, 1e-9)
}
