package sentinel

import "github.com/landwatch/landwatch-api-poc/internal/raster"

// NDVI is NormalizedDifference(nir, red): higher values mean denser
// vegetation. The operand order is the sign convention and must not be
// swapped.
func (b *IndexBands) NDVI() (raster.Raster, error) {
	return raster.NormalizedDifference(b.NIR, b.Red)
}

// NDBI is NormalizedDifference(swir, nir): higher values mean built-up
// surfaces.
func (b *IndexBands) NDBI() (raster.Raster, error) {
	return raster.NormalizedDifference(b.SWIR, b.NIR)
}
