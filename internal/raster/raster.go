package raster

import "fmt"

// epsilon keeps normalized-difference ratios defined when both bands read zero
// (water, nodata). The value is part of the index contract and must not change.
const epsilon = 1e-10

// Raster is a row-major grid of reflectance or index values for one band at one
// resolution. All rows have equal length.
type Raster [][]float64

func New(rows, cols int) Raster {
	r := make(Raster, rows)
	for y := range r {
		r[y] = make([]float64, cols)
	}
	return r
}

// Filled returns a raster with every cell set to value. Used by tests and
// synthetic scenarios.
func Filled(rows, cols int, value float64) Raster {
	r := New(rows, cols)
	for y := range r {
		for x := range r[y] {
			r[y][x] = value
		}
	}
	return r
}

func (r Raster) Rows() int {
	return len(r)
}

func (r Raster) Cols() int {
	if len(r) == 0 {
		return 0
	}
	return len(r[0])
}

// NormalizedDifference computes (a-b)/(a+b+epsilon) elementwise. The operand
// order defines the sign convention of every index built on top of it: NDVI is
// NormalizedDifference(nir, red), NDBI is NormalizedDifference(swir, nir).
// Values are not clamped to [-1, 1].
func NormalizedDifference(a, b Raster) (Raster, error) {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return nil, fmt.Errorf("band rasters are not aligned: %dx%d vs %dx%d", a.Rows(), a.Cols(), b.Rows(), b.Cols())
	}
	out := New(a.Rows(), a.Cols())
	for y := range a {
		for x := range a[y] {
			out[y][x] = (a[y][x] - b[y][x]) / (a[y][x] + b[y][x] + epsilon)
		}
	}
	return out, nil
}

// Subtract computes after-before elementwise. Independently resampled rasters
// can disagree in shape by a pixel or two; both operands are cropped to the
// top-left submatrix of the common (minimum) shape before subtracting.
func Subtract(after, before Raster) Raster {
	rows := min(after.Rows(), before.Rows())
	cols := min(after.Cols(), before.Cols())
	out := New(rows, cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			out[y][x] = after[y][x] - before[y][x]
		}
	}
	return out
}
