package raster

import "fmt"

// BoundingBox is a lon/lat query region: [minLon, minLat, maxLon, maxLat].
type BoundingBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

func NewBoundingBox(minLon, minLat, maxLon, maxLat float64) BoundingBox {
	return BoundingBox{MinLon: minLon, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat}
}

func (b BoundingBox) Validate() error {
	if b.MinLon >= b.MaxLon || b.MinLat >= b.MaxLat {
		return fmt.Errorf("invalid bounding box [%f %f %f %f]: min must be less than max on each axis", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
	}
	return nil
}

// Slice returns the box in the [minLon, minLat, maxLon, maxLat] order used by
// catalog search requests.
func (b BoundingBox) Slice() [4]float64 {
	return [4]float64{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat}
}

// Window is a half-open pixel sub-window [Row0, Row1) x [Col0, Col1).
type Window struct {
	Row0, Col0 int
	Row1, Col1 int
}

func (w Window) Rows() int { return w.Row1 - w.Row0 }
func (w Window) Cols() int { return w.Col1 - w.Col0 }

func (w Window) Empty() bool { return w.Row1 <= w.Row0 || w.Col1 <= w.Col0 }

// WindowFor maps a zone's bounding box into pixel-index space for a raster of
// the given shape covering the overall query box, by linear interpolation:
//
//	index = (coordinate - min) / (max - min) * dimension
//
// The window is clamped to the raster bounds. Zones are aggregated over their
// bounding rectangle, not their exact polygon footprint.
func (b BoundingBox) WindowFor(zone BoundingBox, rows, cols int) Window {
	lonSpan := b.MaxLon - b.MinLon
	latSpan := b.MaxLat - b.MinLat
	if lonSpan <= 0 || latSpan <= 0 || rows <= 0 || cols <= 0 {
		return Window{}
	}

	w := Window{
		Col0: int((zone.MinLon - b.MinLon) / lonSpan * float64(cols)),
		Col1: int((zone.MaxLon - b.MinLon) / lonSpan * float64(cols)),
		Row0: int((zone.MinLat - b.MinLat) / latSpan * float64(rows)),
		Row1: int((zone.MaxLat - b.MinLat) / latSpan * float64(rows)),
	}

	w.Row0 = clamp(w.Row0, 0, rows)
	w.Row1 = clamp(w.Row1, 0, rows)
	w.Col0 = clamp(w.Col0, 0, cols)
	w.Col1 = clamp(w.Col1, 0, cols)
	return w
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
