package output

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/fogleman/gg"
	"github.com/landwatch/landwatch-api-poc/internal/change"
	"github.com/landwatch/landwatch-api-poc/internal/properties"
	"github.com/landwatch/landwatch-api-poc/internal/raster"
)

// Display domain of the change map. Values outside it saturate, matching the
// original dashboards' rendering.
const (
	rampMin = -0.5
	rampMax = 0.5
)

// CreateChangeImage renders a change raster as a PNG with a diverging
// red-yellow-green ramp: deep red at strong loss, green at strong gain.
func CreateChangeImage(changeRaster raster.Raster, outputPath string) error {
	height := changeRaster.Rows()
	width := changeRaster.Cols()
	if height == 0 || width == 0 {
		return fmt.Errorf("change raster is empty, nothing to render")
	}

	dc := gg.NewContext(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b := rampColor(changeRaster[y][x])
			dc.SetRGB(r, g, b)
			dc.SetPixel(x, y)
		}
	}

	if err := dc.SavePNG(outputPath); err != nil {
		return fmt.Errorf("failed to save change image: %v", err)
	}
	return nil
}

func rampColor(value float64) (float64, float64, float64) {
	if value < rampMin {
		value = rampMin
	}
	if value > rampMax {
		value = rampMax
	}
	t := (value - rampMin) / (rampMax - rampMin)
	if t < 0.5 {
		// red to yellow
		return 1, 2 * t, 0.1
	}
	// yellow to green
	return 2 * (1 - t), 1 - 0.4*(2*t-1), 0.1
}

// CreateClassMapImage renders the classified change raster: each pixel painted
// with its class color from the shared color map.
func CreateClassMapImage(vegChange, urbanChange raster.Raster, t change.Thresholds, outputPath string) error {
	height := vegChange.Rows()
	width := vegChange.Cols()
	if height == 0 || width == 0 {
		return fmt.Errorf("change raster is empty, nothing to render")
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			class := "stable"
			switch {
			case vegChange[y][x] < -t.Vegetation:
				class = "loss"
			case vegChange[y][x] > t.Vegetation:
				class = "gain"
			case urbanChange != nil && y < urbanChange.Rows() && x < urbanChange.Cols() && urbanChange[y][x] > t.Urban:
				class = "growth"
			}
			c := properties.ColorMap[class]
			img.Set(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}

	outputFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create PNG file: %v", err)
	}
	defer outputFile.Close()

	if err := png.Encode(outputFile, img); err != nil {
		return fmt.Errorf("failed to encode PNG file: %v", err)
	}
	return nil
}
