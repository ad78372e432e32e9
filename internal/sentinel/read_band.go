package sentinel

import (
	"fmt"
	"strings"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/landwatch/landwatch-api-poc/internal/raster"
	"github.com/landwatch/landwatch-api-poc/internal/stac"
	"github.com/sirupsen/logrus"
)

// Band identifies a Sentinel-2 spectral band asset.
type Band string

const (
	BandRed  Band = "B04" // red, 10m
	BandNIR  Band = "B08" // near-infrared, 10m
	BandSWIR Band = "B11" // shortwave-infrared, 20m
)

// ResamplingStrategy selects how a band is brought onto the common output
// grid.
type ResamplingStrategy string

const (
	// ResampleAverage area-averages blocks of native pixels. Preferred for
	// the two 10m bands.
	ResampleAverage ResamplingStrategy = "average"
	// ResampleBilinear interpolates, used to upsample the 20m SWIR band onto
	// the 10m grid.
	ResampleBilinear ResamplingStrategy = "bilinear"
	// ResampleDecimate keeps every Nth pixel, matching the original
	// dashboards' stride subsampling.
	ResampleDecimate ResamplingStrategy = "decimate"
)

// ReadOptions control the windowed, resampled decode of one band asset.
// Factor divides the 10m grid; OutWidth/OutHeight pin the output shape so that
// bands of differing native resolution land on an identical pixel grid. When
// both are zero the shape is derived from the band's native size and Factor.
type ReadOptions struct {
	Strategy  ResamplingStrategy
	Factor    int
	OutWidth  int
	OutHeight int
}

var registerOnce sync.Once

func resamplingAlg(strategy ResamplingStrategy) (godal.ResamplingAlg, error) {
	switch strategy {
	case ResampleAverage, "":
		return godal.Average, nil
	case ResampleBilinear:
		return godal.Bilinear, nil
	case ResampleDecimate:
		return godal.Nearest, nil
	}
	return godal.Nearest, fmt.Errorf("unknown resampling strategy %q", strategy)
}

// ReadBand fetches and decodes one band raster of the scene, downsampled onto
// the common grid. Network and decode failures are fatal for the computation;
// there is no partial-result fallback.
func ReadBand(scene *stac.Scene, band Band, opts ReadOptions) (raster.Raster, error) {
	registerOnce.Do(godal.RegisterAll)

	href, ok := scene.Assets[string(band)]
	if !ok {
		return nil, fmt.Errorf("scene %s has no asset for band %s", scene.ID, band)
	}
	path := href
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		path = "/vsicurl/" + href
	}

	ds, err := godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal error %d: %s", code, msg)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to open band %s of scene %s: %v", band, scene.ID, err)
	}
	defer ds.Close()

	nativeW := ds.Structure().SizeX
	nativeH := ds.Structure().SizeY

	factor := opts.Factor
	if factor < 1 {
		factor = 1
	}
	outW, outH := opts.OutWidth, opts.OutHeight
	if outW == 0 || outH == 0 {
		outW = max(nativeW/factor, 1)
		outH = max(nativeH/factor, 1)
	}

	alg, err := resamplingAlg(opts.Strategy)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"band":   band,
		"native": fmt.Sprintf("%dx%d", nativeW, nativeH),
		"out":    fmt.Sprintf("%dx%d", outW, outH),
	}).Debug("reading band")

	buf := make([]float64, outW*outH)
	gdalBand := ds.Bands()[0]
	err = gdalBand.Read(0, 0, buf, outW, outH,
		godal.Window(nativeW, nativeH),
		godal.Resampling(alg),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read band %s of scene %s: %v", band, scene.ID, err)
	}

	out := make(raster.Raster, outH)
	for y := 0; y < outH; y++ {
		out[y] = buf[y*outW : (y+1)*outW]
	}
	return out, nil
}

// IndexBands holds the three aligned band rasters one time point needs.
type IndexBands struct {
	Red  raster.Raster
	NIR  raster.Raster
	SWIR raster.Raster
}

// ReadIndexBands reads red, near-infrared and shortwave-infrared sequentially
// onto one common pixel grid: the red band defines the output shape, the NIR
// band reuses it with the same strategy, and SWIR is brought up from 20m with
// bilinear interpolation unless decimation was requested.
func ReadIndexBands(scene *stac.Scene, opts ReadOptions) (*IndexBands, error) {
	red, err := ReadBand(scene, BandRed, opts)
	if err != nil {
		return nil, err
	}

	aligned := opts
	aligned.OutWidth = red.Cols()
	aligned.OutHeight = red.Rows()

	nir, err := ReadBand(scene, BandNIR, aligned)
	if err != nil {
		return nil, err
	}

	swirOpts := aligned
	if swirOpts.Strategy != ResampleDecimate {
		swirOpts.Strategy = ResampleBilinear
	}
	swir, err := ReadBand(scene, BandSWIR, swirOpts)
	if err != nil {
		return nil, err
	}

	for _, b := range []raster.Raster{nir, swir} {
		if b.Rows() != red.Rows() || b.Cols() != red.Cols() {
			return nil, fmt.Errorf("band grids of scene %s are not aligned after resampling", scene.ID)
		}
	}
	return &IndexBands{Red: red, NIR: nir, SWIR: swir}, nil
}
