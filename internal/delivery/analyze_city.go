package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/landwatch/landwatch-api-poc/internal/cache"
	"github.com/landwatch/landwatch-api-poc/internal/change"
	"github.com/landwatch/landwatch-api-poc/internal/raster"
	"github.com/landwatch/landwatch-api-poc/internal/sentinel"
	"github.com/landwatch/landwatch-api-poc/internal/stac"
	"github.com/landwatch/landwatch-api-poc/internal/wards"
	"github.com/sirupsen/logrus"
)

const (
	DefaultCollection    = "sentinel-2-l2a"
	DefaultMaxCloudCover = 10
	DefaultFactor        = 4
)

// AnalysisRequest is the full parametrization of one change-detection run.
// Every dashboard variant reduces to one of these.
type AnalysisRequest struct {
	City string
	BBox raster.BoundingBox

	// Time points: either years (expanded to full-year intervals) or explicit
	// ISO intervals, which take precedence.
	BeforeYear     int
	AfterYear      int
	BeforeInterval string
	AfterInterval  string

	Collection    string
	MaxCloudCover float64
	Strategy      sentinel.ResamplingStrategy
	Factor        int
	Thresholds    change.Thresholds
	WardFile      string
}

func yearInterval(year int) string {
	return fmt.Sprintf("%d-01-01/%d-12-31", year, year)
}

func (r *AnalysisRequest) normalize() error {
	if err := r.BBox.Validate(); err != nil {
		return err
	}
	if r.BeforeInterval == "" {
		if r.BeforeYear == 0 {
			return fmt.Errorf("before period is required: set BeforeYear or BeforeInterval")
		}
		r.BeforeInterval = yearInterval(r.BeforeYear)
	}
	if r.AfterInterval == "" {
		if r.AfterYear == 0 {
			return fmt.Errorf("after period is required: set AfterYear or AfterInterval")
		}
		r.AfterInterval = yearInterval(r.AfterYear)
	}
	if r.Collection == "" {
		r.Collection = DefaultCollection
	}
	if r.MaxCloudCover == 0 {
		r.MaxCloudCover = DefaultMaxCloudCover
	}
	if r.Strategy == "" {
		r.Strategy = sentinel.ResampleAverage
	}
	if r.Factor == 0 {
		r.Factor = DefaultFactor
	}
	if r.Thresholds == (change.Thresholds{}) {
		r.Thresholds = change.DefaultThresholds()
	}
	return r.Thresholds.Validate()
}

func (r *AnalysisRequest) cacheKey() string {
	return cache.Key(
		r.BBox.Slice(),
		r.BeforeInterval, r.AfterInterval,
		r.Collection, r.MaxCloudCover,
		r.Strategy, r.Factor,
		r.Thresholds.Vegetation, r.Thresholds.Urban,
		r.WardFile,
	)
}

// SceneInfo is the capture metadata of a selected scene, kept on the result
// for display.
type SceneInfo struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	CloudCover float64   `json:"cloud_cover"`
}

// AnalysisResult is pure and immutable once computed; identical cached inputs
// reproduce it bit for bit.
type AnalysisResult struct {
	City             string             `json:"city"`
	BBox             raster.BoundingBox `json:"bbox"`
	Before           SceneInfo          `json:"before"`
	After            SceneInfo          `json:"after"`
	Thresholds       change.Thresholds  `json:"thresholds"`
	VegetationChange raster.Raster      `json:"vegetation_change"`
	UrbanChange      raster.Raster      `json:"urban_change"`
	Overall          change.Stats       `json:"overall"`
	Zones            []change.ZoneStats `json:"zones,omitempty"`
	ComputedAt       time.Time          `json:"computed_at"`
}

// Analyzer runs the change-detection pipeline against an explicit catalog
// handle, memoizing results by their full parameter set.
type Analyzer struct {
	catalog   *stac.Client
	memo      *cache.Memoizer[AnalysisResult]
	readBands func(*stac.Scene, sentinel.ReadOptions) (*sentinel.IndexBands, error)
}

func NewAnalyzer(catalog *stac.Client, store cache.Store[AnalysisResult]) *Analyzer {
	return &Analyzer{
		catalog:   catalog,
		memo:      cache.NewMemoizer(store),
		readBands: sentinel.ReadIndexBands,
	}
}

// AnalyzeCity runs (or replays from cache) one change-detection analysis.
func (a *Analyzer) AnalyzeCity(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	result, err := a.memo.GetOrCompute(req.cacheKey(), func() (AnalysisResult, error) {
		return a.compute(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type timePoint struct {
	scene *stac.Scene
	ndvi  raster.Raster
	ndbi  raster.Raster
}

func (a *Analyzer) snapshot(ctx context.Context, req AnalysisRequest, interval string) (*timePoint, error) {
	scene, err := a.catalog.SelectScene(ctx, stac.SearchParams{
		Collection:    req.Collection,
		BBox:          req.BBox.Slice(),
		Interval:      interval,
		MaxCloudCover: req.MaxCloudCover,
	})
	if err != nil {
		return nil, err
	}

	if err := a.catalog.SignScene(ctx, scene); err != nil {
		return nil, err
	}

	bands, err := a.readBands(scene, sentinel.ReadOptions{
		Strategy: req.Strategy,
		Factor:   req.Factor,
	})
	if err != nil {
		return nil, err
	}

	ndvi, err := bands.NDVI()
	if err != nil {
		return nil, err
	}
	ndbi, err := bands.NDBI()
	if err != nil {
		return nil, err
	}
	return &timePoint{scene: scene, ndvi: ndvi, ndbi: ndbi}, nil
}

func (a *Analyzer) compute(ctx context.Context, req AnalysisRequest) (AnalysisResult, error) {
	start := time.Now()
	log := logrus.WithField("city", req.City)

	stepStart := time.Now()
	before, err := a.snapshot(ctx, req, req.BeforeInterval)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("before period %s: %w", req.BeforeInterval, err)
	}
	after, err := a.snapshot(ctx, req, req.AfterInterval)
	if err != nil {
		return AnalysisResult{}, fmt.Errorf("after period %s: %w", req.AfterInterval, err)
	}
	log.Infof("scene selection and band reads took %v", time.Since(stepStart))

	stepStart = time.Now()
	vegChange := change.Compute(before.ndvi, after.ndvi)
	urbanChange := change.Compute(before.ndbi, after.ndbi)
	overall := change.Classify(vegChange, urbanChange, req.Thresholds)
	log.Infof("change computation took %v", time.Since(stepStart))

	result := AnalysisResult{
		City:             req.City,
		BBox:             req.BBox,
		Before:           SceneInfo{ID: before.scene.ID, Date: before.scene.Date, CloudCover: before.scene.CloudCover},
		After:            SceneInfo{ID: after.scene.ID, Date: after.scene.Date, CloudCover: after.scene.CloudCover},
		Thresholds:       req.Thresholds,
		VegetationChange: vegChange,
		UrbanChange:      urbanChange,
		Overall:          overall,
		ComputedAt:       time.Now().UTC(),
	}

	if req.WardFile != "" {
		stepStart = time.Now()
		wardList, err := wards.Load(req.WardFile)
		if err != nil {
			return AnalysisResult{}, err
		}
		result.Zones = change.AggregateZones(vegChange, urbanChange, req.BBox, wardList, req.Thresholds)
		log.Infof("ward aggregation over %d wards took %v", len(wardList), time.Since(stepStart))
	}

	log.Infof("total analysis time %v", time.Since(start))
	return result, nil
}
