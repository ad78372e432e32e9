package stac

import "time"

// Scene is one satellite acquisition selected for a time point. It is
// immutable once selected; asset hrefs are replaced in place only by the
// signing step.
type Scene struct {
	ID         string            `json:"id"`
	Collection string            `json:"collection"`
	Date       time.Time         `json:"date"`
	CloudCover float64           `json:"cloud_cover"`
	Assets     map[string]string `json:"assets"`
}

// SearchParams describe one catalog query. Exactly one scene is used per time
// point; no mosaicking is performed, so cloud cover in the selected scene
// degrades output quality directly.
type SearchParams struct {
	Collection    string
	BBox          [4]float64
	Interval      string // ISO interval, e.g. "2019-01-01/2019-12-31"
	MaxCloudCover float64
	Limit         int
}

type searchRequest struct {
	Collections []string               `json:"collections"`
	BBox        [4]float64             `json:"bbox"`
	Datetime    string                 `json:"datetime"`
	Query       map[string]interface{} `json:"query,omitempty"`
	Limit       int                    `json:"limit,omitempty"`
}

type searchResponse struct {
	Features []sceneFeature `json:"features"`
}

type sceneFeature struct {
	ID         string `json:"id"`
	Collection string `json:"collection"`
	Properties struct {
		Datetime   string  `json:"datetime"`
		CloudCover float64 `json:"eo:cloud_cover"`
	} `json:"properties"`
	Assets map[string]struct {
		Href string `json:"href"`
	} `json:"assets"`
}

func (f sceneFeature) toScene() Scene {
	scene := Scene{
		ID:         f.ID,
		Collection: f.Collection,
		CloudCover: f.Properties.CloudCover,
		Assets:     make(map[string]string, len(f.Assets)),
	}
	if date, err := time.Parse(time.RFC3339, f.Properties.Datetime); err == nil {
		scene.Date = date
	}
	for name, asset := range f.Assets {
		scene.Assets[name] = asset.Href
	}
	return scene
}
