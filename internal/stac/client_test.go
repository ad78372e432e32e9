package stac

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchServer(t *testing.T, features string, capture *searchRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"type":"FeatureCollection","features":` + features + `}`))
	}))
}

const twoScenes = `[
  {
    "id": "S2A_MSIL2A_20190314",
    "collection": "sentinel-2-l2a",
    "properties": {"datetime": "2019-03-14T05:21:29Z", "eo:cloud_cover": 3.2},
    "assets": {
      "B04": {"href": "https://example.com/B04.tif"},
      "B08": {"href": "https://example.com/B08.tif"},
      "B11": {"href": "https://example.com/B11.tif"}
    }
  },
  {
    "id": "S2B_MSIL2A_20190610",
    "collection": "sentinel-2-l2a",
    "properties": {"datetime": "2019-06-10T05:21:29Z", "eo:cloud_cover": 8.9},
    "assets": {"B04": {"href": "https://example.com/other.tif"}}
  }
]`

func TestSelectSceneFirstMatch(t *testing.T) {
	var captured searchRequest
	server := searchServer(t, twoScenes, &captured)
	defer server.Close()

	client := NewClient(server.URL, server.URL, server.Client())
	scene, err := client.SelectScene(context.Background(), SearchParams{
		Collection:    "sentinel-2-l2a",
		BBox:          [4]float64{80.20, 12.90, 80.35, 13.15},
		Interval:      "2019-01-01/2019-12-31",
		MaxCloudCover: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, "S2A_MSIL2A_20190314", scene.ID)
	assert.InDelta(t, 3.2, scene.CloudCover, 1e-9)
	assert.Equal(t, time.Date(2019, 3, 14, 5, 21, 29, 0, time.UTC), scene.Date)
	assert.Equal(t, "https://example.com/B04.tif", scene.Assets["B04"])

	// the cloud-cover filter travels in the query
	assert.Equal(t, []string{"sentinel-2-l2a"}, captured.Collections)
	assert.Equal(t, "2019-01-01/2019-12-31", captured.Datetime)
	query, ok := captured.Query["eo:cloud_cover"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 10.0, query["lt"].(float64), 1e-9)
}

func TestSelectSceneNoResults(t *testing.T) {
	server := searchServer(t, `[]`, nil)
	defer server.Close()

	client := NewClient(server.URL, server.URL, server.Client())
	_, err := client.SelectScene(context.Background(), SearchParams{
		Collection: "sentinel-2-l2a",
		Interval:   "2019-01-01/2019-12-31",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSceneFound))
}

func TestSignAssetAppendsToken(t *testing.T) {
	var tokenRequests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token/sentinel-2-l2a", r.URL.Path)
		atomic.AddInt32(&tokenRequests, 1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sasToken{
			Token:  "st=2024&sig=abc",
			Expiry: time.Now().Add(time.Hour),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, server.Client())

	signed, err := client.SignAsset(context.Background(), "sentinel-2-l2a", "https://example.com/B04.tif")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/B04.tif?st=2024&sig=abc", signed)

	// hrefs that already carry a query string get the token appended
	signed, err = client.SignAsset(context.Background(), "sentinel-2-l2a", "https://example.com/B04.tif?v=2")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/B04.tif?v=2&st=2024&sig=abc", signed)

	// token is cached per collection until expiry
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenRequests))
}

func TestSignSceneSignsAllAssets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sasToken{Token: "sig=xyz", Expiry: time.Now().Add(time.Hour)})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, server.Client())
	scene := &Scene{
		ID:         "S2A",
		Collection: "sentinel-2-l2a",
		Assets: map[string]string{
			"B04": "https://example.com/B04.tif",
			"B08": "https://example.com/B08.tif",
		},
	}

	require.NoError(t, client.SignScene(context.Background(), scene))
	assert.Equal(t, "https://example.com/B04.tif?sig=xyz", scene.Assets["B04"])
	assert.Equal(t, "https://example.com/B08.tif?sig=xyz", scene.Assets["B08"])
}

func TestSearchSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.URL, server.Client())
	_, err := client.Search(context.Background(), SearchParams{Collection: "sentinel-2-l2a"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
}
