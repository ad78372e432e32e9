package stac

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/landwatch/landwatch-api-poc/internal/properties"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrNoSceneFound means zero scenes satisfied the region/date/cloud-cover
// filter. It must reach the caller unchanged; the pipeline never substitutes a
// different region or a looser filter.
var ErrNoSceneFound = errors.New("no satellite scenes found for the requested area and period")

const (
	searchRetries  = 3
	retryDelay     = 5 * time.Second
	defaultLimit   = 10
	requestTimeout = 120 * time.Second
)

type sasToken struct {
	Token  string    `json:"token"`
	Expiry time.Time `json:"msft:expiry"`
}

// Client is an explicit catalog handle, constructed once per process and
// passed into the pipeline.
type Client struct {
	apiURL string
	sasURL string
	http   *http.Client

	mu     sync.Mutex
	tokens map[string]sasToken
}

func NewClient(apiURL, sasURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		sasURL: strings.TrimRight(sasURL, "/"),
		http:   httpClient,
		tokens: make(map[string]sasToken),
	}
}

// NewClientFromEnv builds the catalog client from the process environment.
// When CATALOG_CLIENT_ID/SECRET/TOKEN_URL are all set, catalog requests go
// through an OAuth2 client-credentials transport.
func NewClientFromEnv(ctx context.Context) *Client {
	httpClient := &http.Client{Timeout: requestTimeout}

	clientID := properties.CatalogClientID()
	clientSecret := properties.CatalogClientSecret()
	tokenURL := properties.CatalogTokenURL()
	if clientID != "" && clientSecret != "" && tokenURL != "" {
		config := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		}
		httpClient = config.Client(ctx)
		httpClient.Timeout = requestTimeout
		logrus.Info("catalog client using OAuth2 client credentials")
	}

	return NewClient(properties.StacAPIURL(), properties.SasTokenURL(), httpClient)
}

// Search queries the catalog for scenes intersecting the bounding box and
// datetime interval, filtered by maximum cloud cover. Results keep the
// catalog's default ordering.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]Scene, error) {
	limit := params.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	payload := searchRequest{
		Collections: []string{params.Collection},
		BBox:        params.BBox,
		Datetime:    params.Interval,
		Limit:       limit,
	}
	if params.MaxCloudCover > 0 {
		payload.Query = map[string]interface{}{
			"eo:cloud_cover": map[string]interface{}{"lt": params.MaxCloudCover},
		}
	}

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search payload: %v", err)
	}

	body, err := c.postWithRetry(ctx, c.apiURL+"/search", requestBody)
	if err != nil {
		return nil, err
	}

	var response searchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %v", err)
	}

	scenes := make([]Scene, 0, len(response.Features))
	for _, feature := range response.Features {
		scenes = append(scenes, feature.toScene())
	}
	return scenes, nil
}

// SelectScene returns the first scene from the catalog's default ordering, or
// ErrNoSceneFound when the filtered result set is empty.
func (c *Client) SelectScene(ctx context.Context, params SearchParams) (*Scene, error) {
	scenes, err := c.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(scenes) == 0 {
		return nil, fmt.Errorf("%w: collection %s, bbox %v, interval %s, cloud cover < %.0f%%",
			ErrNoSceneFound, params.Collection, params.BBox, params.Interval, params.MaxCloudCover)
	}
	scene := scenes[0]
	logrus.WithFields(logrus.Fields{
		"scene":       scene.ID,
		"date":        scene.Date.Format("2006-01-02"),
		"cloud_cover": scene.CloudCover,
	}).Info("selected scene")
	return &scene, nil
}

// SignScene resolves every asset href of the scene into a directly fetchable
// URL using the collection's SAS token.
func (c *Client) SignScene(ctx context.Context, scene *Scene) error {
	for name, href := range scene.Assets {
		signed, err := c.SignAsset(ctx, scene.Collection, href)
		if err != nil {
			return fmt.Errorf("failed to sign asset %s: %w", name, err)
		}
		scene.Assets[name] = signed
	}
	return nil
}

// SignAsset appends the collection's SAS token to the asset href. Tokens are
// cached per collection until shortly before expiry.
func (c *Client) SignAsset(ctx context.Context, collection, href string) (string, error) {
	token, err := c.token(ctx, collection)
	if err != nil {
		return "", err
	}
	separator := "?"
	if strings.Contains(href, "?") {
		separator = "&"
	}
	return href + separator + token, nil
}

func (c *Client) token(ctx context.Context, collection string) (string, error) {
	c.mu.Lock()
	cached, ok := c.tokens[collection]
	c.mu.Unlock()
	if ok && time.Until(cached.Expiry) > time.Minute {
		return cached.Token, nil
	}

	tokenURL := fmt.Sprintf("%s/token/%s", c.sasURL, url.PathEscape(collection))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenURL, nil)
	if err != nil {
		return "", err
	}
	response, err := c.http.Do(request)
	if err != nil {
		return "", fmt.Errorf("failed to request SAS token: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(response.Body)
		return "", fmt.Errorf("SAS token request returned status %d: %s", response.StatusCode, string(body))
	}

	var token sasToken
	if err := json.NewDecoder(response.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("failed to parse SAS token response: %v", err)
	}

	c.mu.Lock()
	c.tokens[collection] = token
	c.mu.Unlock()
	return token.Token, nil
}

func (c *Client) postWithRetry(ctx context.Context, url string, requestBody []byte) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= searchRetries; attempt++ {
		request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
		if err != nil {
			return nil, err
		}
		request.Header.Set("Content-Type", "application/json")

		response, err := c.http.Do(request)
		if err != nil {
			lastErr = err
			logrus.Warnf("catalog request attempt %d failed: %v", attempt, err)
		} else {
			body, readErr := io.ReadAll(response.Body)
			response.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("failed to read response body: %v", readErr)
			} else if response.StatusCode == http.StatusOK {
				return body, nil
			} else {
				lastErr = fmt.Errorf("catalog returned status %d: %s", response.StatusCode, string(body))
				if response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden {
					return nil, fmt.Errorf("unauthorized catalog access, check your credentials: %v", lastErr)
				}
				logrus.Warnf("catalog request attempt %d failed: %v", attempt, lastErr)
			}
		}

		if attempt < searchRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return nil, fmt.Errorf("catalog request failed after %d attempts: %v", searchRetries, lastErr)
}
