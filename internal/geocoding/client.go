package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alexivanou/powderscout/internal/config"
	"github.com/alexivanou/powderscout/internal/model"
	"go.uber.org/zap"
)

// MaxResults caps the number of places returned per search
const MaxResults = 5

// Client resolves place names to coordinates through the Open-Meteo geocoding API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a geocoding client
func NewClient(cfg config.SourcesConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.GeocodingURL,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		logger:     logger.Named("geocoding"),
	}
}

type searchResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
	} `json:"results"`
}

// Search returns up to MaxResults places matching the query. Failures are
// logged and produce an empty result.
func (c *Client) Search(ctx context.Context, query string) []model.LocationResult {
	results, err := c.search(ctx, query)
	if err != nil {
		c.logger.Warn("Geocoding search failed", zap.String("query", query), zap.Error(err))
		return []model.LocationResult{}
	}
	return results
}

func (c *Client) search(ctx context.Context, query string) ([]model.LocationResult, error) {
	params := url.Values{}
	params.Set("name", query)
	params.Set("count", strconv.Itoa(MaxResults))
	params.Set("language", "en")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API returned status %d", resp.StatusCode)
	}

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse geocoding response: %w", err)
	}

	results := make([]model.LocationResult, 0, len(data.Results))
	for _, r := range data.Results {
		if len(results) == MaxResults {
			break
		}
		loc := model.LocationResult{
			Name:      r.Name,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
		}
		if r.Country != "" {
			loc.Country = model.Some(r.Country)
		}
		if r.Admin1 != "" {
			loc.Admin1 = model.Some(r.Admin1)
		}
		results = append(results, loc)
	}
	return results, nil
}
