package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Source provides the raw ski area dataset
type Source interface {
	Fetch(ctx context.Context) (*FeatureCollection, error)
}

// FeatureCollection is the subset of the OpenSkiMap GeoJSON export we read
type FeatureCollection struct {
	Features []Feature `json:"features"`
}

// Feature is a single ski area
type Feature struct {
	Properties FeatureProperties `json:"properties"`
	Geometry   *Geometry         `json:"geometry"`
}

// FeatureProperties holds the descriptive fields of a ski area
type FeatureProperties struct {
	Type       string      `json:"type"`
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Websites   []string    `json:"websites"`
	Statistics *Statistics `json:"statistics"`
}

// Statistics groups per-feature aggregates
type Statistics struct {
	Lifts *LiftStatistics `json:"lifts"`
}

// LiftStatistics holds lift aggregates keyed by lift type (chair_lift, gondola, ...)
type LiftStatistics struct {
	ByType map[string]LiftTypeStats `json:"byType"`
}

// LiftTypeStats describes all lifts of one type
type LiftTypeStats struct {
	Count        int      `json:"count"`
	MinElevation *float64 `json:"minElevation"`
	MaxElevation *float64 `json:"maxElevation"`
}

// Geometry keeps coordinates raw: only points are decoded, polygons are skipped
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Point returns longitude and latitude for a Point geometry
func (g *Geometry) Point() (lon, lat float64, ok bool) {
	if g == nil || g.Type != "Point" {
		return 0, 0, false
	}
	var coords []float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil || len(coords) < 2 {
		return 0, 0, false
	}
	return coords[0], coords[1], true
}

// DecodeFeatureCollection parses a GeoJSON feature collection
func DecodeFeatureCollection(r io.Reader) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("failed to parse feature collection: %w", err)
	}
	return &fc, nil
}

// HTTPSource downloads the dataset from a fixed URL
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source for the given endpoint
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads and parses the feature collection
func (s *HTTPSource) Fetch(ctx context.Context) (*FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resort source returned status %d", resp.StatusCode)
	}

	return DecodeFeatureCollection(resp.Body)
}

var _ Source = (*HTTPSource)(nil)
