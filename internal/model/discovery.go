package model

// DiscoverRequest describes a "find resorts near X" query
type DiscoverRequest struct {
	Lat  float64
	Lon  float64
	Name string
	// RadiusKm <= 0 means "use the saved preference or the default"
	RadiusKm float64
}

// DiscoveryResult is the output of a discovery run. ID ties results to the
// request that produced them.
type DiscoveryResult struct {
	ID       string           `json:"id"`
	Location string           `json:"location"`
	Origin   Coordinate       `json:"origin"`
	RadiusKm float64          `json:"radius_km"`
	Resorts  []ResortForecast `json:"resorts"`
}

// RankedResponse is the API representation of a ranked discovery
type RankedResponse struct {
	ID       string         `json:"id"`
	Location string         `json:"location"`
	Origin   Coordinate     `json:"origin"`
	RadiusKm float64        `json:"radius_km"`
	Day      int            `json:"day"`
	Sort     string         `json:"sort"`
	Resorts  []ScoredResort `json:"resorts"`
}

// PlacesResponse represents the response for a place search
type PlacesResponse struct {
	Results []LocationResult `json:"results"`
}

// RadiusSetting is the user's preferred search radius
type RadiusSetting struct {
	RadiusKm float64 `json:"radius_km"`
}

// CatalogStatus describes the in-memory catalog
type CatalogStatus struct {
	State   string `json:"state"`
	Resorts int    `json:"resorts"`
}
