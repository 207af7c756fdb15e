package model

// Resort represents a ski area in the catalog
type Resort struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Latitude      float64          `json:"latitude"`
	Longitude     float64          `json:"longitude"`
	LiftCount     int              `json:"liftCount"`
	LiftBreakdown map[string]int   `json:"liftBreakdown,omitempty"`
	Website       Optional[string] `json:"website"`
	PeakElevation Optional[int]    `json:"peakElevation"`
	BaseElevation Optional[int]    `json:"baseElevation"`
	// Distance is only set on results of a nearby query
	Distance Optional[float64] `json:"distance,omitzero"`
}

// Coordinate represents geographic coordinates
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LocationResult is a geocoding candidate for a place name
type LocationResult struct {
	Name      string           `json:"name"`
	Latitude  float64          `json:"latitude"`
	Longitude float64          `json:"longitude"`
	Country   Optional[string] `json:"country"`
	Admin1    Optional[string] `json:"admin1"`
}
