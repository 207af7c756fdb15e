package catalog

import (
	"math"

	"github.com/alexivanou/powderscout/internal/model"
)

const (
	// MinLiftCount is the size floor: resorts with this many lifts or fewer are dropped
	MinLiftCount = 10
	// PlaceholderName marks features without a usable name
	PlaceholderName = "Unknown Resort"
	// baseElevationOffset estimates the base from the peak when lifts carry no bottom elevation
	baseElevationOffset = 500
)

// Normalize turns raw features into catalog resorts, applying the ski area
// type filter, the point geometry filter, the name check and the size floor.
// When an id repeats, the first feature wins.
func Normalize(fc *FeatureCollection) []model.Resort {
	if fc == nil {
		return nil
	}

	resorts := make([]model.Resort, 0, len(fc.Features))
	seen := make(map[string]bool, len(fc.Features))
	for _, f := range fc.Features {
		if seen[f.Properties.ID] {
			continue
		}
		if f.Properties.Type != "skiArea" && f.Properties.Type != "station" {
			continue
		}
		lon, lat, ok := f.Geometry.Point()
		if !ok {
			continue
		}

		r := toResort(f.Properties, lat, lon)
		if r.Name == "" || r.Name == PlaceholderName || r.LiftCount <= MinLiftCount {
			continue
		}
		seen[r.ID] = true
		resorts = append(resorts, r)
	}
	return resorts
}

func toResort(p FeatureProperties, lat, lon float64) model.Resort {
	r := model.Resort{
		ID:        p.ID,
		Name:      p.Name,
		Latitude:  lat,
		Longitude: lon,
	}
	if r.Name == "" {
		r.Name = PlaceholderName
	}
	if len(p.Websites) > 0 && p.Websites[0] != "" {
		r.Website = model.Some(p.Websites[0])
	}

	var byType map[string]LiftTypeStats
	if p.Statistics != nil && p.Statistics.Lifts != nil {
		byType = p.Statistics.Lifts.ByType
	}

	peak := 0.0
	base := math.Inf(1)
	for liftType, stats := range byType {
		r.LiftCount += stats.Count
		if stats.Count > 0 {
			if r.LiftBreakdown == nil {
				r.LiftBreakdown = make(map[string]int)
			}
			r.LiftBreakdown[liftType] = stats.Count
		}
		if stats.MaxElevation != nil && *stats.MaxElevation > peak {
			peak = *stats.MaxElevation
		}
		if stats.MinElevation != nil && *stats.MinElevation > 0 && *stats.MinElevation < base {
			base = *stats.MinElevation
		}
	}

	if peak > 0 {
		r.PeakElevation = model.Some(int(math.Round(peak)))
	}
	switch {
	case !math.IsInf(base, 1):
		r.BaseElevation = model.Some(int(math.Round(base)))
	case r.PeakElevation.IsPresent():
		r.BaseElevation = model.Some(r.PeakElevation.OrElse(0) - baseElevationOffset)
	}

	return r
}
