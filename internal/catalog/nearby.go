package catalog

import (
	"sort"

	"github.com/alexivanou/powderscout/internal/geo"
	"github.com/alexivanou/powderscout/internal/model"
)

// Nearby returns the catalog resorts within radiusKm of the point, closest
// first. Each result carries its distance.
func (c *Catalog) Nearby(lat, lon, radiusKm float64) []model.Resort {
	return Nearby(c.snapshot(), lat, lon, radiusKm)
}

// Nearby filters resorts by distance from (lat, lon) and sorts them
// ascending. Equal distances keep their input order.
func Nearby(resorts []model.Resort, lat, lon, radiusKm float64) []model.Resort {
	nearby := make([]model.Resort, 0)
	for _, r := range resorts {
		d := geo.Distance(lat, lon, r.Latitude, r.Longitude)
		if d > radiusKm {
			continue
		}
		r.Distance = model.Some(d)
		nearby = append(nearby, r)
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].Distance.OrElse(0) < nearby[j].Distance.OrElse(0)
	})
	return nearby
}
