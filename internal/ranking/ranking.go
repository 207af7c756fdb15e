package ranking

import (
	"fmt"
	"math"
	"sort"

	"github.com/alexivanou/powderscout/internal/model"
)

// Scoring weights. Caps bound each contribution so the total never exceeds
// 40 + 50 + 20 + 50 = 160.
const (
	liftPointsPerLift   = 2
	maxLiftPoints       = 40
	snowfallPointsPerCm = 10
	maxSnowfallPoints   = 50
	depthCmPerPoint     = 10
	maxDepthPoints      = 20

	strongWindKmh      = 40
	strongWindPoints   = -30
	moderateWindKmh    = 20
	moderateWindPoints = -10

	clearSkyPoints    = 50
	mostlyClearPoints = 30
	snowingPoints     = 20
)

// SortMode selects the display order of ranked resorts
type SortMode string

const (
	SortRank  SortMode = "rank"
	SortSnow  SortMode = "snow"
	SortLifts SortMode = "lifts"
)

// ParseSortMode validates a sort mode. An empty string means SortRank.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case "", SortRank:
		return SortRank, nil
	case SortSnow, SortLifts:
		return SortMode(s), nil
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// Score rates a resort against its selected forecast day. A resort without
// weather scores 0.
func Score(r model.ScoredResort) float64 {
	w, ok := r.Weather.Get()
	if !ok {
		return 0
	}

	score := math.Min(float64(r.LiftCount*liftPointsPerLift), maxLiftPoints)
	score += math.Min(w.Snowfall*snowfallPointsPerCm, maxSnowfallPoints)
	score += math.Min(float64(w.SnowDepth)/depthCmPerPoint, maxDepthPoints)

	switch {
	case w.WindSpeed > strongWindKmh:
		score += strongWindPoints
	case w.WindSpeed > moderateWindKmh:
		score += moderateWindPoints
	}

	switch {
	case w.WeatherCode == model.WeatherClearSky:
		score += clearSkyPoints
	case w.WeatherCode <= model.WeatherOvercast:
		score += mostlyClearPoints
	case w.WeatherCode >= model.WeatherSnowFallFirst && w.WeatherCode <= model.WeatherSnowGrains:
		score += snowingPoints
	}

	return math.Max(0, score)
}

// Rank returns a copy of resorts with scores attached, best first. Equal
// scores keep their input order.
func Rank(resorts []model.ScoredResort) []model.ScoredResort {
	ranked := make([]model.ScoredResort, len(resorts))
	for i, r := range resorts {
		r.Score = Score(r)
		ranked[i] = r
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// SelectDay picks one forecast day (0 = today) for every resort and
// describes its conditions. Resorts without a forecast carry no weather.
func SelectDay(resorts []model.ResortForecast, day int) ([]model.ScoredResort, error) {
	if day < 0 || day >= model.ForecastDays {
		return nil, fmt.Errorf("day must be between 0 and %d, got %d", model.ForecastDays-1, day)
	}

	scored := make([]model.ScoredResort, 0, len(resorts))
	for _, r := range resorts {
		s := model.ScoredResort{Resort: r.Resort}
		if forecast, ok := r.Forecast.Get(); ok {
			w := forecast[day]
			s.Weather = model.Some(w)
			s.Conditions = model.WeatherDescription(w.WeatherCode)
		}
		scored = append(scored, s)
	}
	return scored, nil
}

// Sort reorders ranked resorts for display. SortRank keeps the ranked order;
// the other modes sort stably on top of it.
func Sort(resorts []model.ScoredResort, mode SortMode) []model.ScoredResort {
	sorted := make([]model.ScoredResort, len(resorts))
	copy(sorted, resorts)

	switch mode {
	case SortSnow:
		sort.SliceStable(sorted, func(i, j int) bool {
			return snowDepth(sorted[i]) > snowDepth(sorted[j])
		})
	case SortLifts:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].LiftCount > sorted[j].LiftCount
		})
	}
	return sorted
}

func snowDepth(r model.ScoredResort) int {
	w, ok := r.Weather.Get()
	if !ok {
		return 0
	}
	return w.SnowDepth
}
