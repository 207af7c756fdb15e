package model

// ForecastDays is the fixed horizon of a resort forecast
const ForecastDays = 3

// ForecastDay holds one day's conditions at a resort
type ForecastDay struct {
	Snowfall      float64       `json:"snowfall"`
	SnowDepth     int           `json:"snowDepth"`
	BaseSnowDepth Optional[int] `json:"baseSnowDepth"`
	WindSpeed     float64       `json:"windSpeed"`
	WeatherCode   int           `json:"weatherCode"`
	TempMax       float64       `json:"tempMax"`
	TempMin       float64       `json:"tempMin"`
}

// Forecast is today, tomorrow and the day after, in that order
type Forecast [ForecastDays]ForecastDay

// ResortForecast joins a nearby resort with its forecast, if one was fetched
type ResortForecast struct {
	Resort
	Forecast Optional[Forecast] `json:"forecast"`
}

// ScoredResort joins a resort with a single selected forecast day and its score
type ScoredResort struct {
	Resort
	Weather    Optional[ForecastDay] `json:"weather"`
	Conditions string                `json:"conditions,omitempty"`
	Score      float64               `json:"score"`
}
