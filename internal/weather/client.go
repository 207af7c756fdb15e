package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/alexivanou/powderscout/internal/config"
	"github.com/alexivanou/powderscout/internal/model"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	dailyFields  = "snowfall_sum,temperature_2m_max,temperature_2m_min"
	hourlyFields = "wind_speed_10m,snow_depth,weather_code"

	// middayHour is the hourly sample used to represent a day
	middayHour  = 12
	hoursPerDay = 24
)

// Client fetches multi-day resort forecasts from Open-Meteo
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a forecast client. All requests share one token bucket.
func NewClient(cfg config.SourcesConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.ForecastURL,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.WeatherRPS), cfg.WeatherBurst),
		logger:     logger.Named("weather"),
	}
}

type forecastResponse struct {
	Daily  *dailySeries  `json:"daily"`
	Hourly *hourlySeries `json:"hourly"`
}

// Series entries are pointers because Open-Meteo emits null for missing samples
type dailySeries struct {
	SnowfallSum []*float64 `json:"snowfall_sum"`
	TempMax     []*float64 `json:"temperature_2m_max"`
	TempMin     []*float64 `json:"temperature_2m_min"`
}

type hourlySeries struct {
	WindSpeed   []*float64 `json:"wind_speed_10m"`
	SnowDepth   []*float64 `json:"snow_depth"`
	WeatherCode []*float64 `json:"weather_code"`
}

// Forecast returns today's and the next two days' conditions at a resort.
// Conditions are sampled at the peak elevation when known; when a base
// elevation is known a second request runs alongside to read the base snow
// depth. A failed peak request yields an absent forecast, a failed base
// request only leaves the base depth absent.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, peak, base model.Optional[int]) model.Optional[model.Forecast] {
	var (
		wg       sync.WaitGroup
		baseResp *forecastResponse
		baseErr  error
	)

	if base.IsPresent() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			baseResp, baseErr = c.fetch(ctx, lat, lon, base)
		}()
	}

	peakResp, peakErr := c.fetch(ctx, lat, lon, peak)
	wg.Wait()

	if peakErr != nil {
		c.logger.Warn("Failed to fetch forecast",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(peakErr),
		)
		return model.None[model.Forecast]()
	}
	if !peakResp.complete() {
		c.logger.Debug("Incomplete forecast response", zap.Float64("lat", lat), zap.Float64("lon", lon))
		return model.None[model.Forecast]()
	}

	if baseErr != nil {
		c.logger.Warn("Failed to fetch base forecast",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(baseErr),
		)
	}

	var forecast model.Forecast
	for day := range forecast {
		hour := hourIndex(day)
		forecast[day] = model.ForecastDay{
			Snowfall:    valueAt(peakResp.Daily.SnowfallSum, day),
			TempMax:     valueAt(peakResp.Daily.TempMax, day),
			TempMin:     valueAt(peakResp.Daily.TempMin, day),
			WindSpeed:   valueAt(peakResp.Hourly.WindSpeed, hour),
			SnowDepth:   metersToCm(valueAt(peakResp.Hourly.SnowDepth, hour)),
			WeatherCode: int(valueAt(peakResp.Hourly.WeatherCode, hour)),
		}
		if baseResp != nil && baseResp.Hourly != nil && hour < len(baseResp.Hourly.SnowDepth) {
			forecast[day].BaseSnowDepth = model.Some(metersToCm(valueAt(baseResp.Hourly.SnowDepth, hour)))
		}
	}

	return model.Some(forecast)
}

func (c *Client) fetch(ctx context.Context, lat, lon float64, elevation model.Optional[int]) (*forecastResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("daily", dailyFields)
	params.Set("hourly", hourlyFields)
	params.Set("timezone", "auto")
	params.Set("forecast_days", strconv.Itoa(model.ForecastDays))
	if e, ok := elevation.Get(); ok {
		params.Set("elevation", strconv.Itoa(e))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Open-Meteo API returned status %d", resp.StatusCode)
	}

	var data forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse Open-Meteo response: %w", err)
	}
	return &data, nil
}

// complete reports whether every series covers the whole forecast horizon
func (r *forecastResponse) complete() bool {
	if r == nil || r.Daily == nil || r.Hourly == nil {
		return false
	}
	lastDay := model.ForecastDays - 1
	lastHour := hourIndex(lastDay)
	for _, s := range [][]*float64{r.Daily.SnowfallSum, r.Daily.TempMax, r.Daily.TempMin} {
		if len(s) <= lastDay {
			return false
		}
	}
	for _, s := range [][]*float64{r.Hourly.WindSpeed, r.Hourly.SnowDepth, r.Hourly.WeatherCode} {
		if len(s) <= lastHour {
			return false
		}
	}
	return true
}

func hourIndex(day int) int {
	return middayHour + hoursPerDay*day
}

func valueAt(series []*float64, i int) float64 {
	if i >= len(series) || series[i] == nil {
		return 0
	}
	return *series[i]
}

func metersToCm(m float64) int {
	return int(math.Round(m * 100))
}
