package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/alexivanou/powderscout/internal/catalog"
	"github.com/alexivanou/powderscout/internal/config"
	"github.com/alexivanou/powderscout/internal/model"
	"github.com/alexivanou/powderscout/internal/ranking"
	"github.com/alexivanou/powderscout/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockCatalog implements ResortCatalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Load(ctx context.Context) []model.Resort {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Resort)
}

func (m *MockCatalog) Nearby(lat, lon, radiusKm float64) []model.Resort {
	args := m.Called(lat, lon, radiusKm)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Resort)
}

func (m *MockCatalog) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCatalog) State() catalog.State {
	args := m.Called()
	return args.Get(0).(catalog.State)
}

func (m *MockCatalog) Len() int {
	args := m.Called()
	return args.Int(0)
}

// MockForecaster implements ForecastFetcher
type MockForecaster struct {
	mock.Mock
}

func (m *MockForecaster) Forecast(ctx context.Context, lat, lon float64, peak, base model.Optional[int]) model.Optional[model.Forecast] {
	args := m.Called(ctx, lat, lon, peak, base)
	return args.Get(0).(model.Optional[model.Forecast])
}

// MockPlaces implements PlaceSearcher
type MockPlaces struct {
	mock.Mock
}

func (m *MockPlaces) Search(ctx context.Context, query string) []model.LocationResult {
	args := m.Called(ctx, query)
	return args.Get(0).([]model.LocationResult)
}

// MockStore implements repository.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type mocks struct {
	catalog  *MockCatalog
	weather  *MockForecaster
	places   *MockPlaces
	settings *MockStore
}

func testConfig() config.DiscoveryConfig {
	return config.DiscoveryConfig{
		DefaultRadiusKm:      100,
		FallbackRadiiKm:      []float64{500, 20000},
		MaxResults:           15,
		MaxConcurrentFetches: 4,
	}
}

func newTestService() (*Service, mocks) {
	m := mocks{
		catalog:  new(MockCatalog),
		weather:  new(MockForecaster),
		places:   new(MockPlaces),
		settings: new(MockStore),
	}
	svc := NewService(m.catalog, m.weather, m.places, m.settings, testConfig(), zap.NewNop())
	return svc, m
}

func makeResorts(n int) []model.Resort {
	resorts := make([]model.Resort, n)
	for i := range resorts {
		resorts[i] = model.Resort{
			ID:            fmt.Sprintf("resort-%02d", i),
			Name:          fmt.Sprintf("Resort %d", i),
			Latitude:      46 + float64(i)*0.01,
			Longitude:     7,
			LiftCount:     11 + i,
			PeakElevation: model.Some(2000 + i),
			BaseElevation: model.Some(1000 + i),
			Distance:      model.Some(float64(i)),
		}
	}
	return resorts
}

func sampleForecast(snowDepth int, code int) model.Optional[model.Forecast] {
	var f model.Forecast
	for i := range f {
		f[i] = model.ForecastDay{Snowfall: 1, SnowDepth: snowDepth, WeatherCode: code, WindSpeed: 5}
	}
	return model.Some(f)
}

func TestService_Discover_EmptyCatalog(t *testing.T) {
	svc, m := newTestService()
	m.catalog.On("Load", mock.Anything).Return([]model.Resort{})

	result, err := svc.Discover(context.Background(), model.DiscoverRequest{Lat: 46, Lon: 7, RadiusKm: 50})

	assert.NoError(t, err)
	assert.Nil(t, result)
	m.catalog.AssertNotCalled(t, "Nearby", mock.Anything, mock.Anything, mock.Anything)
	m.weather.AssertNotCalled(t, "Forecast", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Discover_TruncatesCandidates(t *testing.T) {
	svc, m := newTestService()
	resorts := makeResorts(40)
	m.catalog.On("Load", mock.Anything).Return(resorts)
	m.catalog.On("Nearby", 46.0, 7.0, 50.0).Return(resorts)
	m.weather.On("Forecast", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(sampleForecast(100, 0))

	result, err := svc.Discover(context.Background(), model.DiscoverRequest{Lat: 46, Lon: 7, Name: "Sion", RadiusKm: 50})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.Resorts, 15)
	m.weather.AssertNumberOfCalls(t, "Forecast", 15)

	for i, r := range result.Resorts {
		assert.Equal(t, resorts[i].ID, r.ID, "distance order must be kept")
		assert.True(t, r.Forecast.IsPresent())
	}
	assert.Equal(t, "Sion", result.Location)
	assert.Equal(t, 50.0, result.RadiusKm)
	assert.Equal(t, model.Coordinate{Lat: 46, Lon: 7}, result.Origin)
	_, err = uuid.Parse(result.ID)
	assert.NoError(t, err)
}

func TestService_Discover_PassesElevations(t *testing.T) {
	svc, m := newTestService()
	resorts := makeResorts(1)
	resorts[0].BaseElevation = model.None[int]()
	m.catalog.On("Load", mock.Anything).Return(resorts)
	m.catalog.On("Nearby", 46.0, 7.0, 100.0).Return(resorts)
	m.settings.On("Get", mock.Anything, repository.KeyRadius).Return(nil, nil)
	m.weather.On("Forecast", mock.Anything, resorts[0].Latitude, resorts[0].Longitude, model.Some(2000), model.None[int]()).
		Return(sampleForecast(10, 3))

	result, err := svc.Discover(context.Background(), model.DiscoverRequest{Lat: 46, Lon: 7})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Nearby", result.Location)
	m.weather.AssertExpectations(t)
}

func TestService_Discover_FallbackRadii(t *testing.T) {
	tests := []struct {
		name       string
		found      map[float64]int
		wantRadius float64
		wantNil    bool
		wantCalls  []float64
	}{
		{
			name:       "found at requested radius",
			found:      map[float64]int{100: 2},
			wantRadius: 100,
			wantCalls:  []float64{100},
		},
		{
			name:       "widens to 500",
			found:      map[float64]int{500: 3},
			wantRadius: 500,
			wantCalls:  []float64{100, 500},
		},
		{
			name:       "widens to 20000",
			found:      map[float64]int{20000: 1},
			wantRadius: 20000,
			wantCalls:  []float64{100, 500, 20000},
		},
		{
			name:      "nothing anywhere",
			found:     map[float64]int{},
			wantNil:   true,
			wantCalls: []float64{100, 500, 20000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService()
			m.catalog.On("Load", mock.Anything).Return(makeResorts(5))
			for _, r := range []float64{100, 500, 20000} {
				m.catalog.On("Nearby", 10.0, 20.0, r).Return(makeResorts(tt.found[r])).Maybe()
			}
			m.weather.On("Forecast", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(model.None[model.Forecast]()).Maybe()

			result, err := svc.Discover(context.Background(), model.DiscoverRequest{Lat: 10, Lon: 20, RadiusKm: 100})
			require.NoError(t, err)

			var calls []float64
			for _, c := range m.catalog.Calls {
				if c.Method == "Nearby" {
					calls = append(calls, c.Arguments.Get(2).(float64))
				}
			}
			assert.Equal(t, tt.wantCalls, calls)

			if tt.wantNil {
				assert.Nil(t, result)
				m.weather.AssertNotCalled(t, "Forecast", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.wantRadius, result.RadiusKm)
		})
	}
}

func TestService_Discover_SkipsNarrowerFallbacks(t *testing.T) {
	svc, m := newTestService()
	m.catalog.On("Load", mock.Anything).Return(makeResorts(1))
	m.catalog.On("Nearby", 0.0, 0.0, 1000.0).Return([]model.Resort{})
	m.catalog.On("Nearby", 0.0, 0.0, 20000.0).Return([]model.Resort{})

	result, err := svc.Discover(context.Background(), model.DiscoverRequest{RadiusKm: 1000})

	assert.NoError(t, err)
	assert.Nil(t, result)
	m.catalog.AssertNotCalled(t, "Nearby", 0.0, 0.0, 500.0)
}

func TestService_Discover_RadiusPreference(t *testing.T) {
	tests := []struct {
		name       string
		stored     []byte
		storeErr   error
		wantRadius float64
	}{
		{"saved preference", []byte("250"), nil, 250},
		{"nothing saved", nil, nil, 100},
		{"store failure", nil, errors.New("db down"), 100},
		{"corrupt value", []byte("far"), nil, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService()
			resorts := makeResorts(1)
			m.settings.On("Get", mock.Anything, repository.KeyRadius).Return(tt.stored, tt.storeErr)
			m.catalog.On("Load", mock.Anything).Return(resorts)
			m.catalog.On("Nearby", 1.0, 2.0, tt.wantRadius).Return(resorts)
			m.weather.On("Forecast", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(sampleForecast(0, 0))

			result, err := svc.Discover(context.Background(), model.DiscoverRequest{Lat: 1, Lon: 2})

			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, tt.wantRadius, result.RadiusKm)
		})
	}
}

func TestService_Discover_ExplicitRadiusSkipsPreference(t *testing.T) {
	svc, m := newTestService()
	resorts := makeResorts(1)
	m.catalog.On("Load", mock.Anything).Return(resorts)
	m.catalog.On("Nearby", 1.0, 2.0, 30.0).Return(resorts)
	m.weather.On("Forecast", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(sampleForecast(0, 0))

	_, err := svc.Discover(context.Background(), model.DiscoverRequest{Lat: 1, Lon: 2, RadiusKm: 30})

	require.NoError(t, err)
	m.settings.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestService_Discover_ForecastFailureIsIsolated(t *testing.T) {
	svc, m := newTestService()
	resorts := makeResorts(3)
	m.catalog.On("Load", mock.Anything).Return(resorts)
	m.catalog.On("Nearby", 46.0, 7.0, 100.0).Return(resorts)
	m.weather.On("Forecast", mock.Anything, resorts[1].Latitude, mock.Anything, mock.Anything, mock.Anything).
		Return(model.None[model.Forecast]())
	m.weather.On("Forecast", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(sampleForecast(50, 0))

	result, err := svc.Discover(context.Background(), model.DiscoverRequest{Lat: 46, Lon: 7, RadiusKm: 100})

	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Resorts, 3)
	assert.True(t, result.Resorts[0].Forecast.IsPresent())
	assert.False(t, result.Resorts[1].Forecast.IsPresent())
	assert.True(t, result.Resorts[2].Forecast.IsPresent())
}

func TestService_DiscoverRanked(t *testing.T) {
	svc, m := newTestService()
	resorts := makeResorts(3)
	m.catalog.On("Load", mock.Anything).Return(resorts)
	m.catalog.On("Nearby", 46.0, 7.0, 100.0).Return(resorts)
	// deepest snow at the closest resort, best weather at the farthest
	m.weather.On("Forecast", mock.Anything, resorts[0].Latitude, mock.Anything, mock.Anything, mock.Anything).
		Return(sampleForecast(300, 45))
	m.weather.On("Forecast", mock.Anything, resorts[1].Latitude, mock.Anything, mock.Anything, mock.Anything).
		Return(model.None[model.Forecast]())
	m.weather.On("Forecast", mock.Anything, resorts[2].Latitude, mock.Anything, mock.Anything, mock.Anything).
		Return(sampleForecast(20, 0))

	t.Run("rank order", func(t *testing.T) {
		resp, err := svc.DiscoverRanked(context.Background(), model.DiscoverRequest{Lat: 46, Lon: 7, RadiusKm: 100}, 1, ranking.SortRank)
		require.NoError(t, err)
		require.NotNil(t, resp)

		assert.Equal(t, 1, resp.Day)
		assert.Equal(t, "rank", resp.Sort)
		require.Len(t, resp.Resorts, 3)
		assert.Equal(t, []string{"resort-02", "resort-00", "resort-01"},
			[]string{resp.Resorts[0].ID, resp.Resorts[1].ID, resp.Resorts[2].ID})
		assert.Equal(t, 0.0, resp.Resorts[2].Score)
		assert.Equal(t, "Clear sky", resp.Resorts[0].Conditions)
	})

	t.Run("snow order", func(t *testing.T) {
		resp, err := svc.DiscoverRanked(context.Background(), model.DiscoverRequest{Lat: 46, Lon: 7, RadiusKm: 100}, 0, ranking.SortSnow)
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "resort-00", resp.Resorts[0].ID)
	})

	t.Run("invalid day", func(t *testing.T) {
		resp, err := svc.DiscoverRanked(context.Background(), model.DiscoverRequest{Lat: 46, Lon: 7, RadiusKm: 100}, 3, ranking.SortRank)
		assert.ErrorIs(t, err, ErrInvalidDay)
		assert.Nil(t, resp)
	})
}

func TestService_DiscoverRanked_NoResults(t *testing.T) {
	svc, m := newTestService()
	m.catalog.On("Load", mock.Anything).Return([]model.Resort{})

	resp, err := svc.DiscoverRanked(context.Background(), model.DiscoverRequest{Lat: 46, Lon: 7, RadiusKm: 100}, 0, ranking.SortRank)
	assert.NoError(t, err)
	assert.Nil(t, resp)
}

func TestService_SearchPlaces(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		expectCall  string
		expectedErr error
	}{
		{name: "valid query", query: "Zermatt", expectCall: "Zermatt"},
		{name: "trimmed query", query: "  Alta  ", expectCall: "Alta"},
		{name: "too short", query: "Al", expectedErr: ErrQueryTooShort},
		{name: "short after trimming", query: "  ab   ", expectedErr: ErrQueryTooShort},
		{name: "empty", query: "", expectedErr: ErrQueryTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestService()
			if tt.expectCall != "" {
				m.places.On("Search", mock.Anything, tt.expectCall).Return([]model.LocationResult{
					{Name: tt.expectCall, Latitude: 1, Longitude: 2},
				})
			}

			resp, err := svc.SearchPlaces(context.Background(), tt.query)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, resp)
				m.places.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			require.Len(t, resp.Results, 1)
			assert.Equal(t, tt.expectCall, resp.Results[0].Name)
		})
	}
}

func TestService_Radius(t *testing.T) {
	t.Run("set valid radius", func(t *testing.T) {
		svc, m := newTestService()
		m.settings.On("Set", mock.Anything, repository.KeyRadius, []byte("250")).Return(nil)

		require.NoError(t, svc.SetRadius(context.Background(), 250))
		m.settings.AssertExpectations(t)
	})

	t.Run("reject invalid radius", func(t *testing.T) {
		svc, m := newTestService()
		for _, km := range []float64{0, -10, 20001, math.NaN(), math.Inf(1)} {
			assert.ErrorIs(t, svc.SetRadius(context.Background(), km), ErrInvalidRadius)
		}
		m.settings.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure on save", func(t *testing.T) {
		svc, m := newTestService()
		m.settings.On("Set", mock.Anything, repository.KeyRadius, mock.Anything).Return(errors.New("disk full"))
		assert.Error(t, svc.SetRadius(context.Background(), 20000))
	})

	t.Run("get saved radius", func(t *testing.T) {
		svc, m := newTestService()
		m.settings.On("Get", mock.Anything, repository.KeyRadius).Return([]byte("42.5"), nil)

		km, err := svc.GetRadius(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 42.5, km)
	})

	t.Run("get default radius", func(t *testing.T) {
		svc, m := newTestService()
		m.settings.On("Get", mock.Anything, repository.KeyRadius).Return(nil, nil)

		km, err := svc.GetRadius(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 100.0, km)
	})

	t.Run("saved NaN falls back to default", func(t *testing.T) {
		svc, m := newTestService()
		m.settings.On("Get", mock.Anything, repository.KeyRadius).Return([]byte("NaN"), nil)

		km, err := svc.GetRadius(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 100.0, km)
	})

	t.Run("get propagates store errors", func(t *testing.T) {
		svc, m := newTestService()
		m.settings.On("Get", mock.Anything, repository.KeyRadius).Return(nil, errors.New("db down"))

		_, err := svc.GetRadius(context.Background())
		assert.Error(t, err)
	})
}

func TestService_Catalog(t *testing.T) {
	t.Run("refresh", func(t *testing.T) {
		svc, m := newTestService()
		m.catalog.On("Invalidate", mock.Anything).Return(nil)
		m.catalog.On("Load", mock.Anything).Return(makeResorts(7))

		n, err := svc.RefreshCatalog(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 7, n)
		m.catalog.AssertExpectations(t)
	})

	t.Run("refresh fails to invalidate", func(t *testing.T) {
		svc, m := newTestService()
		m.catalog.On("Invalidate", mock.Anything).Return(errors.New("redis gone"))

		_, err := svc.RefreshCatalog(context.Background())
		assert.Error(t, err)
		m.catalog.AssertNotCalled(t, "Load", mock.Anything)
	})

	t.Run("status", func(t *testing.T) {
		svc, m := newTestService()
		m.catalog.On("State").Return(catalog.StatePopulated)
		m.catalog.On("Len").Return(1234)

		assert.Equal(t, model.CatalogStatus{State: "populated", Resorts: 1234}, svc.CatalogStatus())
	})
}
