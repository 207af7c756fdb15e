package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB        DBConfig
	Server    ServerConfig
	Cache     CacheConfig
	Sources   SourcesConfig
	Discovery DiscoveryConfig
	Seeder    SeederConfig
	Logging   LoggingConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
	DBTypeSQLite     DBType = "sqlite"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	switch c.Type {
	case DBTypeMemory:
		// SQLite in-memory database
		if c.Name != "" && c.Name != "powderscout" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	case DBTypeSQLite:
		return fmt.Sprintf("file:%s?cache=shared", c.Path)
	}
	// PostgreSQL connection string
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsSQLite returns true for both in-memory and file backed SQLite
func (c DBConfig) IsSQLite() bool {
	return c.Type == DBTypeMemory || c.Type == DBTypeSQLite
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	RateLimitRPS   float64
	RateLimitBurst int
	// WriteTimeout must outlast a cold catalog download
	WriteTimeout   time.Duration
}

// CacheBackend selects where the persistent key/value cache lives
type CacheBackend string

const (
	CacheBackendDB    CacheBackend = "db"
	CacheBackendRedis CacheBackend = "redis"
)

// CacheConfig holds persistent cache settings
type CacheConfig struct {
	Backend CacheBackend
	Redis   RedisConfig
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// SourcesConfig holds upstream endpoints and client limits
type SourcesConfig struct {
	ResortsURL     string
	ResortsTimeout time.Duration
	GeocodingURL   string
	ForecastURL    string
	HTTPTimeout    time.Duration
	WeatherRPS     float64
	WeatherBurst   int
}

// DiscoveryConfig tunes the discovery pipeline
type DiscoveryConfig struct {
	DefaultRadiusKm      float64
	FallbackRadiiKm      []float64
	MaxResults           int
	MaxConcurrentFetches int
}

// SeederConfig holds settings for offline catalog import
type SeederConfig struct {
	DataDir  string
	FileName string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level       string
	Development bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory && dbType != DBTypeSQLite {
		dbType = DBTypeMemory
	}

	resortsTimeout := getEnvAsDuration("RESORTS_TIMEOUT", 2*time.Minute)

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "powderscout"),
			Password: getEnv("DB_PASSWORD", "powderscout_password"),
			Name:     getEnv("DB_NAME", "powderscout"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "./data/powderscout.db"),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 20),
			RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 40),
			WriteTimeout:   getEnvAsDuration("WRITE_TIMEOUT", resortsTimeout+30*time.Second),
		},
		Cache: CacheConfig{
			Backend: CacheBackend(getEnv("CACHE_BACKEND", string(CacheBackendDB))),
			Redis: RedisConfig{
				Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvAsInt("REDIS_DB", 0),
				Prefix:   getEnv("REDIS_PREFIX", "powderscout:"),
			},
		},
		Sources: SourcesConfig{
			ResortsURL:     getEnv("RESORTS_URL", "https://tiles.openskimap.org/geojson/ski_areas.geojson"),
			ResortsTimeout: resortsTimeout,
			GeocodingURL:   getEnv("GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search"),
			ForecastURL:    getEnv("FORECAST_URL", "https://api.open-meteo.com/v1/forecast"),
			HTTPTimeout:    getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second),
			WeatherRPS:     getEnvAsFloat("WEATHER_RPS", 10),
			WeatherBurst:   getEnvAsInt("WEATHER_BURST", 30),
		},
		Discovery: DiscoveryConfig{
			DefaultRadiusKm:      getEnvAsFloat("DEFAULT_RADIUS_KM", 100),
			FallbackRadiiKm:      getEnvAsFloatSlice("FALLBACK_RADII_KM", []float64{500, 20000}),
			MaxResults:           getEnvAsInt("MAX_RESULTS", 15),
			MaxConcurrentFetches: getEnvAsInt("MAX_CONCURRENT_FETCHES", 15),
		},
		Seeder: SeederConfig{
			DataDir:  getEnv("SEEDER_DATA_DIR", "data"),
			FileName: getEnv("SEEDER_FILE", "ski_areas.geojson"),
		},
		Logging: LoggingConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Fallbacks widen the search, nearest first
	sort.Float64s(config.Discovery.FallbackRadiiKm)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Cache.Backend != CacheBackendDB && c.Cache.Backend != CacheBackendRedis {
		return fmt.Errorf("invalid cache backend: %s", c.Cache.Backend)
	}

	if c.Discovery.DefaultRadiusKm <= 0 {
		return fmt.Errorf("default radius must be positive, got %.1f", c.Discovery.DefaultRadiusKm)
	}
	for _, r := range c.Discovery.FallbackRadiiKm {
		if r <= 0 {
			return fmt.Errorf("fallback radius must be positive, got %.1f", r)
		}
	}
	if c.Discovery.MaxResults <= 0 {
		return fmt.Errorf("max results must be positive, got %d", c.Discovery.MaxResults)
	}
	if c.Discovery.MaxConcurrentFetches <= 0 {
		return fmt.Errorf("max concurrent fetches must be positive, got %d", c.Discovery.MaxConcurrentFetches)
	}

	if c.Server.WriteTimeout <= c.Sources.ResortsTimeout {
		return fmt.Errorf("write timeout %s must exceed resorts timeout %s", c.Server.WriteTimeout, c.Sources.ResortsTimeout)
	}

	if c.Sources.WeatherRPS <= 0 || c.Sources.WeatherBurst <= 0 {
		return fmt.Errorf("weather rate limit must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsFloatSlice parses a comma separated list. Any unparsable entry
// discards the whole value in favour of the default.
func getEnvAsFloatSlice(key string, defaultValue []float64) []float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	var result []float64
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return defaultValue
		}
		result = append(result, f)
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
